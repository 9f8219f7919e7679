package model

import "time"

// DailyCounter tracks how many messages were forwarded for a guild since the
// last scheduled reset.
type DailyCounter struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	GuildID   string    `json:"guild_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	Count     int       `json:"count" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for DailyCounter
func (DailyCounter) TableName() string {
	return "daily_counters"
}
