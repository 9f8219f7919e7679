package model

import (
	"time"

	"gorm.io/gorm"
)

// ForwardLog represents one forwarding attempt for a rule/message pair
type ForwardLog struct {
	ID                   uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	GuildID              string         `json:"guild_id" gorm:"type:varchar(64);not null;index"`
	RuleID               string         `json:"rule_id" gorm:"type:varchar(64);not null;index"`
	SourceChannelID      string         `json:"source_channel_id" gorm:"type:varchar(64);not null"`
	DestinationChannelID string         `json:"destination_channel_id" gorm:"type:varchar(64);not null"`
	OriginalMessageID    string         `json:"original_message_id" gorm:"type:varchar(64);not null;index"`
	Success              bool           `json:"success" gorm:"not null"`
	CreatedAt            time.Time      `json:"created_at"`
	DeletedAt            gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for ForwardLog
func (ForwardLog) TableName() string {
	return "forward_logs"
}
