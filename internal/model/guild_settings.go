package model

import (
	"time"

	"gorm.io/gorm"
)

// Feature flag keys stored in GuildSettings.Features.
const (
	FeatureForwardingEnabled = "forwarding_enabled"
	FeatureNotifyOnError     = "notify_on_error"
)

// DefaultDailyLimit is the per-guild forwarded-message cap applied at onboarding.
const DefaultDailyLimit = 100

// GuildSettings represents per-guild configuration in the database.
// Rules live in their own table and are loaded ordered by position.
type GuildSettings struct {
	ID         uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	GuildID    string          `json:"guild_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	GuildName  string          `json:"guild_name" gorm:"type:varchar(255)"`
	Features   map[string]bool `json:"features" gorm:"serializer:json;type:json"`
	DailyLimit int             `json:"daily_limit" gorm:"not null;default:100"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`

	Rules []ForwardRule `json:"rules" gorm:"-"`
}

// TableName specifies the table name for GuildSettings
func (GuildSettings) TableName() string {
	return "guild_settings"
}

// DefaultGuildSettings returns onboarding defaults for a new guild.
// Forwarding starts disabled so an admin has to opt in explicitly.
func DefaultGuildSettings(guildID, guildName string) *GuildSettings {
	return &GuildSettings{
		GuildID:   guildID,
		GuildName: guildName,
		Features: map[string]bool{
			FeatureForwardingEnabled: false,
			FeatureNotifyOnError:     true,
		},
		DailyLimit: DefaultDailyLimit,
	}
}

// FeatureEnabled reports whether a feature flag is set for the guild.
func (s *GuildSettings) FeatureEnabled(name string) bool {
	if s.Features == nil {
		return false
	}
	return s.Features[name]
}
