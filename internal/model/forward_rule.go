package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultMaxLength is the upper length bound applied to new rules.
const DefaultMaxLength = 2000

// ForwardRule represents a forwarding rule in the database
type ForwardRule struct {
	RuleID               string         `json:"rule_id" gorm:"type:varchar(64);primaryKey"`
	GuildID              string         `json:"guild_id" gorm:"type:varchar(64);not null;index"`
	Name                 string         `json:"name" gorm:"type:varchar(255);not null"`
	IsActive             bool           `json:"is_active" gorm:"default:true"`
	SourceChannelID      string         `json:"source_channel_id" gorm:"type:varchar(64);not null"`
	DestinationChannelID string         `json:"destination_channel_id" gorm:"type:varchar(64);not null"`
	Position             int            `json:"position" gorm:"not null;default:0"`
	Settings             RuleSettings   `json:"settings" gorm:"serializer:json;type:json"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for ForwardRule
func (ForwardRule) TableName() string {
	return "forward_rules"
}

// RuleSettings groups the per-rule matching and formatting configuration.
type RuleSettings struct {
	MessageTypes    MessageTypes    `json:"message_types"`
	Filters         Filters         `json:"filters"`
	AdvancedOptions AdvancedOptions `json:"advanced_options"`
	Formatting      Formatting      `json:"formatting"`
}

// MessageTypes enables content categories a rule will forward.
type MessageTypes struct {
	Text     bool `json:"text"`
	Media    bool `json:"media"`
	Files    bool `json:"files"`
	Embeds   bool `json:"embeds"`
	Stickers bool `json:"stickers"`
	Links    bool `json:"links"`
}

// Filters holds length and keyword constraints.
type Filters struct {
	MinLength       int      `json:"min_length"`
	MaxLength       int      `json:"max_length"`
	RequireKeywords []string `json:"require_keywords"`
	BlockKeywords   []string `json:"block_keywords"`
}

// AdvancedOptions holds keyword matching modes.
type AdvancedOptions struct {
	CaseSensitive bool `json:"case_sensitive"`
	WholeWordOnly bool `json:"whole_word_only"`
}

// Formatting controls how a forwarded message is rebuilt.
type Formatting struct {
	AddPrefix          string `json:"add_prefix"`
	AddSuffix          string `json:"add_suffix"`
	IncludeAuthor      bool   `json:"include_author"`
	ForwardEmbeds      bool   `json:"forward_embeds"`
	ForwardAttachments bool   `json:"forward_attachments"`
}

// DefaultRuleSettings returns the settings applied to a freshly created rule:
// every content category enabled, full length range, author attribution and
// embed/attachment passthrough on.
func DefaultRuleSettings() RuleSettings {
	return RuleSettings{
		MessageTypes: MessageTypes{
			Text:     true,
			Media:    true,
			Files:    true,
			Embeds:   true,
			Stickers: true,
			Links:    true,
		},
		Filters: Filters{
			MinLength: 0,
			MaxLength: DefaultMaxLength,
		},
		Formatting: Formatting{
			IncludeAuthor:      true,
			ForwardEmbeds:      true,
			ForwardAttachments: true,
		},
	}
}
