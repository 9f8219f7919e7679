package setup

import (
	"time"

	"guild-relay-go/internal/model"
)

// Step identifies the wizard step a draft rule is on.
type Step string

// Wizard steps in forward order.
const (
	StepSourceChannel      Step = "source_channel"
	StepDestinationChannel Step = "destination_channel"
	StepRuleName           Step = "rule_name"
	StepRulePreview        Step = "rule_preview"
	StepCommitted          Step = "committed"
	StepCancelled          Step = "cancelled"
)

// RuleDraft is the partially built rule a wizard session works on.
type RuleDraft struct {
	Step                 Step   `json:"step"`
	SourceChannelID      string `json:"source_channel_id"`
	DestinationChannelID string `json:"destination_channel_id"`
	RuleName             string `json:"rule_name"`
}

// Session is the in-memory state of one guild's setup wizard.
type Session struct {
	GuildID      string
	UserID       string
	CreatedAt    time.Time
	LastActivity time.Time

	// CurrentRule is the draft being edited; nil until the flow starts.
	CurrentRule *RuleDraft

	// ForwardingRules accumulates rules committed during this session.
	ForwardingRules []model.ForwardRule
}

func newSession(guildID, userID string) *Session {
	now := time.Now()
	return &Session{
		GuildID:      guildID,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// IsExpired reports whether the session has been idle longer than ttl.
func (s *Session) IsExpired(ttl time.Duration) bool {
	return time.Since(s.LastActivity) > ttl
}

func (s *Session) touch() {
	s.LastActivity = time.Now()
}
