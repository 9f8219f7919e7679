package handler

import (
	"encoding/json"
	"time"

	"guild-relay-go/internal/model"
	"guild-relay-go/internal/transport"
)

// GuildSetupRequest onboards a new guild with default settings
type GuildSetupRequest struct {
	GuildID   string `json:"guild_id" binding:"required"`
	GuildName string `json:"guild_name"`
}

// FeaturesRequest replaces a guild's feature flags
type FeaturesRequest struct {
	Features map[string]bool `json:"features" binding:"required"`
}

// ForwardRuleRequest represents the request structure for creating forward
// rules. Settings stays raw so a partial payload can be overlaid onto the
// construction-time defaults instead of zeroing omitted fields.
type ForwardRuleRequest struct {
	Name                 string          `json:"name" binding:"required"`
	SourceChannelID      string          `json:"source_channel_id" binding:"required"`
	DestinationChannelID string          `json:"destination_channel_id" binding:"required"`
	IsActive             *bool           `json:"is_active"`
	Settings             json.RawMessage `json:"settings"`
}

// ForwardRuleResponse represents the response structure for forward rules
type ForwardRuleResponse struct {
	RuleID               string             `json:"rule_id"`
	GuildID              string             `json:"guild_id"`
	Name                 string             `json:"name"`
	IsActive             bool               `json:"is_active"`
	SourceChannelID      string             `json:"source_channel_id"`
	DestinationChannelID string             `json:"destination_channel_id"`
	Position             int                `json:"position"`
	Settings             model.RuleSettings `json:"settings"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// InteractionEvent is a wizard interaction pushed by the gateway
type InteractionEvent struct {
	Interaction transport.Interaction `json:"interaction" binding:"required"`
	ActionID    string                `json:"action_id" binding:"required"`
	Value       string                `json:"value"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func ruleResponse(rule *model.ForwardRule) ForwardRuleResponse {
	return ForwardRuleResponse{
		RuleID:               rule.RuleID,
		GuildID:              rule.GuildID,
		Name:                 rule.Name,
		IsActive:             rule.IsActive,
		SourceChannelID:      rule.SourceChannelID,
		DestinationChannelID: rule.DestinationChannelID,
		Position:             rule.Position,
		Settings:             rule.Settings,
		CreatedAt:            rule.CreatedAt,
		UpdatedAt:            rule.UpdatedAt,
	}
}
