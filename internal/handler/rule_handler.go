package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"guild-relay-go/internal/model"
)

// GetRules returns a guild's forwarding rules in evaluation order
func (h *Handlers) GetRules(c *gin.Context) {
	rules, err := h.store.ListRules(c.Param("guild_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch rules",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	responses := make([]ForwardRuleResponse, 0, len(rules))
	for i := range rules {
		responses = append(responses, ruleResponse(&rules[i]))
	}

	c.JSON(http.StatusOK, responses)
}

// CreateRule creates a new forwarding rule for a guild
func (h *Handlers) CreateRule(c *gin.Context) {
	var req ForwardRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	settings, err := ruleSettingsFromRequest(req.Settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid rule settings",
			Code:    http.StatusBadRequest,
		})
		return
	}
	if settings.Filters.MinLength > settings.Filters.MaxLength {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "min_length must not exceed max_length",
			Code:    http.StatusBadRequest,
		})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	rule := model.ForwardRule{
		RuleID:               uuid.NewString(),
		GuildID:              c.Param("guild_id"),
		Name:                 req.Name,
		IsActive:             active,
		SourceChannelID:      req.SourceChannelID,
		DestinationChannelID: req.DestinationChannelID,
		Settings:             settings,
	}

	if err := h.store.AppendRule(&rule); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create rule",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusCreated, ruleResponse(&rule))
}

// DeleteRule deletes a forwarding rule
func (h *Handlers) DeleteRule(c *gin.Context) {
	err := h.store.DeleteRule(c.Param("guild_id"), c.Param("rule_id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Rule not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to delete rule",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// EnableRule enables a forwarding rule
func (h *Handlers) EnableRule(c *gin.Context) {
	h.setRuleActive(c, true)
}

// DisableRule disables a forwarding rule
func (h *Handlers) DisableRule(c *gin.Context) {
	h.setRuleActive(c, false)
}

// ruleSettingsFromRequest overlays a (possibly partial) settings payload onto
// the construction-time defaults, so omitted fields keep their defaults.
func ruleSettingsFromRequest(raw json.RawMessage) (model.RuleSettings, error) {
	settings := model.DefaultRuleSettings()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &settings); err != nil {
			return model.RuleSettings{}, err
		}
	}
	return settings, nil
}

func (h *Handlers) setRuleActive(c *gin.Context, active bool) {
	err := h.store.SetRuleActive(c.Param("guild_id"), c.Param("rule_id"), active)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Rule not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update rule",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.Status(http.StatusNoContent)
}
