package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"guild-relay-go/internal/transport"
)

// HandleMessageEvent accepts an inbound message pushed by the gateway and
// dispatches it to the forwarding orchestrator on its own goroutine. Events
// are independent tasks; one guild's processing never delays another's.
func (h *Handlers) HandleMessageEvent(c *gin.Context) {
	var msg transport.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid message event",
			Code:    http.StatusBadRequest,
		})
		return
	}

	go h.orchestrator.HandleMessage(context.Background(), &msg)

	c.Status(http.StatusAccepted)
}

// HandleInteractionEvent routes a wizard interaction to the rule-creation flow.
func (h *Handlers) HandleInteractionEvent(c *gin.Context) {
	var event InteractionEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid interaction event",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := h.flow.Dispatch(c.Request.Context(), &event.Interaction, event.ActionID, event.Value); err != nil {
		logrus.WithFields(logrus.Fields{
			"guild_id":  event.Interaction.GuildID,
			"action_id": event.ActionID,
		}).Errorf("Failed to handle interaction: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "interaction_error",
			Message: "Failed to handle interaction",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.Status(http.StatusOK)
}
