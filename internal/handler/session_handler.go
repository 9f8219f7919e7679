package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSessionCount returns the number of active setup sessions
func (h *Handlers) GetSessionCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active_sessions": h.sessions.Count(),
	})
}

// CancelSession removes a guild's active setup session
func (h *Handlers) CancelSession(c *gin.Context) {
	if !h.sessions.CleanupSession(c.Param("guild_id")) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "No active session for guild",
			Code:    http.StatusNotFound,
		})
		return
	}

	c.Status(http.StatusNoContent)
}
