package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"guild-relay-go/internal/engine"
	"guild-relay-go/internal/scheduler"
	"guild-relay-go/internal/setup"
	"guild-relay-go/internal/store"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db           *gorm.DB
	store        *store.Store
	orchestrator *engine.Orchestrator
	flow         *setup.Flow
	sessions     *setup.Manager
	scheduler    *scheduler.Scheduler
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, st *store.Store, orch *engine.Orchestrator, flow *setup.Flow, sessions *setup.Manager, sched *scheduler.Scheduler) *Handlers {
	return &Handlers{
		db:           db,
		store:        st,
		orchestrator: orch,
		flow:         flow,
		sessions:     sessions,
		scheduler:    sched,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	gateway := router.Group("/gateway")
	{
		gateway.POST("/messages", h.HandleMessageEvent)
		gateway.POST("/interactions", h.HandleInteractionEvent)
	}

	api := router.Group("/api/v1")
	{
		api.POST("/guilds", h.SetupGuild)
		api.GET("/guilds/:guild_id", h.GetGuildSettings)
		api.PUT("/guilds/:guild_id/features", h.UpdateFeatures)

		api.GET("/guilds/:guild_id/rules", h.GetRules)
		api.POST("/guilds/:guild_id/rules", h.CreateRule)
		api.DELETE("/guilds/:guild_id/rules/:rule_id", h.DeleteRule)
		api.PATCH("/guilds/:guild_id/rules/:rule_id/enable", h.EnableRule)
		api.PATCH("/guilds/:guild_id/rules/:rule_id/disable", h.DisableRule)

		api.GET("/guilds/:guild_id/logs", h.GetLogs)

		api.GET("/sessions/count", h.GetSessionCount)
		api.DELETE("/guilds/:guild_id/session", h.CancelSession)

		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.POST("/scheduler/reset-counters", h.ResetCounters)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  "ok",
		Metrics:   make(map[string]string),
	}

	if err := h.db.Raw("SELECT 1").Error; err != nil {
		response.Status = "error"
		response.Database = "error"
		logrus.Errorf("Database health check failed: %v", err)
	}

	if h.scheduler.IsRunning() {
		response.Metrics["scheduler"] = "running"
		response.Metrics["next_reset"] = h.scheduler.NextReset().Format(time.RFC3339)
	} else {
		response.Metrics["scheduler"] = "stopped"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
