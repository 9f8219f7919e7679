package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"guild-relay-go/internal/config"
	"guild-relay-go/internal/db"
	"guild-relay-go/internal/engine"
	"guild-relay-go/internal/handler"
	"guild-relay-go/internal/metrics"
	"guild-relay-go/internal/model"
	"guild-relay-go/internal/router"
	"guild-relay-go/internal/scheduler"
	"guild-relay-go/internal/setup"
	"guild-relay-go/internal/store"
	"guild-relay-go/internal/transport"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Guild Message Relay Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()
	st := store.New(dbConn)
	client := transport.NewClient(&cfg.Transport)

	orch := engine.NewOrchestrator(st, client, m)

	sessions := setup.NewManager(cfg.Setup.SessionTTL(), m.ActiveSessions)
	flow := setup.NewFlow(sessions, client, func(ctx context.Context, rule *model.ForwardRule) error {
		return st.AppendRule(rule)
	})

	sched := scheduler.NewScheduler(&cfg.Scheduler, cfg.Setup.SweepIntervalMinutes, st, sessions)

	h := handler.NewHandlers(dbConn, st, orch, flow, sessions, sched)
	r := router.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	sched.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
