package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"guild-relay-go/internal/config"
)

// CounterStore resets the per-guild daily forwarding counters.
type CounterStore interface {
	ResetDailyCounters() (int64, error)
}

// SessionSweeper evicts expired setup sessions.
type SessionSweeper interface {
	CleanupExpiredSessions() int
}

// Scheduler runs the periodic maintenance jobs: the daily counter reset and
// the expired-session sweep.
type Scheduler struct {
	cron         *cron.Cron
	resetEntryID cron.EntryID
	config       *config.SchedulerConfig
	sweepMinutes int
	store        CounterStore
	sweeper      SessionSweeper
	wg           sync.WaitGroup
	isRunning    bool
	mu           sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.SchedulerConfig, sweepMinutes int, store CounterStore, sweeper SessionSweeper) *Scheduler {
	if sweepMinutes <= 0 {
		sweepMinutes = 5
	}
	return &Scheduler{
		cron:         cron.New(cron.WithSeconds()),
		config:       cfg,
		sweepMinutes: sweepMinutes,
		store:        store,
		sweeper:      sweeper,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	// Jobs are registered once; a restart only resumes the existing entries.
	if s.resetEntryID == 0 {
		resetSchedule := fmt.Sprintf("0 0 %d * * *", s.config.DailyResetHour)
		entryID, err := s.cron.AddFunc(resetSchedule, s.resetCounters)
		if err != nil {
			return fmt.Errorf("failed to add counter reset job: %w", err)
		}
		s.resetEntryID = entryID

		sweepSchedule := fmt.Sprintf("0 */%d * * * *", s.sweepMinutes)
		if _, err := s.cron.AddFunc(sweepSchedule, s.sweepSessions); err != nil {
			return fmt.Errorf("failed to add session sweep job: %w", err)
		}
	}

	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started: daily reset at hour %d, session sweep every %d minutes",
		s.config.DailyResetHour, s.sweepMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Scheduler) resetCounters() {
	s.wg.Add(1)
	defer s.wg.Done()

	affected, err := s.store.ResetDailyCounters()
	if err != nil {
		logrus.Errorf("Failed to reset daily counters: %v", err)
		return
	}
	logrus.Infof("Daily counter reset completed, %d guilds reset", affected)
}

func (s *Scheduler) sweepSessions() {
	s.wg.Add(1)
	defer s.wg.Done()

	if n := s.sweeper.CleanupExpiredSessions(); n > 0 {
		logrus.Debugf("Session sweep removed %d sessions", n)
	}
}

// RunResetOnce triggers the daily counter reset immediately (manual trigger).
func (s *Scheduler) RunResetOnce() error {
	logrus.Info("Running daily counter reset once")
	s.resetCounters()
	return nil
}

// NextReset returns the time of the next scheduled counter reset.
func (s *Scheduler) NextReset() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.resetEntryID).Next
}

// LastReset returns the time of the last counter reset run.
func (s *Scheduler) LastReset() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.resetEntryID).Prev
}

// Wait waits for in-flight jobs to finish.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
