package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/engine"
	"labtrust-hq/calibra/pkg/audit/storage"
)

// Config contains configuration for the reconcile scheduler.
type Config struct {
	// Schedule is a standard cron expression. Empty disables the scheduler.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string
}

// Scheduler sweeps in-progress audits on a cron schedule, correcting
// drifted star-level caches.
type Scheduler struct {
	manager *engine.Manager
	store   storage.Store
	config  Config
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a reconcile scheduler.
func NewScheduler(manager *engine.Manager, store storage.Store, config Config) *Scheduler {
	return &Scheduler{
		manager: manager,
		store:   store,
		config:  config,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "audit.reconcile"),
	}
}

// Start begins scheduled sweeps. With an empty schedule the scheduler does
// nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("reconcile schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("reconcile sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("reconcile scheduler started", "schedule", s.config.Schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled sweeps. A sweep in flight runs to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.cron.Stop()
	s.logger.Info("reconcile scheduler stopped")
}

// Sweep recomputes every in-progress audit's score once and corrects
// drifted caches. It returns the number of corrections applied.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	audits, err := s.store.ListAudits(ctx)
	if err != nil {
		return 0, err
	}

	corrected := 0
	for _, a := range audits {
		if a.Status != audit.StatusInProgress {
			continue
		}
		changed, err := s.manager.ReconcileScore(ctx, a.ID)
		if err != nil {
			s.logger.Error("failed to reconcile audit score",
				"audit_id", a.ID,
				"error", err,
			)
			continue
		}
		if changed {
			corrected++
		}
	}

	s.logger.Info("reconcile sweep finished", "corrected", corrected)
	return corrected, nil
}
