// Package scheduler drives the recurring task engine on a fixed interval and
// exposes the start/stop/status/trigger controls used by the admin routes.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kontorapp/kontor/internal/config"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/service"
	"github.com/robfig/cron/v3"
)

// Status is the control surface snapshot
type Status struct {
	IsRunning   bool                `json:"isRunning"`
	NextCheckAt *time.Time          `json:"nextCheckAt"`
	LastTick    *service.TickResult `json:"lastTick,omitempty"`
}

type Scheduler struct {
	cfg      config.SchedulerConfig
	engine   service.RecurringTaskService
	notifier service.NotificationService
	logger   *logger.Logger

	mu      sync.Mutex
	c       *cron.Cron
	entryID cron.EntryID
	runCtx  context.Context
	cancel  context.CancelFunc

	// tickMu serializes scheduled and manual ticks
	tickMu   sync.Mutex
	lastTick atomic.Pointer[service.TickResult]
}

func New(
	cfg *config.Configuration,
	engine service.RecurringTaskService,
	notifier service.NotificationService,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:      cfg.Scheduler,
		engine:   engine,
		notifier: notifier,
		logger:   log.With("component", "scheduler"),
	}
}

// Start schedules a tick every configured interval. Starting a running
// scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c != nil {
		return nil
	}
	if s.cfg.Interval <= 0 {
		return ierr.NewError("scheduler interval must be positive").
			WithHintf("invalid scheduler interval %s", s.cfg.Interval).
			Mark(ierr.ErrValidation)
	}

	cl := s.logger.CronLogger()
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	runCtx, cancel := context.WithCancel(context.Background())
	s.entryID = c.Schedule(cron.Every(s.cfg.Interval), cron.FuncJob(func() {
		if _, err := s.tick(runCtx); err != nil {
			s.logger.Errorw("scheduled tick failed", "error", err)
		}
	}))

	s.c = c
	s.runCtx = runCtx
	s.cancel = cancel
	c.Start()

	s.logger.Infow("scheduler started",
		"interval", s.cfg.Interval,
		"workers", s.cfg.Workers,
	)
	return nil
}

// Stop cancels the pending timer and waits for an in-flight tick to finish
// or for ctx to expire. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c, cancel := s.c, s.cancel
	s.c = nil
	s.cancel = nil
	s.runCtx = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		s.logger.Warnw("scheduler stop timed out waiting for running tick")
	}
	cancel()

	s.logger.Infow("scheduler stopped")
	return nil
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	st := Status{IsRunning: s.c != nil}
	if s.c != nil {
		if next := s.c.Entry(s.entryID).Next; !next.IsZero() {
			next = next.UTC()
			st.NextCheckAt = &next
		}
	}
	s.mu.Unlock()

	st.LastTick = s.lastTick.Load()
	return st
}

// TriggerNow runs one tick synchronously, whether or not the scheduler is
// running. It waits for a scheduled tick in progress to finish first.
func (s *Scheduler) TriggerNow(ctx context.Context) (*service.TickResult, error) {
	s.logger.Infow("manual tick triggered")
	return s.tick(ctx)
}

func (s *Scheduler) tick(ctx context.Context) (*service.TickResult, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	result, err := s.engine.Tick(ctx)
	if err != nil {
		return nil, err
	}
	s.lastTick.Store(result)

	if len(result.Generated) > 0 && s.notifier != nil {
		sent := s.notifier.NotifyAssignees(ctx, result.Generated)
		s.logger.Debugw("sent task notifications",
			"generated", len(result.Generated),
			"sent", sent,
		)
	}
	return result, nil
}
