package schedule

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vealive/veahome-core/internal/scene"
)

// Clock abstracts wall-clock time so ticks can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Executor runs schedule actions. Satisfied by scene.Engine.
type Executor interface {
	ActivateScene(ctx context.Context, homeID, sceneID, source string) error
	ControlDevice(ctx context.Context, deviceID string, state scene.DesiredState, source string) error
}

// Logger is the logging surface the scheduler needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Scheduler evaluates schedules on a fixed tick and fires those whose
// time and day match the current minute.
//
// Ticks never overlap: if an evaluation is still running when the next
// tick arrives (a slow hub, many matching schedules), the new tick is
// skipped rather than queued. Within one evaluation, a schedule's
// actions run sequentially in list order; failures are logged and the
// remaining actions still run.
type Scheduler struct {
	repo     Repository
	executor Executor
	clock    Clock
	logger   Logger
	interval time.Duration

	// inProgress guards against overlapping evaluations.
	inProgress atomic.Bool
}

// New creates a scheduler.
//
// Parameters:
//   - repo: Schedule source
//   - executor: Action runner (the scene engine)
//   - clock: Time source (SystemClock{} in production)
//   - logger: Structured logger
//   - interval: Tick period; 60s matches the minute resolution of
//     schedule times
func New(repo Repository, executor Executor, clock Clock, logger Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		repo:     repo,
		executor: executor,
		clock:    clock,
		logger:   logger,
		interval: interval,
	}
}

// Run evaluates schedules every tick until the context is cancelled.
// It blocks; run it in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one evaluation pass. Exposed for manual triggering; Run
// calls it on every tick.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.inProgress.CompareAndSwap(false, true) {
		s.logger.Warn("schedule evaluation still running, skipping tick")
		return
	}
	defer s.inProgress.Store(false)

	now := s.clock.Now()

	schedules, err := s.repo.ListEnabled(ctx)
	if err != nil {
		s.logger.Error("listing schedules", "error", err)
		return
	}

	for i := range schedules {
		sched := &schedules[i]
		if err := sched.Validate(); err != nil {
			s.logger.Error("skipping malformed schedule",
				"schedule_id", sched.ID,
				"error", err,
			)
			continue
		}
		if !sched.MatchesAt(now) {
			continue
		}

		s.logger.Info("schedule fired",
			"schedule_id", sched.ID,
			"name", sched.Name,
			"actions", len(sched.Actions),
		)
		s.runActions(ctx, sched)
	}
}

// runActions executes a schedule's actions sequentially.
func (s *Scheduler) runActions(ctx context.Context, sched *Schedule) {
	for i, action := range sched.Actions {
		if err := s.runAction(ctx, sched, action); err != nil {
			s.logger.Error("schedule action failed",
				"schedule_id", sched.ID,
				"action", i,
				"type", string(action.Type),
				"error", err,
			)
		}
	}
}

// runAction executes one schedule action.
func (s *Scheduler) runAction(ctx context.Context, sched *Schedule, action Action) error {
	switch action.Type {
	case ActionScene:
		return s.executor.ActivateScene(ctx, sched.HomeID, action.SceneID, scene.SourceSchedule)
	case ActionDevice:
		return s.executor.ControlDevice(ctx, action.DeviceID, action.State, scene.SourceSchedule)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownActionType, action.Type)
	}
}
