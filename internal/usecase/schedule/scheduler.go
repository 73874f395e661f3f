// Package schedule implements the Scheduler: a cron-driven poll loop that
// finds due Schedules and dispatches each as a synchronous Task run against
// the Task Manager's registered executors.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

// ErrScheduleNotFound is returned by ExecuteNow when the given schedule id
// does not exist.
var ErrScheduleNotFound = errors.New("schedule not found")

// DefaultCheckInterval is how often the Scheduler polls for due schedules
// when the caller doesn't override it.
const DefaultCheckInterval = 60 * time.Second

// TaskTypeFor derives the task_type a dispatched Schedule's Task is
// created under, per the spec's schedule_<schedule_type> naming. Wiring
// registers executors under these exact strings.
func TaskTypeFor(t entity.ScheduleType) string {
	return "schedule_" + string(t)
}

// Scheduler polls ScheduleRepository.ListDue on a fixed interval and runs
// each due schedule's Task synchronously, one at a time, so a single
// schedule's executions never overlap themselves.
type Scheduler struct {
	Schedules     repository.ScheduleRepository
	Tasks         *task.Manager
	CheckInterval time.Duration
	Logger        *slog.Logger

	cron *cron.Cron
}

// New returns a Scheduler with the default check interval; override
// CheckInterval before calling Start to change it.
func New(schedules repository.ScheduleRepository, tasks *task.Manager, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		Schedules:     schedules,
		Tasks:         tasks,
		CheckInterval: DefaultCheckInterval,
		Logger:        logger,
	}
}

// Start begins polling. It returns once the cron entry is registered;
// ticks run in the background until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	interval := s.CheckInterval
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	c := cron.New()
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := c.AddFunc(spec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("Scheduler.Start: %w", err)
	}
	c.Start()
	s.cron = c
	s.Logger.Info("scheduler started", slog.Duration("check_interval", interval))
	return nil
}

// Stop halts polling; an in-flight tick is allowed to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Tick runs one poll pass immediately. Exported so RunOnce-style admin
// endpoints and tests can drive the scheduler without waiting on cron.
func (s *Scheduler) Tick(ctx context.Context) {
	s.tick(ctx)
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()
	due, err := s.Schedules.ListDue(ctx, now)
	if err != nil {
		s.Logger.Error("scheduler: ListDue failed", slog.Any("error", err))
		return
	}
	for _, sch := range due {
		s.dispatch(ctx, sch, now)
	}
}

// dispatch creates and synchronously runs sch's Task, then records the
// outcome back onto the Schedule: execution_count, last_run_at,
// last_status, last_error, and the recomputed next_run_at. A schedule that
// reaches max_executions is disabled by RecordExecution.
func (s *Scheduler) dispatch(ctx context.Context, sch *entity.Schedule, now time.Time) {
	taskType := TaskTypeFor(sch.ScheduleType)
	t, err := s.Tasks.Create(ctx, taskType, sch.Name, sch.Config)
	if err != nil {
		sch.RecordExecution(now, "failed", err)
		s.persist(ctx, sch)
		return
	}

	runErr := s.Tasks.Run(ctx, t.ID)
	status := "success"
	if runErr != nil {
		status = "failed"
		s.Logger.Error("scheduler: task run failed",
			slog.Int64("schedule_id", sch.ID), slog.Int64("task_id", t.ID), slog.Any("error", runErr))
	}
	sch.RecordExecution(now, status, runErr)
	s.persist(ctx, sch)
}

// ExecuteNow dispatches a single schedule immediately, regardless of its
// next_run_at, for an admin "run now" action. It does not otherwise bypass
// the schedule's normal execution bookkeeping: RecordExecution still
// advances next_run_at and counts toward max_executions.
func (s *Scheduler) ExecuteNow(ctx context.Context, scheduleID int64) error {
	sch, err := s.Schedules.Get(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScheduleNotFound, err)
	}
	if sch == nil {
		return ErrScheduleNotFound
	}
	s.dispatch(ctx, sch, time.Now().UTC())
	return nil
}

// StatusSnapshot summarizes the Scheduler's current state for a health or
// admin status endpoint.
type StatusSnapshot struct {
	CheckIntervalSeconds float64 `json:"check_interval_seconds"`
	Running              bool    `json:"running"`
	DueCount             int     `json:"due_count"`
}

// Status reports whether the poll loop is running and how many schedules
// are currently due, without waiting for the next tick.
func (s *Scheduler) Status(ctx context.Context) StatusSnapshot {
	snapshot := StatusSnapshot{CheckIntervalSeconds: s.CheckInterval.Seconds(), Running: s.cron != nil}
	due, err := s.Schedules.ListDue(ctx, time.Now().UTC())
	if err == nil {
		snapshot.DueCount = len(due)
	}
	return snapshot
}

func (s *Scheduler) persist(ctx context.Context, sch *entity.Schedule) {
	if err := s.Schedules.Update(ctx, sch); err != nil {
		s.Logger.Error("scheduler: failed to persist schedule execution", slog.Int64("schedule_id", sch.ID), slog.Any("error", err))
	}
}
