package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[int64]*entity.Schedule
}

func newFakeScheduleRepo(schedules ...*entity.Schedule) *fakeScheduleRepo {
	r := &fakeScheduleRepo{schedules: make(map[int64]*entity.Schedule)}
	for i, s := range schedules {
		s.ID = int64(i + 1)
		r.schedules[s.ID] = s
	}
	return r
}

func (r *fakeScheduleRepo) Get(ctx context.Context, id int64) (*entity.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schedules[id], nil
}

func (r *fakeScheduleRepo) List(ctx context.Context) ([]*entity.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Schedule
	for _, s := range r.schedules {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListDue(ctx context.Context, now time.Time) ([]*entity.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Schedule
	for _, s := range r.schedules {
		if s.IsDue(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) Create(ctx context.Context, s *entity.Schedule) error {
	return nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, s *entity.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[s.ID] = s
	return nil
}

func (r *fakeScheduleRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.schedules, id)
	return nil
}

type memTaskRepo struct {
	mu     sync.Mutex
	tasks  map[int64]*entity.Task
	nextID int64
}

func (r *memTaskRepo) Get(ctx context.Context, id int64) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[id], nil
}
func (r *memTaskRepo) ListByStatus(ctx context.Context, status entity.TaskStatus, limit int) ([]*entity.Task, error) {
	return nil, nil
}
func (r *memTaskRepo) ListRecent(ctx context.Context, taskType string, limit int) ([]*entity.Task, error) {
	return nil, nil
}
func (r *memTaskRepo) Create(ctx context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tasks == nil {
		r.tasks = make(map[int64]*entity.Task)
	}
	r.nextID++
	t.ID = r.nextID
	r.tasks[t.ID] = t
	return nil
}
func (r *memTaskRepo) Update(ctx context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
	return nil
}

type memTaskEventRepo struct{}

func (r *memTaskEventRepo) Append(ctx context.Context, e *entity.TaskEvent) error { return nil }
func (r *memTaskEventRepo) ListByTask(ctx context.Context, taskID int64, afterID int64) ([]*entity.TaskEvent, error) {
	return nil, nil
}

func TestScheduler_Tick_DispatchesDueScheduleAndAdvancesNextRun(t *testing.T) {
	sch := &entity.Schedule{
		Name: "nightly sitemap sync", ScheduleType: entity.ScheduleTypeSitemapCrawl,
		Status: entity.ScheduleStatusActive, IntervalMinutes: 60, NextRunAt: time.Now().UTC().Add(-time.Minute),
	}
	repo := newFakeScheduleRepo(sch)

	manager := task.NewManager(&memTaskRepo{}, &memTaskEventRepo{})
	ran := make(chan struct{}, 1)
	manager.Register(TaskTypeFor(entity.ScheduleTypeSitemapCrawl), task.ExecutorFunc(
		func(ctx context.Context, params map[string]any, onProgress task.ProgressFunc, onEvent task.EventFunc, checkCancelled task.CheckCancelledFunc) (map[string]any, error) {
			ran <- struct{}{}
			return map[string]any{"ok": true}, nil
		}))

	s := New(repo, manager, nil)
	s.Tick(t.Context())

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("expected the schedule's executor to run")
	}

	updated, _ := repo.Get(t.Context(), sch.ID)
	if updated.ExecutionCount != 1 {
		t.Fatalf("expected execution_count=1, got %d", updated.ExecutionCount)
	}
	if updated.LastStatus != "success" {
		t.Fatalf("expected last_status=success, got %q", updated.LastStatus)
	}
	if !updated.NextRunAt.After(time.Now().UTC()) {
		t.Fatalf("expected next_run_at to be advanced into the future")
	}
}

func TestScheduler_Tick_DisablesAfterMaxExecutions(t *testing.T) {
	one := 1
	sch := &entity.Schedule{
		Name: "one-shot", ScheduleType: entity.ScheduleTypeKeywordSearch,
		Status: entity.ScheduleStatusActive, IntervalMinutes: 5, MaxExecutions: &one,
		NextRunAt: time.Now().UTC().Add(-time.Minute),
	}
	repo := newFakeScheduleRepo(sch)

	manager := task.NewManager(&memTaskRepo{}, &memTaskEventRepo{})
	manager.Register(TaskTypeFor(entity.ScheduleTypeKeywordSearch), task.ExecutorFunc(
		func(ctx context.Context, params map[string]any, onProgress task.ProgressFunc, onEvent task.EventFunc, checkCancelled task.CheckCancelledFunc) (map[string]any, error) {
			return map[string]any{}, nil
		}))

	s := New(repo, manager, nil)
	s.Tick(t.Context())

	updated, _ := repo.Get(t.Context(), sch.ID)
	if updated.Status != entity.ScheduleStatusDisabled {
		t.Fatalf("expected schedule to be disabled after reaching max_executions, got %s", updated.Status)
	}
}

func TestScheduler_Tick_NoExecutorRegisteredRecordsFailure(t *testing.T) {
	sch := &entity.Schedule{
		Name: "orphaned", ScheduleType: entity.ScheduleTypeArticleCrawl,
		Status: entity.ScheduleStatusActive, IntervalMinutes: 30, NextRunAt: time.Now().UTC().Add(-time.Minute),
	}
	repo := newFakeScheduleRepo(sch)
	manager := task.NewManager(&memTaskRepo{}, &memTaskEventRepo{})

	s := New(repo, manager, nil)
	s.Tick(t.Context())

	updated, _ := repo.Get(t.Context(), sch.ID)
	if updated.LastStatus != "failed" {
		t.Fatalf("expected last_status=failed when no executor is registered, got %q", updated.LastStatus)
	}
	if updated.LastError == "" {
		t.Fatalf("expected a recorded last_error")
	}
}

func TestScheduler_ExecuteNow_DispatchesRegardlessOfNextRunAt(t *testing.T) {
	sch := &entity.Schedule{
		Name: "manual trigger", ScheduleType: entity.ScheduleTypeSitemapCrawl,
		Status: entity.ScheduleStatusActive, IntervalMinutes: 60, NextRunAt: time.Now().UTC().Add(time.Hour),
	}
	repo := newFakeScheduleRepo(sch)

	manager := task.NewManager(&memTaskRepo{}, &memTaskEventRepo{})
	ran := make(chan struct{}, 1)
	manager.Register(TaskTypeFor(entity.ScheduleTypeSitemapCrawl), task.ExecutorFunc(
		func(ctx context.Context, params map[string]any, onProgress task.ProgressFunc, onEvent task.EventFunc, checkCancelled task.CheckCancelledFunc) (map[string]any, error) {
			ran <- struct{}{}
			return map[string]any{"ok": true}, nil
		}))

	s := New(repo, manager, nil)
	if err := s.ExecuteNow(t.Context(), sch.ID); err != nil {
		t.Fatalf("ExecuteNow returned an error: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("expected ExecuteNow to dispatch the schedule's executor despite a future next_run_at")
	}

	updated, _ := repo.Get(t.Context(), sch.ID)
	if updated.ExecutionCount != 1 {
		t.Fatalf("expected execution_count=1, got %d", updated.ExecutionCount)
	}
}

func TestScheduler_ExecuteNow_UnknownScheduleReturnsNotFound(t *testing.T) {
	repo := newFakeScheduleRepo()
	manager := task.NewManager(&memTaskRepo{}, &memTaskEventRepo{})
	s := New(repo, manager, nil)

	err := s.ExecuteNow(t.Context(), 999)
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestScheduler_Status_ReportsDueCountAndRunningState(t *testing.T) {
	due := &entity.Schedule{
		Name: "due", ScheduleType: entity.ScheduleTypeSitemapCrawl,
		Status: entity.ScheduleStatusActive, IntervalMinutes: 60, NextRunAt: time.Now().UTC().Add(-time.Minute),
	}
	notDue := &entity.Schedule{
		Name: "not due", ScheduleType: entity.ScheduleTypeKeywordSearch,
		Status: entity.ScheduleStatusActive, IntervalMinutes: 60, NextRunAt: time.Now().UTC().Add(time.Hour),
	}
	repo := newFakeScheduleRepo(due, notDue)
	manager := task.NewManager(&memTaskRepo{}, &memTaskEventRepo{})

	s := New(repo, manager, nil)
	s.CheckInterval = 30 * time.Second

	snapshot := s.Status(t.Context())
	if snapshot.Running {
		t.Fatalf("expected Running=false before Start is called")
	}
	if snapshot.DueCount != 1 {
		t.Fatalf("expected DueCount=1, got %d", snapshot.DueCount)
	}
	if snapshot.CheckIntervalSeconds != 30 {
		t.Fatalf("expected CheckIntervalSeconds=30, got %v", snapshot.CheckIntervalSeconds)
	}
}
