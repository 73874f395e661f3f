package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

// Manager owns task lifecycle: creation, dispatch to a registered
// Executor, progress/event persistence, cooperative cancellation, and
// per-task event broadcast for SSE subscribers.
type Manager struct {
	Tasks     repository.TaskRepository
	Events    repository.TaskEventRepository
	executors map[string]Executor

	mu          sync.Mutex
	cancels     map[int64]context.CancelFunc
	broadcasts  map[int64]*broadcaster
}

// NewManager returns a Manager with no executors registered; call Register
// for each task_type before Run can dispatch to it.
func NewManager(tasks repository.TaskRepository, events repository.TaskEventRepository) *Manager {
	return &Manager{
		Tasks:      tasks,
		Events:     events,
		executors:  make(map[string]Executor),
		cancels:    make(map[int64]context.CancelFunc),
		broadcasts: make(map[int64]*broadcaster),
	}
}

// Register associates an Executor with a task_type.
func (m *Manager) Register(taskType string, executor Executor) {
	m.executors[taskType] = executor
}

// Create persists a new Task in status=pending.
func (m *Manager) Create(ctx context.Context, taskType, title string, params map[string]any) (*entity.Task, error) {
	t := &entity.Task{
		TaskType: taskType,
		Status:   entity.TaskStatusPending,
		Title:    title,
		Params:   params,
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	if err := m.Tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	m.appendEvent(ctx, t.ID, entity.TaskEventCreated, map[string]any{"task_type": taskType, "title": title})
	return t, nil
}

// Run dispatches task_id to its registered executor and blocks until it
// completes. Use RunAsync to dispatch from a worker pool without blocking
// the caller.
func (m *Manager) Run(ctx context.Context, taskID int64) error {
	t, err := m.Tasks.Get(ctx, taskID)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}
	if t == nil {
		return fmt.Errorf("Run: %w", entity.ErrNotFound)
	}
	executor, ok := m.executors[t.TaskType]
	if !ok {
		return fmt.Errorf("Run: no executor registered for task_type %q", t.TaskType)
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancels[taskID] = cancel
	bc := newBroadcaster()
	m.broadcasts[taskID] = bc
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.cancels, taskID)
		delete(m.broadcasts, taskID)
		m.mu.Unlock()
		cancel()
		bc.closeAll()
	}()

	now := time.Now().UTC()
	t.Status = entity.TaskStatusRunning
	t.StartedAt = &now
	if err := m.Tasks.Update(ctx, t); err != nil {
		return fmt.Errorf("Run: %w", err)
	}
	m.appendEvent(ctx, taskID, entity.TaskEventStarted, nil)

	onProgress := func(current, total int, message string, intermediate map[string]any) {
		t.ProgressCurrent = current
		t.ProgressTotal = total
		_ = m.Tasks.Update(ctx, t)
		payload := map[string]any{"current": current, "total": total}
		if message != "" {
			payload["message"] = message
		}
		if intermediate != nil {
			payload["intermediate_result"] = intermediate
		}
		m.appendEvent(ctx, taskID, entity.TaskEventProgress, payload)
	}
	onEvent := func(eventType entity.TaskEventType, data map[string]any) {
		m.appendEvent(ctx, taskID, eventType, data)
	}
	checkCancelled := func() bool {
		select {
		case <-runCtx.Done():
			return true
		default:
			return false
		}
	}

	result, execErr := executor.Execute(runCtx, t.Params, onProgress, onEvent, checkCancelled)

	completedAt := time.Now().UTC()
	t.CompletedAt = &completedAt
	t.Result = result

	switch {
	case execErr != nil && runCtx.Err() == context.Canceled:
		t.Status = entity.TaskStatusCancelled
		m.appendEvent(ctx, taskID, entity.TaskEventCancelled, nil)
	case execErr != nil:
		t.Status = entity.TaskStatusFailed
		t.ErrorMessage = execErr.Error()
		m.appendEvent(ctx, taskID, entity.TaskEventFailed, map[string]any{"error": execErr.Error()})
	default:
		t.Status = entity.TaskStatusCompleted
		m.appendEvent(ctx, taskID, entity.TaskEventCompleted, map[string]any{"result": result})
	}

	if err := m.Tasks.Update(ctx, t); err != nil {
		return fmt.Errorf("Run: finalize: %w", err)
	}
	if execErr != nil && t.Status == entity.TaskStatusFailed {
		return execErr
	}
	return nil
}

// RunAsync dispatches the task in a new goroutine, swallowing its error
// into the Task's terminal state (the caller observes it via Get or the
// event stream, not via a return value).
func (m *Manager) RunAsync(ctx context.Context, taskID int64) {
	go func() {
		_ = m.Run(context.WithoutCancel(ctx), taskID)
	}()
}

// Cancel requests cooperative cancellation of a running task. It is a
// no-op if the task isn't currently running.
func (m *Manager) Cancel(taskID int64) {
	m.mu.Lock()
	cancel, ok := m.cancels[taskID]
	m.mu.Unlock()
	if ok {
		cancel()
	}
}

// Subscribe attaches to a running task's live event stream. It returns nil
// and false if the task isn't currently running — callers should fall back
// to a single ListByTask replay for a terminal task.
func (m *Manager) Subscribe(taskID int64) (<-chan *entity.TaskEvent, func(), bool) {
	m.mu.Lock()
	bc, ok := m.broadcasts[taskID]
	m.mu.Unlock()
	if !ok {
		return nil, nil, false
	}
	ch, unsubscribe := bc.subscribe()
	return ch, unsubscribe, true
}

func (m *Manager) appendEvent(ctx context.Context, taskID int64, eventType entity.TaskEventType, payload map[string]any) {
	e := &entity.TaskEvent{TaskID: taskID, EventType: eventType, Payload: payload}
	if err := m.Events.Append(ctx, e); err != nil {
		return
	}
	m.mu.Lock()
	bc, ok := m.broadcasts[taskID]
	m.mu.Unlock()
	if ok {
		bc.publish(e)
	}
}
