package entity

import "time"

// TaskStatus is the lifecycle state of a Task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// IsValid reports whether s is a known task status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s is a terminal task status.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// Task is a unit of asynchronous work dispatched to an executor registered
// under its TaskType.
type Task struct {
	ID               int64
	TaskType         string
	Status           TaskStatus
	Title            string
	Params           map[string]any
	Result           map[string]any
	ProgressCurrent  int
	ProgressTotal    int
	ErrorMessage     string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the Task's invariants.
func (t *Task) Validate() error {
	if t.TaskType == "" {
		return &ValidationError{Field: "TaskType", Message: "is required"}
	}
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if !t.Status.IsValid() {
		return &ValidationError{Field: "Status", Message: "invalid value"}
	}
	if t.ProgressTotal > 0 && t.ProgressCurrent > t.ProgressTotal {
		return &ValidationError{Field: "ProgressCurrent", Message: "must be <= ProgressTotal"}
	}
	if t.Status.IsTerminal() && t.CompletedAt == nil {
		return &ValidationError{Field: "CompletedAt", Message: "must be set for a terminal task status"}
	}
	return nil
}

// TaskEventType enumerates the kinds of entries appended to a Task's event log.
type TaskEventType string

const (
	TaskEventCreated   TaskEventType = "created"
	TaskEventStarted   TaskEventType = "started"
	TaskEventProgress  TaskEventType = "progress"
	TaskEventCompleted TaskEventType = "completed"
	TaskEventFailed    TaskEventType = "failed"
	TaskEventCancelled TaskEventType = "cancelled"
	TaskEventInfo      TaskEventType = "info"
)

// TaskEvent is an append-only log entry recording a state change or progress
// update for a Task.
type TaskEvent struct {
	ID        int64
	TaskID    int64
	EventType TaskEventType
	Payload   map[string]any
	CreatedAt time.Time
}
