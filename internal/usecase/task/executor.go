// Package task implements the Task Manager: lifecycle, progress/event
// logging, cooperative cancellation, and pluggable executors dispatched by
// task_type.
package task

import (
	"context"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// ProgressFunc persists a progress update and appends a progress TaskEvent.
// intermediateResult is optional partial-result data surfaced to subscribers
// mid-run (e.g. per-source crawl counts).
type ProgressFunc func(current, total int, message string, intermediateResult map[string]any)

// EventFunc appends a typed TaskEvent outside of the progress channel (e.g.
// a per-cluster "info" event during report generation).
type EventFunc func(eventType entity.TaskEventType, data map[string]any)

// CheckCancelledFunc reports whether a cancel request has arrived for the
// running task. Executors must sample it between logical steps (per
// source, per article, per section) and return promptly when it's true.
type CheckCancelledFunc func() bool

// Executor performs the work behind one task_type. It must never panic;
// returning an error marks the task failed with that error's message.
type Executor interface {
	Execute(ctx context.Context, params map[string]any, onProgress ProgressFunc, onEvent EventFunc, checkCancelled CheckCancelledFunc) (map[string]any, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, params map[string]any, onProgress ProgressFunc, onEvent EventFunc, checkCancelled CheckCancelledFunc) (map[string]any, error)

func (f ExecutorFunc) Execute(ctx context.Context, params map[string]any, onProgress ProgressFunc, onEvent EventFunc, checkCancelled CheckCancelledFunc) (map[string]any, error) {
	return f(ctx, params, onProgress, onEvent, checkCancelled)
}
