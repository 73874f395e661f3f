// Package task provides HTTP handlers for task creation, inspection, and
// live progress streaming (spec §6 tasks endpoints).
package task

import (
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// DTO is the JSON representation of a Task.
type DTO struct {
	ID              int64          `json:"id"`
	TaskType        string         `json:"task_type"`
	Status          string         `json:"status"`
	Title           string         `json:"title"`
	Params          map[string]any `json:"params,omitempty"`
	Result          map[string]any `json:"result,omitempty"`
	ProgressCurrent int            `json:"progress_current"`
	ProgressTotal   int            `json:"progress_total"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func toDTO(t *entity.Task) DTO {
	return DTO{
		ID:              t.ID,
		TaskType:        t.TaskType,
		Status:          string(t.Status),
		Title:           t.Title,
		Params:          t.Params,
		Result:          t.Result,
		ProgressCurrent: t.ProgressCurrent,
		ProgressTotal:   t.ProgressTotal,
		ErrorMessage:    t.ErrorMessage,
		StartedAt:       t.StartedAt,
		CompletedAt:     t.CompletedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// CreateRequest is the POST /tasks request body.
type CreateRequest struct {
	TaskType string         `json:"task_type"`
	Title    string         `json:"title"`
	Params   map[string]any `json:"params"`
}
