// Package schedule provides HTTP handlers for recurring-schedule CRUD and
// pause/resume/execute-now actions (spec §6 schedules + scheduler endpoints).
package schedule

import (
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// DTO is the JSON representation of a Schedule.
type DTO struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	ScheduleType    string         `json:"schedule_type"`
	Status          string         `json:"status"`
	IntervalMinutes int            `json:"interval_minutes"`
	MaxExecutions   *int           `json:"max_executions,omitempty"`
	ExecutionCount  int            `json:"execution_count"`
	Config          map[string]any `json:"config,omitempty"`
	LastRunAt       *time.Time     `json:"last_run_at,omitempty"`
	NextRunAt       time.Time      `json:"next_run_at"`
	LastStatus      string         `json:"last_status,omitempty"`
	LastError       string         `json:"last_error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func toDTO(s *entity.Schedule) DTO {
	return DTO{
		ID:              s.ID,
		Name:            s.Name,
		ScheduleType:    string(s.ScheduleType),
		Status:          string(s.Status),
		IntervalMinutes: s.IntervalMinutes,
		MaxExecutions:   s.MaxExecutions,
		ExecutionCount:  s.ExecutionCount,
		Config:          s.Config,
		LastRunAt:       s.LastRunAt,
		NextRunAt:       s.NextRunAt,
		LastStatus:      s.LastStatus,
		LastError:       s.LastError,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// CreateRequest is the POST /schedules request body.
type CreateRequest struct {
	Name            string         `json:"name"`
	ScheduleType    string         `json:"schedule_type"`
	IntervalMinutes int            `json:"interval_minutes"`
	MaxExecutions   *int           `json:"max_executions,omitempty"`
	Config          map[string]any `json:"config,omitempty"`
}
