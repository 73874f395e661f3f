// Package keyword provides HTTP handlers for SearchKeyword CRUD and the
// active-keyword list the Scheduler's keyword-search schedules consult
// (spec §6 keywords endpoints).
package keyword

import (
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// DTO is the JSON representation of a SearchKeyword.
type DTO struct {
	ID         int64      `json:"id"`
	Query      string     `json:"query"`
	TimeRange  string     `json:"time_range"`
	MaxResults int        `json:"max_results"`
	Region     string     `json:"region,omitempty"`
	IsActive   bool       `json:"is_active"`
	UsageCount int        `json:"usage_count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toDTO(k *entity.SearchKeyword) DTO {
	return DTO{
		ID:         k.ID,
		Query:      k.Query,
		TimeRange:  string(k.TimeRange),
		MaxResults: k.MaxResults,
		Region:     k.Region,
		IsActive:   k.IsActive,
		UsageCount: k.UsageCount,
		LastUsedAt: k.LastUsedAt,
		CreatedAt:  k.CreatedAt,
		UpdatedAt:  k.UpdatedAt,
	}
}

// CreateRequest is the POST /keywords request body.
type CreateRequest struct {
	Query      string `json:"query"`
	TimeRange  string `json:"time_range,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
	Region     string `json:"region,omitempty"`
}

// UpdateRequest is the PUT /keywords/{id} request body.
type UpdateRequest struct {
	Query      string `json:"query"`
	TimeRange  string `json:"time_range,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
	Region     string `json:"region,omitempty"`
	IsActive   bool   `json:"is_active"`
}
