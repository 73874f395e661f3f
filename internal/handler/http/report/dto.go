// Package report provides HTTP handlers for report creation, inspection,
// and live streaming of agent progress and section text (spec §6 reports
// endpoints; component I, the Report Agent).
package report

import (
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// DTO is the JSON representation of a Report, including its rendered
// sections once generation reaches StageCompleted.
type DTO struct {
	ID             int64                  `json:"id"`
	Title          string                 `json:"title"`
	TimeRangeStart time.Time              `json:"time_range_start"`
	TimeRangeEnd   time.Time              `json:"time_range_end"`
	TemplateID     *string                `json:"template_id,omitempty"`
	Language       string                 `json:"language"`
	Status         string                 `json:"status"`
	AgentStage     string                 `json:"agent_stage"`
	ProgressPct    int                    `json:"progress_pct"`
	Sections       []entity.ReportSection `json:"sections,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func toDTO(r *entity.Report) DTO {
	return DTO{
		ID:             r.ID,
		Title:          r.Title,
		TimeRangeStart: r.TimeRangeStart,
		TimeRangeEnd:   r.TimeRangeEnd,
		TemplateID:     r.TemplateID,
		Language:       r.Language,
		Status:         string(r.Status),
		AgentStage:     string(r.AgentStage),
		ProgressPct:    r.ProgressPct,
		Sections:       r.Sections,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// CreateRequest is the POST /reports request body. TimeRangeStart/End bound
// the article window; Keywords, when given, skip AI keyword generation.
type CreateRequest struct {
	Title          string    `json:"title"`
	TimeRangeStart time.Time `json:"time_range_start"`
	TimeRangeEnd   time.Time `json:"time_range_end"`
	TemplateID     *string   `json:"template_id,omitempty"`
	Language       string    `json:"language,omitempty"`
	UserPrompt     string    `json:"user_prompt,omitempty"`
	Keywords       []string  `json:"keywords,omitempty"`
	MaxEvents      int       `json:"max_events,omitempty"`
	MinScore       float64   `json:"min_score,omitempty"`
}

// ReferenceDTO is the JSON representation of a cited Reference.
type ReferenceDTO struct {
	ID            int64   `json:"id"`
	ArticleID     int64   `json:"article_id"`
	CitationIndex int     `json:"citation_index"`
	Snippet       *string `json:"snippet,omitempty"`
}

func toReferenceDTO(r *entity.Reference) ReferenceDTO {
	return ReferenceDTO{ID: r.ID, ArticleID: r.ArticleID, CitationIndex: r.CitationIndex, Snippet: r.Snippet}
}
