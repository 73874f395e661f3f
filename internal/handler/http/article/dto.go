// Package article provides HTTP handlers for Article inspection and
// paginated/filtered search (spec §6 articles endpoints). Articles are
// produced by the ingestion pipeline (components B/C), not created
// directly through this API, so there is no create/update route here.
package article

import (
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

// DTO is the JSON representation of an Article.
type DTO struct {
	ID          int64            `json:"id"`
	URL         string           `json:"url"`
	Title       string           `json:"title"`
	Content     string           `json:"content,omitempty"`
	ContentHash *string          `json:"content_hash,omitempty"`
	PublishTime *time.Time       `json:"publish_time,omitempty"`
	Author      string           `json:"author,omitempty"`
	SourceID    int64            `json:"source_id"`
	SourceName  string           `json:"source_name,omitempty"`
	Status      string           `json:"status"`
	FetchStatus string           `json:"fetch_status"`
	RetryCount  int              `json:"retry_count"`
	Error       string           `json:"error,omitempty"`
	Extra       entity.ExtraData `json:"extra,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toDTO(a *entity.Article) DTO {
	return DTO{
		ID:          a.ID,
		URL:         a.URL,
		Title:       a.Title,
		Content:     a.Content,
		ContentHash: a.ContentHash,
		PublishTime: a.PublishTime,
		Author:      a.Author,
		SourceID:    a.SourceID,
		Status:      string(a.Status),
		FetchStatus: string(a.FetchStatus),
		RetryCount:  a.RetryCount,
		Error:       a.Error,
		Extra:       a.Extra,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toDTOWithSource(a *repository.ArticleWithSource) DTO {
	dto := toDTO(a.Article)
	dto.SourceName = a.SourceName
	return dto
}
