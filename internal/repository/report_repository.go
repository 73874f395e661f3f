package repository

import (
	"context"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// ReportRepository is the Store's Report collection.
type ReportRepository interface {
	Get(ctx context.Context, id int64) (*entity.Report, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.Report, error)
	Create(ctx context.Context, report *entity.Report) error
	// Update persists status, stage, progress, and the current section
	// snapshot; called repeatedly as the Report Agent advances.
	Update(ctx context.Context, report *entity.Report) error
	Delete(ctx context.Context, id int64) error
}

// ReferenceRepository is the Store's Reference collection, keyed by report.
type ReferenceRepository interface {
	ListByReport(ctx context.Context, reportID int64) ([]*entity.Reference, error)
	CreateBatch(ctx context.Context, refs []*entity.Reference) error
	DeleteByReport(ctx context.Context, reportID int64) error
}
