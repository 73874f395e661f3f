package repository

import (
	"context"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// ScheduleRepository is the Store's Schedule collection.
type ScheduleRepository interface {
	Get(ctx context.Context, id int64) (*entity.Schedule, error)
	List(ctx context.Context) ([]*entity.Schedule, error)
	// ListDue returns active schedules with next_run_at <= now, ordered by
	// next_run_at ascending, for serial dispatch by the Scheduler.
	ListDue(ctx context.Context, now time.Time) ([]*entity.Schedule, error)
	Create(ctx context.Context, schedule *entity.Schedule) error
	Update(ctx context.Context, schedule *entity.Schedule) error
	Delete(ctx context.Context, id int64) error
}

// KeywordRepository is the Store's SearchKeyword collection.
type KeywordRepository interface {
	Get(ctx context.Context, id int64) (*entity.SearchKeyword, error)
	ListActive(ctx context.Context) ([]*entity.SearchKeyword, error)
	Create(ctx context.Context, keyword *entity.SearchKeyword) error
	Update(ctx context.Context, keyword *entity.SearchKeyword) error
	Delete(ctx context.Context, id int64) error
}
