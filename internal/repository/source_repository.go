// Package repository declares the storage-facing interfaces the Store
// (component A) exposes to every other component. Implementations live
// under internal/infra/adapter/persistence.
package repository

import (
	"context"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// SourceRepository is the Store's CrawlSource collection.
type SourceRepository interface {
	Get(ctx context.Context, id int64) (*entity.CrawlSource, error)
	GetByBaseURL(ctx context.Context, baseURL string) (*entity.CrawlSource, error)
	List(ctx context.Context) ([]*entity.CrawlSource, error)
	ListEnabled(ctx context.Context) ([]*entity.CrawlSource, error)
	Create(ctx context.Context, source *entity.CrawlSource) error
	Update(ctx context.Context, source *entity.CrawlSource) error
	Delete(ctx context.Context, id int64) error
}
