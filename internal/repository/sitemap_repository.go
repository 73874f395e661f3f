package repository

import (
	"context"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// SitemapRepository is the Store's Sitemap collection.
type SitemapRepository interface {
	Get(ctx context.Context, id int64) (*entity.Sitemap, error)
	GetByURL(ctx context.Context, url string) (*entity.Sitemap, error)
	ListBySource(ctx context.Context, sourceID int64) ([]*entity.Sitemap, error)
	Create(ctx context.Context, sitemap *entity.Sitemap) error
	Update(ctx context.Context, sitemap *entity.Sitemap) error
	// Delete removes a sitemap; per the Store's cascade invariant,
	// implementations must also delete the PendingArticles it produced.
	Delete(ctx context.Context, id int64) error
}

// PendingArticleRepository is the Store's PendingArticle queue.
type PendingArticleRepository interface {
	Get(ctx context.Context, id int64) (*entity.PendingArticle, error)
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// ListForCrawl returns up to limit pending rows for sourceID ordered by
	// publish_time DESC NULLS LAST, created_at DESC, restricted to status.
	ListForCrawl(ctx context.Context, sourceID int64, status entity.PendingStatus, limit int) ([]*entity.PendingArticle, error)
	ListByStatus(ctx context.Context, status entity.PendingStatus, limit int) ([]*entity.PendingArticle, error)
	CountBySource(ctx context.Context, sourceID int64) (map[entity.PendingStatus]int, error)
	Create(ctx context.Context, p *entity.PendingArticle) error
	CreateBatch(ctx context.Context, ps []*entity.PendingArticle) (inserted int, err error)
	UpdateStatus(ctx context.Context, id int64, status entity.PendingStatus) error
	Update(ctx context.Context, p *entity.PendingArticle) error
}
