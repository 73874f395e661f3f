package repository

import (
	"context"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// ArticleWithSource joins an Article with its owning CrawlSource's name for
// list views that need it without a second round trip.
type ArticleWithSource struct {
	*entity.Article
	SourceName string
}

// ArticleSearchFilters narrows ListWithSourcePaginated. Nil fields are
// unconstrained.
type ArticleSearchFilters struct {
	SourceID    *int64
	Status      *entity.ArticleStatus
	FetchStatus *entity.FetchStatus
	From        *time.Time
	To          *time.Time
	Keyword     *string // ILIKE against title/content
}

// ArticleRepository is the Store's Article collection.
type ArticleRepository interface {
	Get(ctx context.Context, id int64) (*entity.Article, error)
	GetByURLHash(ctx context.Context, urlHash string) (*entity.Article, error)
	ListWithSourcePaginated(ctx context.Context, filters ArticleSearchFilters, offset, limit int) ([]*ArticleWithSource, int, error)

	// ListByTimeRange supports the Report Agent's article_filter and the
	// Aggregator's per-shard windows.
	ListByTimeRange(ctx context.Context, from, to time.Time, limit int) ([]*entity.Article, error)

	// ListLowQuality supports cleanup_low_quality: articles below the given
	// content length or missing required fields.
	ListLowQuality(ctx context.Context, minContentLen int, olderThan time.Time, limit int) ([]*entity.Article, error)

	// ExistsByURLHashBatch avoids N+1 checks when bulk-inserting from a
	// crawl pass; returns the subset of hashes already present.
	ExistsByURLHashBatch(ctx context.Context, urlHashes []string) (map[string]bool, error)

	Create(ctx context.Context, article *entity.Article) error
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, id int64) error
}
