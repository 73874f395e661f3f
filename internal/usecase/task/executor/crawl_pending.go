package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/infra/scraper"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

const defaultLimitPerSource = 20

// CrawlPending pops pending URLs for every enabled source, scrapes each,
// and materializes successful scrapes as Articles.
type CrawlPending struct {
	Sources  repository.SourceRepository
	Pending  repository.PendingArticleRepository
	Articles repository.ArticleRepository
	Scraper  *scraper.Scraper
}

var _ task.Executor = (*CrawlPending)(nil)

// Execute implements task.Executor. params: {"limit_per_source": int}.
func (e *CrawlPending) Execute(ctx context.Context, params map[string]any, onProgress task.ProgressFunc, onEvent task.EventFunc, checkCancelled task.CheckCancelledFunc) (map[string]any, error) {
	limit := paramIntDefault(params, "limit_per_source", defaultLimitPerSource)

	sources, err := e.Sources.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("CrawlPending: %w", err)
	}

	perSource := make(map[string]any, len(sources))
	totalCompleted, totalFailed := 0, 0

	for i, source := range sources {
		if checkCancelled() {
			break
		}
		completed, failed := e.crawlSource(ctx, source, limit, checkCancelled)
		totalCompleted += completed
		totalFailed += failed
		perSource[source.SiteName] = map[string]any{"completed": completed, "failed": failed}
		onProgress(i+1, len(sources), source.SiteName, map[string]any{source.SiteName: perSource[source.SiteName]})
	}

	return map[string]any{
		"per_source":      perSource,
		"total_completed": totalCompleted,
		"total_failed":    totalFailed,
	}, nil
}

func (e *CrawlPending) crawlSource(ctx context.Context, source *entity.CrawlSource, limit int, checkCancelled task.CheckCancelledFunc) (completed, failed int) {
	rows, err := e.Pending.ListForCrawl(ctx, source.ID, entity.PendingStatusPending, limit)
	if err != nil {
		return 0, 0
	}

	delay := crawlDelayFor(source)
	for i, p := range rows {
		if checkCancelled() {
			// Cooperative cancellation: a row left mid-crawl reverts to
			// failed rather than staying stuck in "crawling".
			_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusFailed)
			break
		}

		_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusCrawling)
		scraped := e.Scraper.Scrape(ctx, p.URL, source.ParserConfig, source.ID)
		if scraped.Error != "" {
			_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusFailed)
			failed++
			continue
		}

		article := &entity.Article{
			URLHash:     entity.URLHash(p.URL),
			URL:         p.URL,
			Title:       scraped.Title,
			Content:     scraped.Content,
			PublishTime: scraped.PublishTime,
			Author:      scraped.Author,
			SourceID:    source.ID,
			Status:      entity.ArticleStatusRaw,
			FetchStatus: entity.FetchStatusSuccess,
			Extra:       entity.ExtraData{Images: scraped.Images, Tags: scraped.Tags},
		}
		article.RecomputeContentHash()
		if err := article.Validate(); err != nil {
			_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusFailed)
			failed++
			continue
		}
		if err := e.Articles.Create(ctx, article); err != nil {
			_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusFailed)
			failed++
			continue
		}
		_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusCompleted)
		completed++

		if i < len(rows)-1 {
			sleep(ctx, delay)
		}
	}
	return completed, failed
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
