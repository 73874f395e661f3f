package executor

import (
	"context"
	"fmt"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/infra/scraper"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

const defaultRetryLimit = 50

// RetryFailed gives every failed PendingArticle a single additional scrape
// attempt. A second failure is terminal: the row moves to abandoned rather
// than back to failed, since failed -> crawling is the state machine's only
// retry path.
type RetryFailed struct {
	Pending  repository.PendingArticleRepository
	Sources  repository.SourceRepository
	Articles repository.ArticleRepository
	Scraper  *scraper.Scraper
}

var _ task.Executor = (*RetryFailed)(nil)

// Execute implements task.Executor. params: {"limit": int}.
func (e *RetryFailed) Execute(ctx context.Context, params map[string]any, onProgress task.ProgressFunc, onEvent task.EventFunc, checkCancelled task.CheckCancelledFunc) (map[string]any, error) {
	limit := paramIntDefault(params, "limit", defaultRetryLimit)

	rows, err := e.Pending.ListByStatus(ctx, entity.PendingStatusFailed, limit)
	if err != nil {
		return nil, fmt.Errorf("RetryFailed: %w", err)
	}

	sourceCache := make(map[int64]*entity.CrawlSource)
	recovered, abandoned := 0, 0

	for i, p := range rows {
		if checkCancelled() {
			break
		}
		onProgress(i+1, len(rows), p.URL, nil)

		source, ok := sourceCache[p.SourceID]
		if !ok {
			source, _ = e.Sources.Get(ctx, p.SourceID)
			sourceCache[p.SourceID] = source
		}
		if source == nil {
			_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusAbandoned)
			abandoned++
			continue
		}

		_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusCrawling)
		scraped := e.Scraper.Scrape(ctx, p.URL, source.ParserConfig, source.ID)
		if scraped.Error != "" {
			_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusAbandoned)
			abandoned++
			onEvent(entity.TaskEventInfo, map[string]any{"url": p.URL, "error": scraped.Error})
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
		if err := article.Validate(); err != nil || e.Articles.Create(ctx, article) != nil {
			_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusAbandoned)
			abandoned++
			continue
		}
		_ = e.Pending.UpdateStatus(ctx, p.ID, entity.PendingStatusCompleted)
		recovered++
	}

	return map[string]any{
		"retried":   len(rows),
		"recovered": recovered,
		"abandoned": abandoned,
	}, nil
}
