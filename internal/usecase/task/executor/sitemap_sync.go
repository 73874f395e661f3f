package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/infra/discovery"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

// SitemapSync runs robots.txt + sitemap discovery for one source and
// records any new article URLs as PendingArticles.
type SitemapSync struct {
	Sources   repository.SourceRepository
	Sitemaps  repository.SitemapRepository
	Pending   repository.PendingArticleRepository
	Discovery *discovery.Service
}

var _ task.Executor = (*SitemapSync)(nil)

// Execute implements task.Executor. params: {"source_id": int64}.
func (e *SitemapSync) Execute(ctx context.Context, params map[string]any, onProgress task.ProgressFunc, onEvent task.EventFunc, checkCancelled task.CheckCancelledFunc) (map[string]any, error) {
	sourceID, err := requireSourceID(params)
	if err != nil {
		return nil, err
	}
	source, err := e.Sources.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("SitemapSync: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("SitemapSync: %w", entity.ErrNotFound)
	}

	result, err := e.Discovery.Discover(ctx, source.BaseURL, discovery.DiscoverOptions{})
	if err != nil {
		return nil, fmt.Errorf("SitemapSync: %w", err)
	}
	if result.Robots != nil {
		onEvent(entity.TaskEventInfo, map[string]any{
			"robots_status": string(result.Robots.Status),
			"sitemap_urls":  result.Robots.SitemapURLs,
		})
		for _, sitemapURL := range result.Robots.SitemapURLs {
			e.recordSitemap(ctx, sourceID, sitemapURL)
		}
	}

	total := len(result.Entries)
	imported, present := 0, 0
	for i, entry := range result.Entries {
		if checkCancelled() {
			return map[string]any{
				"articles_imported":        imported,
				"articles_already_present": present,
				"cancelled":                true,
			}, nil
		}
		onProgress(i+1, total, entry.Loc, nil)

		exists, err := e.Pending.ExistsByURL(ctx, entry.Loc)
		if err != nil {
			continue
		}
		if exists {
			present++
			continue
		}
		p := entity.NewPendingArticle(sourceID, nil, entry.Loc)
		p.PublishTime = entry.LastMod
		if err := e.Pending.Create(ctx, p); err == nil {
			imported++
		}
	}

	return map[string]any{
		"sitemaps_found":           len(result.Robots.SitemapURLs),
		"articles_imported":        imported,
		"articles_already_present": present,
	}, nil
}

func (e *SitemapSync) recordSitemap(ctx context.Context, sourceID int64, sitemapURL string) {
	existing, err := e.Sitemaps.GetByURL(ctx, sitemapURL)
	if err == nil && existing != nil {
		now := time.Now().UTC()
		existing.LastFetched = &now
		existing.FetchStatus = entity.SitemapFetchSuccess
		_ = e.Sitemaps.Update(ctx, existing)
		return
	}
	now := time.Now().UTC()
	sm := &entity.Sitemap{
		SourceID:    sourceID,
		URL:         sitemapURL,
		LastFetched: &now,
		FetchStatus: entity.SitemapFetchSuccess,
	}
	if err := sm.Validate(); err != nil {
		return
	}
	_ = e.Sitemaps.Create(ctx, sm)
}
