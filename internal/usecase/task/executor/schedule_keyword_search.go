package executor

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/infra/scraper"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

const defaultSourceCrawlIntervalSeconds = 3600

// ScheduleKeywordSearch runs every active SearchKeyword through an external
// search backend, deduplicates against known article URLs, and scrapes and
// stores whatever is new. A previously unseen base URL gets a lazily
// created, disabled CrawlSource so it surfaces for the operator to review
// and enable rather than being crawled unattended.
type ScheduleKeywordSearch struct {
	Keywords repository.KeywordRepository
	Sources  repository.SourceRepository
	Articles repository.ArticleRepository
	Scraper  *scraper.Scraper
	Search   SearchBackend
}

var _ task.Executor = (*ScheduleKeywordSearch)(nil)

// Execute implements task.Executor. No required params; it iterates every
// active keyword.
func (e *ScheduleKeywordSearch) Execute(ctx context.Context, params map[string]any, onProgress task.ProgressFunc, onEvent task.EventFunc, checkCancelled task.CheckCancelledFunc) (map[string]any, error) {
	keywords, err := e.Keywords.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("ScheduleKeywordSearch: %w", err)
	}

	created, skipped := 0, 0
	for i, kw := range keywords {
		if checkCancelled() {
			break
		}
		onProgress(i+1, len(keywords), kw.Query, map[string]any{"created": created, "skipped": skipped})

		results, err := e.Search.Search(ctx, kw.Query, kw.TimeRange, kw.Region, kw.MaxResults)
		if err != nil {
			onEvent(entity.TaskEventInfo, map[string]any{"keyword": kw.Query, "search_error": err.Error()})
			continue
		}

		for _, r := range results {
			if checkCancelled() {
				break
			}
			added, dup := e.ingest(ctx, r)
			if added {
				created++
			}
			if dup {
				skipped++
			}
		}

		now := time.Now().UTC()
		kw.UsageCount++
		kw.LastUsedAt = &now
		_ = e.Keywords.Update(ctx, kw)
	}

	return map[string]any{
		"articles_created":   created,
		"duplicates_skipped": skipped,
	}, nil
}

func (e *ScheduleKeywordSearch) ingest(ctx context.Context, r SearchResult) (added, duplicate bool) {
	urlHash := entity.URLHash(r.URL)
	if existing, err := e.Articles.GetByURLHash(ctx, urlHash); err == nil && existing != nil {
		return false, true
	}

	source, err := e.sourceFor(ctx, r.URL)
	if err != nil {
		return false, false
	}

	scraped := e.Scraper.Scrape(ctx, r.URL, source.ParserConfig, source.ID)
	if scraped.Error != "" {
		return false, false
	}

	article := &entity.Article{
		URLHash:     urlHash,
		URL:         r.URL,
		Title:       firstNonEmpty(scraped.Title, r.Title),
		Content:     scraped.Content,
		PublishTime: firstNonNilTime(scraped.PublishTime, r.PublishedDate),
		Author:      scraped.Author,
		SourceID:    source.ID,
		Status:      entity.ArticleStatusRaw,
		FetchStatus: entity.FetchStatusSuccess,
		Extra:       entity.ExtraData{Images: scraped.Images, Tags: scraped.Tags},
	}
	article.RecomputeContentHash()
	if err := article.Validate(); err != nil {
		return false, false
	}
	if err := e.Articles.Create(ctx, article); err != nil {
		return false, false
	}
	return true, false
}

// sourceFor returns the CrawlSource owning rawURL's origin, lazily creating
// a disabled one (discovery_method=list) when the base URL hasn't been
// seen before.
func (e *ScheduleKeywordSearch) sourceFor(ctx context.Context, rawURL string) (*entity.CrawlSource, error) {
	base, err := baseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if existing, err := e.Sources.GetByBaseURL(ctx, base); err == nil && existing != nil {
		return existing, nil
	}

	u, _ := url.Parse(base)
	siteName := base
	if u != nil && u.Host != "" {
		siteName = u.Host
	}
	source := &entity.CrawlSource{
		SiteName:             siteName,
		BaseURL:              base,
		DiscoveryMethod:      entity.DiscoveryMethodList,
		CrawlIntervalSeconds: defaultSourceCrawlIntervalSeconds,
		Enabled:              false,
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if err := e.Sources.Create(ctx, source); err != nil {
		return nil, err
	}
	return source, nil
}

func baseURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstNonNilTime(a, b *time.Time) *time.Time {
	if a != nil {
		return a
	}
	return b
}
