package executor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/infra/scraper"
)

func TestCrawlPending_ScrapesAndMaterializesArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><article><h1>Headline</h1><p>Enough content to clear the short-content SmartExtractor fallback threshold here.</p></article></body></html>`))
	}))
	defer srv.Close()

	sources := newFakeSourceRepo()
	zero := 0
	source := sources.add(&entity.CrawlSource{
		SiteName: "test", BaseURL: srv.URL, CrawlIntervalSeconds: 3600,
		ParserConfig:      entity.ParserConfig{TitleSelector: "h1", ContentSelector: "article"},
		CrawlDelaySeconds: &zero,
	})

	pending := newFakePendingRepo()
	p := entity.NewPendingArticle(source.ID, nil, srv.URL+"/story")
	_ = pending.Create(t.Context(), p)

	articles := newFakeArticleRepo()
	e := &CrawlPending{Sources: sources, Pending: pending, Articles: articles, Scraper: scraper.New()}

	result, err := e.Execute(t.Context(), map[string]any{"limit_per_source": 10}, noopProgress, noopEvent, neverCancelled)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result["total_completed"] != 1 {
		t.Fatalf("expected 1 completed crawl, got %v", result["total_completed"])
	}

	got, _ := pending.Get(t.Context(), p.ID)
	if got.Status != entity.PendingStatusCompleted {
		t.Fatalf("expected pending row to be completed, got %s", got.Status)
	}
}

func TestCrawlPending_ScrapeFailureMarksPendingFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	sources := newFakeSourceRepo()
	zero := 0
	source := sources.add(&entity.CrawlSource{SiteName: "test", BaseURL: srv.URL, CrawlIntervalSeconds: 3600, CrawlDelaySeconds: &zero})

	pending := newFakePendingRepo()
	p := entity.NewPendingArticle(source.ID, nil, srv.URL+"/missing")
	_ = pending.Create(t.Context(), p)

	e := &CrawlPending{Sources: sources, Pending: pending, Articles: newFakeArticleRepo(), Scraper: scraper.New()}
	if _, err := e.Execute(t.Context(), nil, noopProgress, noopEvent, neverCancelled); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got, _ := pending.Get(t.Context(), p.ID)
	if got.Status != entity.PendingStatusFailed {
		t.Fatalf("expected failed status, got %s", got.Status)
	}
}
