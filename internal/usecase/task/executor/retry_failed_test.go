package executor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/infra/scraper"
)

func TestRetryFailed_RecoversOnSuccessfulSecondAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><article><h1>Recovered</h1><p>This article was initially marked failed but scrapes fine on the retry pass here.</p></article></body></html>`))
	}))
	defer srv.Close()

	sources := newFakeSourceRepo()
	source := sources.add(&entity.CrawlSource{SiteName: "test", BaseURL: srv.URL, CrawlIntervalSeconds: 3600, ParserConfig: entity.ParserConfig{TitleSelector: "h1", ContentSelector: "article"}})

	pending := newFakePendingRepo()
	p := entity.NewPendingArticle(source.ID, nil, srv.URL+"/x")
	p.Status = entity.PendingStatusFailed
	_ = pending.Create(t.Context(), p)

	e := &RetryFailed{Pending: pending, Sources: sources, Articles: newFakeArticleRepo(), Scraper: scraper.New()}
	result, err := e.Execute(t.Context(), nil, noopProgress, noopEvent, neverCancelled)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result["recovered"] != 1 {
		t.Fatalf("expected 1 recovered, got %v", result["recovered"])
	}
}

func TestRetryFailed_AbandonsOnSecondFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	sources := newFakeSourceRepo()
	source := sources.add(&entity.CrawlSource{SiteName: "test", BaseURL: srv.URL, CrawlIntervalSeconds: 3600})

	pending := newFakePendingRepo()
	p := entity.NewPendingArticle(source.ID, nil, srv.URL+"/gone")
	p.Status = entity.PendingStatusFailed
	_ = pending.Create(t.Context(), p)

	e := &RetryFailed{Pending: pending, Sources: sources, Articles: newFakeArticleRepo(), Scraper: scraper.New()}
	result, err := e.Execute(t.Context(), nil, noopProgress, noopEvent, neverCancelled)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result["abandoned"] != 1 {
		t.Fatalf("expected 1 abandoned, got %v", result["abandoned"])
	}

	got, _ := pending.Get(t.Context(), p.ID)
	if got.Status != entity.PendingStatusAbandoned {
		t.Fatalf("expected abandoned status, got %s", got.Status)
	}
}
