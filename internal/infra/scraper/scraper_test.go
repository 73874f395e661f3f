package scraper

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

const articlePageHTML = `
<html>
<head>
  <title>Town Hall Meeting Recap - News Site</title>
  <meta property="og:title" content="Town Hall Meeting Recap">
  <meta property="article:published_time" content="2026-05-10T09:00:00Z">
  <meta property="article:tag" content="local-government">
  <meta property="article:tag" content="budget">
</head>
<body>
  <article class="story">
    <h1>Town Hall Meeting Recap</h1>
    <p>Officials discussed the upcoming budget cycle at length.</p>
    <img src="/media/photo1.jpg">
    <img src="/pages/archive.html">
    <a href="/related-story">related coverage</a>
  </article>
</body>
</html>`

func TestScraper_Scrape_SelectorDrivenExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePageHTML))
	}))
	defer srv.Close()

	s := New()
	cfg := entity.ParserConfig{TitleSelector: "h1", ContentSelector: "article.story, article"}
	result := s.Scrape(t.Context(), srv.URL+"/town-hall", cfg, 1)

	if result.Error != "" {
		t.Fatalf("unexpected error: %s", result.Error)
	}
	if result.Title != "Town Hall Meeting Recap" {
		t.Fatalf("unexpected title: %q", result.Title)
	}
	if result.PublishTime == nil || result.PublishTime.Year() != 2026 {
		t.Fatalf("unexpected publish time: %v", result.PublishTime)
	}
	if len(result.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", result.Tags)
	}
	if len(result.Images) != 1 {
		t.Fatalf("expected exactly 1 image (the .html one should be rejected), got %v", result.Images)
	}
}

func TestScraper_Scrape_404ShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := New()
	result := s.Scrape(t.Context(), srv.URL+"/missing", entity.ParserConfig{TitleSelector: "h1", ContentSelector: "article"}, 1)
	if result.Error == "" {
		t.Fatalf("expected an error for 404")
	}
}

func TestScraper_Scrape_FallsBackToSmartExtractorOnShortContent(t *testing.T) {
	html := `<html><body><article class="story"></article><main><h1>Fallback Headline For This Page</h1><p>This paragraph is long enough to be picked up by the smart extractor fallback path when the configured selector yields nothing.</p></main></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(html))
	}))
	defer srv.Close()

	s := New()
	cfg := entity.ParserConfig{TitleSelector: "h2.missing", ContentSelector: "article.story"}
	result := s.Scrape(t.Context(), srv.URL+"/x", cfg, 1)
	if result.Error != "" {
		t.Fatalf("unexpected error: %s", result.Error)
	}
	if len(result.Content) < 50 {
		t.Fatalf("expected SmartExtractor fallback content, got %q", result.Content)
	}
}

func TestLooksLikeImageURL_HeuristicCases(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/media/photo.jpg":    true,
		"https://example.com/upload/2026/x":      true,
		"https://example.com/static/banner.webp": true,
		"https://example.com/pages/archive.html": false,
		"https://example.com/app.php":            false,
		"https://example.com/article/123":        false,
	}
	for url, want := range cases {
		if got := looksLikeImageURL(url); got != want {
			t.Errorf("looksLikeImageURL(%q) = %v, want %v", url, got, want)
		}
	}
}
