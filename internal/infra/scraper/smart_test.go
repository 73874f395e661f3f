package scraper

import (
	"strings"
	"testing"
)

const sampleArticleHTML = `
<html>
<head><title>Breaking News - Example Times</title></head>
<body>
  <nav class="main-nav">Home About Contact</nav>
  <div class="sidebar widget">Trending stories you might like</div>
  <article>
    <h1>Local Council Approves New Park Budget</h1>
    <p>The city council voted unanimously on Tuesday to approve a new budget for
    the downtown park renovation project, citing strong community support.</p>
    <p>Residents have been advocating for the upgrade since early last year,
    and construction is expected to begin within the next two months.</p>
  </article>
  <div class="comments">Leave a comment below</div>
</body>
</html>`

func TestSmartExtractor_ExtractAll_SalvagesArticle(t *testing.T) {
	doc := mustDoc(t, sampleArticleHTML)
	e := NewSmartExtractor()
	result := e.ExtractAll(doc, "https://example.com/news/park-budget")

	if result.Title != "Local Council Approves New Park Budget" {
		t.Fatalf("unexpected title: %q", result.Title)
	}
	if len(result.Content) < minExtractedTextLength {
		t.Fatalf("content too short: %q", result.Content)
	}
	if containsAny(result.Content, "Trending stories", "Leave a comment") {
		t.Fatalf("noise leaked into content: %q", result.Content)
	}
}

func TestSmartExtractor_TitleFallsBackToTitleTag(t *testing.T) {
	html := `<html><head><title>Some Headline - My Site</title></head><body><p>No h1 here, just a lone paragraph with enough text to pass the minimum length check easily.</p></body></html>`
	doc := mustDoc(t, html)
	e := NewSmartExtractor()
	result := e.ExtractAll(doc, "https://example.com/x")
	if result.Title != "Some Headline" {
		t.Fatalf("expected suffix-stripped title tag, got %q", result.Title)
	}
}

func TestIsNoise_MatchesSidebarClass(t *testing.T) {
	doc := mustDoc(t, `<div class="sidebar-widget">x</div>`)
	sel := doc.Find("div").First()
	if !isNoise(sel) {
		t.Fatalf("expected sidebar-widget to be flagged as noise")
	}
}

func TestCleanText_RejectsJavaScriptPrompt(t *testing.T) {
	if got := cleanText("Please enable JavaScript to continue"); got != "" {
		t.Fatalf("expected JS-prompt text to be rejected, got %q", got)
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
