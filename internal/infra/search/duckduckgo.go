// Package search implements the external search backend behind the
// schedule_keyword_search task executor: an HTML scrape of DuckDuckGo's
// no-JS results page, the same approach the original system used, since
// DuckDuckGo has no public API key-free JSON endpoint.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task/executor"
)

// resultsEndpoint is a var, not a const, so tests can point it at a local
// httptest server.
var resultsEndpoint = "https://html.duckduckgo.com/html/"

var timeRangeParam = map[entity.TimeRange]string{
	entity.TimeRangeDay:   "d",
	entity.TimeRangeWeek:  "w",
	entity.TimeRangeMonth: "m",
	entity.TimeRangeYear:  "y",
}

// DuckDuckGo scrapes html.duckduckgo.com/html/ for search results. It has
// no API key requirement but is therefore also not a stable contract;
// result parsing degrades gracefully (an empty slice, not an error) when
// the markup it expects isn't found.
type DuckDuckGo struct {
	HTTPClient *http.Client
	UserAgent  string
}

var _ executor.SearchBackend = (*DuckDuckGo)(nil)

// New returns a DuckDuckGo backend with a 10s timeout, matching the
// original search service's default.
func New() *DuckDuckGo {
	return &DuckDuckGo{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

// Search implements executor.SearchBackend.
func (d *DuckDuckGo) Search(ctx context.Context, query string, timeRange entity.TimeRange, region string, maxResults int) ([]executor.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	form := url.Values{}
	form.Set("q", query)
	if region != "" {
		form.Set("kl", region)
	}
	if df, ok := timeRangeParam[timeRange]; ok {
		form.Set("df", df)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultsEndpoint+"?"+form.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("DuckDuckGo.Search: %w", err)
	}
	req.Header.Set("User-Agent", d.UserAgent)

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DuckDuckGo.Search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DuckDuckGo.Search: unexpected status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("DuckDuckGo.Search: %w", err)
	}

	var out []executor.SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(out) >= maxResults {
			return false
		}
		titleLink := s.Find(".result__title a").First()
		title := strings.TrimSpace(titleLink.Text())
		href, _ := titleLink.Attr("href")
		if title == "" || href == "" {
			return true
		}
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		source := strings.TrimSpace(s.Find(".result__url").First().Text())

		out = append(out, executor.SearchResult{
			Title:   title,
			URL:     unwrapRedirect(href),
			Snippet: snippet,
			Source:  source,
		})
		return true
	})

	return out, nil
}

// unwrapRedirect extracts the uddg query parameter DuckDuckGo wraps real
// result URLs in (e.g. "//duckduckgo.com/l/?uddg=<percent-encoded-url>&...").
// url.Values already percent-decodes query values, so href is returned
// unchanged only when it isn't a wrapped redirect.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	target := u.Query().Get("uddg")
	if target == "" {
		return href
	}
	return target
}
