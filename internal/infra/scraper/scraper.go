// Package scraper implements the universal, selector-driven article
// scraper: HTTP fetch with UA rotation and retry, CSS-selector extraction
// with a heuristic fallback, Markdown rendering of the content subtree,
// and publish-time extraction.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/resilience/circuitbreaker"
	"github.com/myki-jim/newssys-sub000/internal/resilience/retry"
)

// DefaultTimeout is the overall per-scrape budget when ParserConfig and
// caller don't override it.
const DefaultTimeout = 30 * time.Second

const maxAttempts = 3
const maxImages = 20
const maxTags = 10

// ScrapedArticle is the result of a single scrape attempt. It is always
// returned, even on failure — Error is populated instead of an error
// return, matching the contract that scraping never throws.
type ScrapedArticle struct {
	URL         string
	Title       string
	Content     string
	PublishTime *time.Time
	Author      string
	Images      []string
	Tags        []string
	Error       string
}

// Scraper fetches and extracts a single article page per a source's
// ParserConfig, falling back to SmartExtractor when selectors come up
// short.
type Scraper struct {
	HTTPClient     *http.Client
	CircuitBreaker *circuitbreaker.CircuitBreaker
	Smart          *SmartExtractor
	Time           *TimeExtractor
	Timeout        time.Duration
}

// New returns a Scraper wired with the pack's standard web-scraper retry
// and circuit-breaker policies.
func New() *Scraper {
	return &Scraper{
		HTTPClient:     &http.Client{Timeout: DefaultTimeout},
		CircuitBreaker: circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		Smart:          NewSmartExtractor(),
		Time:           &TimeExtractor{},
		Timeout:        DefaultTimeout,
	}
}

// Scrape fetches pageURL and extracts title/content/author/publish_time
// per cfg's selectors, falling back to SmartExtractor when the configured
// selectors yield content shorter than ~100 characters. sourceID is
// accepted for logging/metrics symmetry with the source it's crawling.
func (s *Scraper) Scrape(ctx context.Context, pageURL string, cfg entity.ParserConfig, sourceID int64) *ScrapedArticle {
	result := &ScrapedArticle{URL: pageURL}

	html, finalURL, err := s.fetchWithRetry(ctx, pageURL)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		result.Error = fmt.Sprintf("parse error: %v", err)
		return result
	}

	title := selectText(doc, cfg.TitleSelector)
	content, contentSel := selectContent(doc, cfg.ContentSelector)
	author := selectText(doc, cfg.AuthorSelector)

	var publishTime *time.Time
	if cfg.PublishTimeSelector != "" {
		if text := selectText(doc, cfg.PublishTimeSelector); text != "" {
			if dt, ok := ParseDateTimeString(text); ok {
				publishTime = &dt
			} else {
				publishTime = ExtractDateFromText(text)
			}
		}
	}
	if publishTime == nil {
		publishTime = s.Time.ExtractPublishTime(doc, finalURL)
	}

	if content == "" || len([]rune(content)) < 100 {
		smart := s.Smart.ExtractAll(doc, finalURL)
		if smart.Title != "" && len(smart.Title) > len(title) {
			title = smart.Title
		}
		if len(smart.Content) > 100 {
			content = smart.Content
			contentSel = nil
		}
		if publishTime == nil {
			publishTime = smart.PublishTime
		}
	}

	if len([]rune(content)) < 100 {
		if readTitle, readContent, ok := extractReadability(html, finalURL); ok {
			if title == "" {
				title = readTitle
			}
			content = readContent
			contentSel = nil
		}
	}

	markdown := content
	if contentSel != nil {
		markdown = renderMarkdown(contentSel, finalURL)
	}

	result.Title = title
	result.Content = markdown
	result.Author = author
	result.PublishTime = publishTime
	result.Images = extractImages(doc, finalURL)
	result.Tags = extractTags(doc)
	return result
}

// extractReadability is the last-resort fallback when both the configured
// selectors and SmartExtractor come up short: it hands the already-fetched
// HTML to Mozilla Readability, which runs its own DOM-scoring heuristic
// independent of the class/id noise patterns SmartExtractor relies on.
func extractReadability(html, pageURL string) (title, content string, ok bool) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = nil
	}
	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return "", "", false
	}
	text := strings.TrimSpace(article.TextContent)
	if len([]rune(text)) < 100 {
		return "", "", false
	}
	return strings.TrimSpace(article.Title), text, true
}

// selectText applies a comma-separated fallback selector list and returns
// the first matching element's trimmed text.
func selectText(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	for _, sel := range splitSelectors(selector) {
		node := doc.Find(sel).First()
		if node.Length() > 0 {
			return cleanText(node.Text())
		}
	}
	return ""
}

// selectContent returns the matched element's text (for the length check)
// alongside the element itself (for Markdown rendering), or ("", nil) if
// no selector matched.
func selectContent(doc *goquery.Document, selector string) (string, *goquery.Selection) {
	if selector == "" {
		return "", nil
	}
	for _, sel := range splitSelectors(selector) {
		node := doc.Find(sel).First()
		if node.Length() > 0 {
			return cleanText(node.Text()), node
		}
	}
	return "", nil
}

func splitSelectors(selector string) []string {
	parts := strings.Split(selector, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// renderMarkdown converts the selected content subtree to Markdown,
// resolving relative links/images against baseURL and dropping <img> tags
// whose src fails the image-URL heuristic before conversion.
func renderMarkdown(sel *goquery.Selection, baseURL string) string {
	resolveLinks(sel, baseURL)
	stripNonImageSrcs(sel)

	htmlStr, err := goquery.OuterHtml(sel)
	if err != nil || htmlStr == "" {
		return cleanText(sel.Text())
	}

	markdown, err := htmltomarkdown.ConvertString(htmlStr)
	if err != nil {
		return cleanText(sel.Text())
	}
	return strings.TrimSpace(markdown)
}

func resolveLinks(sel *goquery.Selection, baseURL string) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return
	}
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			a.SetAttr("href", resolveAbsolute(base, href))
		}
	})
	sel.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			img.SetAttr("src", resolveAbsolute(base, src))
		}
	})
}

func stripNonImageSrcs(sel *goquery.Selection) {
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || !looksLikeImageURL(src) {
			img.Remove()
		}
	})
}

func resolveAbsolute(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() {
		return ref
	}
	return base.ResolveReference(u).String()
}

var imageExtPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|bmp|svg|avif)(\?.*)?$`)
var nonImagePathPattern = regexp.MustCompile(`(?i)\.(html|htm|php|aspx|jsp)(\?.*)?$`)
var imagePathHintPattern = regexp.MustCompile(`(?i)(/image|/img|/photo|/upload|/media|/static)`)

// looksLikeImageURL applies the image-URL heuristic: a known image
// extension or a path hint like /image or /upload counts as an image,
// unless the path ends in a page-like extension such as .html or .php.
func looksLikeImageURL(src string) bool {
	if src == "" {
		return false
	}
	path := src
	if u, err := url.Parse(src); err == nil {
		path = u.Path
	}
	if nonImagePathPattern.MatchString(path) {
		return false
	}
	return imageExtPattern.MatchString(path) || imagePathHintPattern.MatchString(path)
}

// extractImages collects absolute image URLs from <img src> and
// <picture><source srcset>, capped at maxImages and de-duplicated.
func extractImages(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string

	add := func(raw string) {
		if len(out) >= maxImages || raw == "" {
			return
		}
		abs := resolveAbsolute(base, raw)
		if !looksLikeImageURL(abs) || seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		add(src)
	})
	doc.Find("picture source[srcset]").Each(func(_ int, s *goquery.Selection) {
		srcset, _ := s.Attr("srcset")
		add(firstSrcsetCandidate(srcset))
	})

	return out
}

func firstSrcsetCandidate(srcset string) string {
	parts := strings.Split(srcset, ",")
	if len(parts) == 0 {
		return ""
	}
	fields := strings.Fields(strings.TrimSpace(parts[0]))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// extractTags collects up to maxTags keywords from article:tag meta
// elements and a comma-separated meta[name=keywords].
func extractTags(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" || len(out) >= maxTags || seen[strings.ToLower(tag)] {
			return
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}

	doc.Find(`meta[property="article:tag"]`).Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			add(content)
		}
	})
	if keywords, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		for _, kw := range strings.Split(keywords, ",") {
			add(kw)
		}
	}

	return out
}

// fetchWithRetry implements the scrape fetch policy: up to maxAttempts
// attempts; 403 rotates the User-Agent and backs off 1s; 404 short-
// circuits with no further attempts; 5xx retries with linear backoff;
// network errors are retried the same as 5xx. The whole attempt loop runs
// through the shared circuit breaker so a persistently failing host trips
// it for subsequent scrapes.
func (s *Scraper) fetchWithRetry(ctx context.Context, pageURL string) (string, string, error) {
	type fetchResult struct {
		html     string
		finalURL string
	}

	raw, err := s.CircuitBreaker.Execute(func() (interface{}, error) {
		ua := randomUserAgent()
		var lastErr error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
			if err != nil {
				return nil, err
			}
			buildHeaders(req, ua)

			resp, doErr := s.HTTPClient.Do(req)
			if doErr != nil {
				lastErr = doErr
				if attempt < maxAttempts {
					sleep(ctx, time.Duration(attempt)*time.Second)
					continue
				}
				return nil, lastErr
			}

			switch {
			case resp.StatusCode == http.StatusNotFound:
				_ = resp.Body.Close()
				return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: "not found"}
			case resp.StatusCode == http.StatusForbidden:
				_ = resp.Body.Close()
				lastErr = &retry.HTTPError{StatusCode: resp.StatusCode, Message: "forbidden"}
				ua = randomUserAgent()
				if attempt < maxAttempts {
					sleep(ctx, 1*time.Second)
					continue
				}
				return nil, lastErr
			case resp.StatusCode >= 500:
				_ = resp.Body.Close()
				lastErr = &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
				if attempt < maxAttempts {
					sleep(ctx, time.Duration(attempt)*time.Second)
					continue
				}
				return nil, lastErr
			case resp.StatusCode >= 400:
				_ = resp.Body.Close()
				return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
			}

			body, readErr := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
			finalURL := pageURL
			if resp.Request != nil && resp.Request.URL != nil {
				finalURL = resp.Request.URL.String()
			}
			_ = resp.Body.Close()
			if readErr != nil {
				return nil, readErr
			}
			return fetchResult{html: string(body), finalURL: finalURL}, nil
		}
		return nil, fmt.Errorf("fetchWithRetry: exhausted attempts: %w", lastErr)
	})
	if err != nil {
		return "", "", err
	}
	fr := raw.(fetchResult)
	return fr.html, fr.finalURL, nil
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
