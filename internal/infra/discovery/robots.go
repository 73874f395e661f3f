// Package discovery implements robots.txt checking and recursive sitemap
// parsing for the ingestion pipeline: it turns a CrawlSource's base URL
// into a stream of candidate article URLs.
package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// DefaultUserAgent identifies this crawler to robots.txt and HTTP servers
// when no rotation pool applies (robots.txt fetches don't rotate UA —
// politeness checks should be stable and attributable).
const DefaultUserAgent = "newssys-bot/1.0 (+https://github.com/myki-jim/newssys-sub000)"

// RobotsResult is the outcome of checking a source's robots.txt.
type RobotsResult struct {
	Allowed     bool
	CrawlDelay  time.Duration
	SitemapURLs []string
	Status      Status
}

// Status mirrors entity.RobotsStatus without importing the domain package,
// keeping discovery a leaf infrastructure component; callers translate.
type Status string

const (
	StatusCompliant  Status = "compliant"
	StatusRestricted Status = "restricted"
	StatusNotFound   Status = "not_found"
	StatusError      Status = "error"
)

// RobotsChecker fetches and evaluates a site's robots.txt.
type RobotsChecker struct {
	HTTPClient *http.Client
	UserAgent  string
}

// NewRobotsChecker returns a checker with a 15s-timeout client, the
// standard politeness budget for a robots.txt fetch.
func NewRobotsChecker() *RobotsChecker {
	return &RobotsChecker{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		UserAgent:  DefaultUserAgent,
	}
}

// CheckRobots fetches baseURL's /robots.txt and evaluates it for this
// crawler's user agent. A 404 is treated as fully allowed with no
// sitemaps and no delay; any other network failure returns Status=error
// with Allowed=false so the caller treats the source conservatively.
func (c *RobotsChecker) CheckRobots(ctx context.Context, baseURL string) (*RobotsResult, error) {
	robotsURL, err := url.JoinPath(baseURL, "/robots.txt")
	if err != nil {
		return nil, fmt.Errorf("CheckRobots: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("CheckRobots: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &RobotsResult{Allowed: false, Status: StatusError}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return &RobotsResult{Allowed: true, Status: StatusNotFound}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &RobotsResult{Allowed: false, Status: StatusError}, nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return &RobotsResult{Allowed: false, Status: StatusError}, nil
	}

	group := data.FindGroup(c.UserAgent)
	allowed := group.Test("/")
	status := StatusCompliant
	if !allowed {
		status = StatusRestricted
	}

	sitemaps := data.Sitemaps
	if len(sitemaps) == 0 {
		sitemaps = discoverConventionalSitemap(ctx, c, baseURL)
	}

	return &RobotsResult{
		Allowed:     allowed,
		CrawlDelay:  group.CrawlDelay,
		SitemapURLs: sitemaps,
		Status:      status,
	}, nil
}

// discoverConventionalSitemap falls back to the well-known /sitemap.xml
// path when robots.txt names none, per spec's discovery requirement.
func discoverConventionalSitemap(ctx context.Context, c *RobotsChecker, baseURL string) []string {
	candidate, err := url.JoinPath(baseURL, "/sitemap.xml")
	if err != nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, candidate, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.UserAgent)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return []string{candidate}
	}
	return nil
}

// ResolveSitemapURL joins a robots.txt "Sitemap:" directive against the
// source's base URL, since directives may be relative.
func ResolveSitemapURL(baseURL, sitemapURL string) string {
	u, err := url.Parse(sitemapURL)
	if err != nil || u.IsAbs() {
		return sitemapURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return sitemapURL
	}
	return base.ResolveReference(u).String()
}
