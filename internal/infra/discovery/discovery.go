package discovery

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Service composes robots.txt compliance checking with sitemap discovery
// into the single operation the ingestion pipeline needs: given a source's
// base URL, return the set of candidate article URLs it's allowed to crawl.
type Service struct {
	Robots   *RobotsChecker
	Sitemaps *SitemapParser
}

// NewService wires default-configured robots and sitemap collaborators.
func NewService() *Service {
	return &Service{Robots: NewRobotsChecker(), Sitemaps: NewSitemapParser()}
}

// DiscoverOptions narrows a Discover call to a crawl-delta window and a
// URL allow/deny pattern set.
type DiscoverOptions struct {
	Since          *time.Time
	IncludePattern []string
	ExcludePattern []string
}

// DiscoverResult reports what was found alongside the robots.txt verdict
// that gated (or didn't gate) the crawl.
type DiscoverResult struct {
	Robots  *RobotsResult
	Entries []Entry
}

// Discover checks robots.txt for baseURL, and if crawling is allowed,
// fetches and recursively parses every sitemap robots.txt names (or the
// conventional /sitemap.xml fallback), applying incremental since
// filtering and include/exclude pattern filtering.
func (s *Service) Discover(ctx context.Context, baseURL string, opts DiscoverOptions) (*DiscoverResult, error) {
	robotsResult, err := s.Robots.CheckRobots(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("Discover: %w", err)
	}
	if !robotsResult.Allowed {
		return &DiscoverResult{Robots: robotsResult}, nil
	}

	includes, err := compilePatterns(opts.IncludePattern)
	if err != nil {
		return nil, fmt.Errorf("Discover: %w", err)
	}
	excludes, err := compilePatterns(opts.ExcludePattern)
	if err != nil {
		return nil, fmt.Errorf("Discover: %w", err)
	}

	var all []Entry
	seen := make(map[string]bool)
	for _, sitemapURL := range robotsResult.SitemapURLs {
		resolved := ResolveSitemapURL(baseURL, sitemapURL)
		entries, err := s.Sitemaps.Parse(ctx, baseURL, resolved, opts.Since)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if seen[e.Loc] {
				continue
			}
			seen[e.Loc] = true
			all = append(all, e)
		}
		if len(all) >= MaxSitemapURLs {
			break
		}
	}

	all = FilterByPattern(all, includes, excludes)
	return &DiscoverResult{Robots: robotsResult, Entries: all}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
