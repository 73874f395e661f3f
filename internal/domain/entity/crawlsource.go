// Package entity defines the core domain entities and validation logic for the application.
package entity

import (
	"fmt"
	"time"
)

// RobotsStatus describes the outcome of the last robots.txt check for a CrawlSource.
type RobotsStatus string

const (
	RobotsStatusPending    RobotsStatus = "pending"
	RobotsStatusCompliant  RobotsStatus = "compliant"
	RobotsStatusRestricted RobotsStatus = "restricted"
	RobotsStatusNotFound   RobotsStatus = "not_found"
	RobotsStatusError      RobotsStatus = "error"
)

// IsValid reports whether s is one of the known robots statuses.
func (s RobotsStatus) IsValid() bool {
	switch s {
	case RobotsStatusPending, RobotsStatusCompliant, RobotsStatusRestricted, RobotsStatusNotFound, RobotsStatusError:
		return true
	}
	return false
}

// DiscoveryMethod describes how a CrawlSource finds new articles.
type DiscoveryMethod string

const (
	DiscoveryMethodSitemap DiscoveryMethod = "sitemap"
	DiscoveryMethodList    DiscoveryMethod = "list"
	DiscoveryMethodHybrid  DiscoveryMethod = "hybrid"
)

// IsValid reports whether m is one of the known discovery methods.
func (m DiscoveryMethod) IsValid() bool {
	switch m {
	case DiscoveryMethodSitemap, DiscoveryMethodList, DiscoveryMethodHybrid:
		return true
	}
	return false
}

// ParserConfig holds the selector configuration used by the universal scraper
// to extract title, content, author, and publish time from a source's pages.
type ParserConfig struct {
	TitleSelector        string `json:"title_selector"`
	ContentSelector      string `json:"content_selector"`
	PublishTimeSelector  string `json:"publish_time_selector,omitempty"`
	AuthorSelector       string `json:"author_selector,omitempty"`
	ListSelector         string `json:"list_selector,omitempty"`
	URLSelector          string `json:"url_selector,omitempty"`
	Encoding             string `json:"encoding,omitempty"`
}

// CrawlSource represents a configured website the ingestion pipeline discovers,
// fetches, and normalizes articles from.
type CrawlSource struct {
	ID                   int64
	SiteName             string
	BaseURL              string
	ParserConfig         ParserConfig
	Enabled              bool
	CrawlIntervalSeconds int
	RobotsStatus         RobotsStatus
	CrawlDelaySeconds    *int
	SitemapURL           *string
	DiscoveryMethod      DiscoveryMethod
	SitemapCount         int
	ArticleCount         int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate checks the CrawlSource's invariants, including the rule that a
// source may only be enabled after robots.txt has been checked and either a
// sitemap has been attached or discovery does not rely on sitemaps.
func (s *CrawlSource) Validate() error {
	if s.SiteName == "" {
		return &ValidationError{Field: "SiteName", Message: "is required"}
	}
	if err := ValidateURL(s.BaseURL); err != nil {
		return fmt.Errorf("BaseURL: %w", err)
	}
	if s.DiscoveryMethod == "" {
		s.DiscoveryMethod = DiscoveryMethodSitemap
	}
	if !s.DiscoveryMethod.IsValid() {
		return &ValidationError{Field: "DiscoveryMethod", Message: fmt.Sprintf("invalid value %q", s.DiscoveryMethod)}
	}
	if s.CrawlIntervalSeconds < 60 {
		return &ValidationError{Field: "CrawlIntervalSeconds", Message: "must be >= 60"}
	}
	if s.RobotsStatus == "" {
		s.RobotsStatus = RobotsStatusPending
	}
	if !s.RobotsStatus.IsValid() {
		return &ValidationError{Field: "RobotsStatus", Message: fmt.Sprintf("invalid value %q", s.RobotsStatus)}
	}
	if s.Enabled {
		if s.RobotsStatus == RobotsStatusPending {
			return &ValidationError{Field: "Enabled", Message: "cannot enable a source before robots.txt has been checked"}
		}
		if s.DiscoveryMethod == DiscoveryMethodSitemap && s.SitemapURL == nil && s.SitemapCount == 0 {
			return &ValidationError{Field: "Enabled", Message: "sitemap discovery requires at least one attached sitemap"}
		}
	}
	return nil
}
