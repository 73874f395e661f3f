// Package source provides HTTP handlers for CrawlSource CRUD,
// enable/disable, sitemap refresh, and parser-selector debugging (spec §6
// sources endpoints; components B and C).
package source

import (
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// DTO is the JSON representation of a CrawlSource.
type DTO struct {
	ID                   int64               `json:"id"`
	SiteName             string              `json:"site_name"`
	BaseURL              string              `json:"base_url"`
	ParserConfig         entity.ParserConfig `json:"parser_config"`
	Enabled              bool                `json:"enabled"`
	CrawlIntervalSeconds int                 `json:"crawl_interval_seconds"`
	RobotsStatus         string              `json:"robots_status"`
	CrawlDelaySeconds    *int                `json:"crawl_delay_seconds,omitempty"`
	SitemapURL           *string             `json:"sitemap_url,omitempty"`
	DiscoveryMethod      string              `json:"discovery_method"`
	SitemapCount         int                 `json:"sitemap_count"`
	ArticleCount         int                 `json:"article_count"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

func toDTO(s *entity.CrawlSource) DTO {
	return DTO{
		ID:                   s.ID,
		SiteName:             s.SiteName,
		BaseURL:              s.BaseURL,
		ParserConfig:         s.ParserConfig,
		Enabled:              s.Enabled,
		CrawlIntervalSeconds: s.CrawlIntervalSeconds,
		RobotsStatus:         string(s.RobotsStatus),
		CrawlDelaySeconds:    s.CrawlDelaySeconds,
		SitemapURL:           s.SitemapURL,
		DiscoveryMethod:      string(s.DiscoveryMethod),
		SitemapCount:         s.SitemapCount,
		ArticleCount:         s.ArticleCount,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

// CreateRequest is the POST /sources request body. A newly created source
// is always disabled: CrawlSource.Validate rejects Enabled=true before
// robots.txt has been checked, which happens via POST /sources/{id}/refresh.
type CreateRequest struct {
	SiteName             string              `json:"site_name"`
	BaseURL              string              `json:"base_url"`
	ParserConfig         entity.ParserConfig `json:"parser_config"`
	CrawlIntervalSeconds int                 `json:"crawl_interval_seconds,omitempty"`
	DiscoveryMethod      string              `json:"discovery_method,omitempty"`
}

// UpdateRequest is the PUT /sources/{id} request body.
type UpdateRequest struct {
	SiteName             string              `json:"site_name"`
	BaseURL              string              `json:"base_url"`
	ParserConfig         entity.ParserConfig `json:"parser_config"`
	CrawlIntervalSeconds int                 `json:"crawl_interval_seconds"`
	DiscoveryMethod      string              `json:"discovery_method"`
}

// ParserDebugRequest is the POST /sources/{id}/debug-parser request body:
// run the universal scraper against a single URL with either the source's
// saved ParserConfig or an override, without persisting anything.
type ParserDebugRequest struct {
	URL          string               `json:"url"`
	ParserConfig *entity.ParserConfig `json:"parser_config,omitempty"`
}
