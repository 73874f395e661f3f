package entity

import (
	"crypto/md5" //nolint:gosec // url_hash is a dedup key, not a security primitive
	"encoding/hex"
	"time"
)

// PendingStatus tracks a PendingArticle through its one-way state machine
// toward a terminal state, with a single retry path back from failed.
type PendingStatus string

const (
	PendingStatusPending    PendingStatus = "pending"
	PendingStatusCrawling   PendingStatus = "crawling"
	PendingStatusCompleted  PendingStatus = "completed"
	PendingStatusFailed     PendingStatus = "failed"
	PendingStatusAbandoned  PendingStatus = "abandoned"
	PendingStatusLowQuality PendingStatus = "low_quality"
)

// IsValid reports whether s is a known pending status.
func (s PendingStatus) IsValid() bool {
	switch s {
	case PendingStatusPending, PendingStatusCrawling, PendingStatusCompleted,
		PendingStatusFailed, PendingStatusAbandoned, PendingStatusLowQuality:
		return true
	}
	return false
}

// IsTerminal reports whether s is one of the terminal states a PendingArticle
// cannot leave.
func (s PendingStatus) IsTerminal() bool {
	switch s {
	case PendingStatusCompleted, PendingStatusAbandoned, PendingStatusLowQuality:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next respects the
// one-way state machine, with the sole exception of failed -> crawling
// (retry).
func (s PendingStatus) CanTransitionTo(next PendingStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if s == next {
		return true
	}
	if s == PendingStatusFailed && next == PendingStatusCrawling {
		return true
	}
	switch s {
	case PendingStatusPending:
		return next == PendingStatusCrawling || next == PendingStatusAbandoned || next == PendingStatusLowQuality
	case PendingStatusCrawling:
		return next == PendingStatusCompleted || next == PendingStatusFailed || next == PendingStatusLowQuality
	}
	return false
}

// URLHash returns the MD5 hex digest used as the stable dedup key for a URL.
func URLHash(rawURL string) string {
	sum := md5.Sum([]byte(rawURL)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// PendingArticle is a URL discovered by sitemap or search discovery that has
// not yet had its content fetched.
type PendingArticle struct {
	ID          int64
	SourceID    int64
	SitemapID   *int64
	URL         string
	URLHash     string
	Title       *string
	PublishTime *time.Time
	Status      PendingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPendingArticle builds a PendingArticle, deriving URLHash from URL.
func NewPendingArticle(sourceID int64, sitemapID *int64, rawURL string) *PendingArticle {
	return &PendingArticle{
		SourceID:  sourceID,
		SitemapID: sitemapID,
		URL:       rawURL,
		URLHash:   URLHash(rawURL),
		Status:    PendingStatusPending,
	}
}

// Validate checks the PendingArticle's invariants.
func (p *PendingArticle) Validate() error {
	if p.SourceID <= 0 {
		return &ValidationError{Field: "SourceID", Message: "must be positive"}
	}
	if err := ValidateURL(p.URL); err != nil {
		return err
	}
	if p.URLHash != URLHash(p.URL) {
		return &ValidationError{Field: "URLHash", Message: "does not match MD5(URL)"}
	}
	if p.Status == "" {
		p.Status = PendingStatusPending
	}
	if !p.Status.IsValid() {
		return &ValidationError{Field: "Status", Message: "invalid value"}
	}
	return nil
}
