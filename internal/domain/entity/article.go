package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// ArticleStatus is the lifecycle stage of a fetched Article within the
// downstream processing pipeline (scoring, clustering, report synchronization).
type ArticleStatus string

const (
	ArticleStatusRaw        ArticleStatus = "raw"
	ArticleStatusProcessed  ArticleStatus = "processed"
	ArticleStatusSynced     ArticleStatus = "synced"
	ArticleStatusFailed     ArticleStatus = "failed"
	ArticleStatusLowQuality ArticleStatus = "low_quality"
)

// IsValid reports whether s is a known article status.
func (s ArticleStatus) IsValid() bool {
	switch s {
	case ArticleStatusRaw, ArticleStatusProcessed, ArticleStatusSynced, ArticleStatusFailed, ArticleStatusLowQuality:
		return true
	}
	return false
}

// FetchStatus is the outcome of the most recent scrape attempt for an Article.
type FetchStatus string

const (
	FetchStatusPending FetchStatus = "pending"
	FetchStatusSuccess FetchStatus = "success"
	FetchStatusRetry   FetchStatus = "retry"
	FetchStatusFailed  FetchStatus = "failed"
)

// IsValid reports whether s is a known fetch status.
func (s FetchStatus) IsValid() bool {
	switch s {
	case FetchStatusPending, FetchStatusSuccess, FetchStatusRetry, FetchStatusFailed:
		return true
	}
	return false
}

// ExtraData is the semi-structured payload attached to an Article (images,
// tags) that does not warrant its own relational columns.
type ExtraData struct {
	Images []string `json:"images,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// Article is a fetched article normalized from a scraped web page.
type Article struct {
	ID          int64
	URLHash     string
	URL         string
	Title       string
	Content     string
	ContentHash *string
	PublishTime *time.Time
	Author      string
	SourceID    int64
	Status      ArticleStatus
	FetchStatus FetchStatus
	RetryCount  int
	Error       string
	Extra       ExtraData
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses runs of whitespace to a single space and
// trims the result, as required before content hashing.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ContentHash computes the SHA-256 hex digest of the whitespace-normalized
// content. A nil/empty content yields a nil hash, per the Store invariant
// that content_hash changes iff content changed.
func ContentHash(content string) *string {
	if content == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(NormalizeWhitespace(content)))
	h := hex.EncodeToString(sum[:])
	return &h
}

// RecomputeContentHash updates a.ContentHash from a.Content.
func (a *Article) RecomputeContentHash() {
	a.ContentHash = ContentHash(a.Content)
}

// Validate checks the Article's invariants.
func (a *Article) Validate() error {
	if err := ValidateURL(a.URL); err != nil {
		return err
	}
	if a.URLHash != URLHash(a.URL) {
		return &ValidationError{Field: "URLHash", Message: "does not match MD5(URL)"}
	}
	if a.SourceID <= 0 {
		return &ValidationError{Field: "SourceID", Message: "must be positive"}
	}
	if a.Status == "" {
		a.Status = ArticleStatusRaw
	}
	if !a.Status.IsValid() {
		return &ValidationError{Field: "Status", Message: "invalid value"}
	}
	if a.FetchStatus == "" {
		a.FetchStatus = FetchStatusPending
	}
	if !a.FetchStatus.IsValid() {
		return &ValidationError{Field: "FetchStatus", Message: "invalid value"}
	}
	if a.PublishTime != nil && a.PublishTime.Location() != time.UTC {
		utc := a.PublishTime.UTC()
		a.PublishTime = &utc
	}
	return nil
}
