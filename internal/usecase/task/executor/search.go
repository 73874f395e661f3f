package executor

import (
	"context"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// SearchResult is one hit from an external search backend.
type SearchResult struct {
	Title         string
	URL           string
	Snippet       string
	PublishedDate *time.Time
	Source        string
}

// SearchBackend is the pluggable external search collaborator behind
// schedule_keyword_search. Implementations are responsible for unwrapping
// any redirect URLs (e.g. DuckDuckGo's uddg parameter) before returning.
type SearchBackend interface {
	Search(ctx context.Context, query string, timeRange entity.TimeRange, region string, maxResults int) ([]SearchResult, error)
}
