// Package executor implements the Task Manager's catalogue of executors:
// sitemap_sync, crawl_pending, retry_failed, cleanup_low_quality, and
// schedule_keyword_search. Each adapts repository.TaskRepository-shaped
// collaborators into the task.Executor contract.
package executor

import (
	"fmt"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// politenessDelay is the default pause between article fetches in a batch
// flow when a source has no crawl_delay of its own, per the sitemap sync
// and crawl_pending politeness requirement.
const politenessDelay = 1 * time.Second

func paramInt64(params map[string]any, key string) (int64, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func paramIntDefault(params map[string]any, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

func crawlDelayFor(source *entity.CrawlSource) time.Duration {
	if source.CrawlDelaySeconds != nil && *source.CrawlDelaySeconds > 0 {
		return time.Duration(*source.CrawlDelaySeconds) * time.Second
	}
	return politenessDelay
}

func requireSourceID(params map[string]any) (int64, error) {
	id, ok := paramInt64(params, "source_id")
	if !ok || id <= 0 {
		return 0, fmt.Errorf("executor: params.source_id is required")
	}
	return id, nil
}
