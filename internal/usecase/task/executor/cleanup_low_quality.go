package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

const (
	lowQualityMinContentLen = 50
	lowQualityBatchLimit    = 500
)

// CleanupLowQuality marks Articles and PendingArticles that fall outside
// the content-length and publish-time quality bar as low_quality. It never
// deletes a row; low_quality is a terminal status, not a removal.
type CleanupLowQuality struct {
	Articles repository.ArticleRepository
	Pending  repository.PendingArticleRepository
}

var _ task.Executor = (*CleanupLowQuality)(nil)

// Execute implements task.Executor. No required params.
func (e *CleanupLowQuality) Execute(ctx context.Context, params map[string]any, onProgress task.ProgressFunc, onEvent task.EventFunc, checkCancelled task.CheckCancelledFunc) (map[string]any, error) {
	now := time.Now().UTC()
	oneYearAgo := now.AddDate(-1, 0, 0)
	oneYearAhead := now.AddDate(1, 0, 0)

	candidates, err := e.Articles.ListLowQuality(ctx, lowQualityMinContentLen, oneYearAgo, lowQualityBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("CleanupLowQuality: %w", err)
	}

	articlesMarked := 0
	for i, a := range candidates {
		if checkCancelled() {
			break
		}
		onProgress(i+1, len(candidates), a.URL, nil)
		if !isLowQualityArticle(a, oneYearAgo, oneYearAhead) {
			continue
		}
		a.Status = entity.ArticleStatusLowQuality
		if err := e.Articles.Update(ctx, a); err == nil {
			articlesMarked++
		}
	}

	pendingMarked := 0
	pending, err := e.Pending.ListByStatus(ctx, entity.PendingStatusPending, lowQualityBatchLimit)
	if err == nil {
		for _, p := range pending {
			if checkCancelled() {
				break
			}
			if p.PublishTime == nil || p.PublishTime.Before(oneYearAgo) || p.PublishTime.After(oneYearAhead) {
				p.Status = entity.PendingStatusLowQuality
				if err := e.Pending.Update(ctx, p); err == nil {
					pendingMarked++
				}
			}
		}
	}

	onEvent(entity.TaskEventInfo, map[string]any{"articles_marked": articlesMarked, "pending_marked": pendingMarked})
	return map[string]any{
		"articles_marked": articlesMarked,
		"pending_marked":  pendingMarked,
	}, nil
}

func isLowQualityArticle(a *entity.Article, from, to time.Time) bool {
	if len([]rune(a.Content)) < lowQualityMinContentLen {
		return true
	}
	if a.PublishTime == nil {
		return true
	}
	return a.PublishTime.Before(from) || a.PublishTime.After(to)
}
