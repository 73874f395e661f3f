package repository

import (
	"context"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
)

// TaskRepository is the Store's Task collection.
type TaskRepository interface {
	Get(ctx context.Context, id int64) (*entity.Task, error)
	ListByStatus(ctx context.Context, status entity.TaskStatus, limit int) ([]*entity.Task, error)
	ListRecent(ctx context.Context, taskType string, limit int) ([]*entity.Task, error)
	Create(ctx context.Context, task *entity.Task) error
	Update(ctx context.Context, task *entity.Task) error
}

// TaskEventRepository is the Store's append-only TaskEvent log. ListByTask
// returns events with ID > afterID, letting an SSE subscriber replay from
// where it left off before tailing new events.
type TaskEventRepository interface {
	Append(ctx context.Context, event *entity.TaskEvent) error
	ListByTask(ctx context.Context, taskID int64, afterID int64) ([]*entity.TaskEvent, error)
}
