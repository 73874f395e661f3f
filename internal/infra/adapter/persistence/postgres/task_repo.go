package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

type TaskRepo struct{ db *sql.DB }

func NewTaskRepo(db *sql.DB) repository.TaskRepository {
	return &TaskRepo{db: db}
}

const taskColumns = `id, task_type, status, title, params, result, progress_current, progress_total,
	error_message, started_at, completed_at, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*entity.Task, error) {
	var t entity.Task
	var paramsJSON, resultJSON []byte
	if err := scanner.Scan(
		&t.ID, &t.TaskType, &t.Status, &t.Title, &paramsJSON, &resultJSON, &t.ProgressCurrent, &t.ProgressTotal,
		&t.ErrorMessage, &t.StartedAt, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &t.Params); err != nil {
			return nil, fmt.Errorf("unmarshal params: %w", err)
		}
	}
	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &t.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return &t, nil
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (*entity.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return t, nil
}

func (r *TaskRepo) ListByStatus(ctx context.Context, status entity.TaskStatus, limit int) ([]*entity.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE status = $1 ORDER BY created_at ASC LIMIT $2`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("ListByStatus: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectTasks(rows)
}

func (r *TaskRepo) ListRecent(ctx context.Context, taskType string, limit int) ([]*entity.Task, error) {
	var rows *sql.Rows
	var err error
	if taskType == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE task_type = $1 ORDER BY created_at DESC LIMIT $2`, taskType, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]*entity.Task, error) {
	out := make([]*entity.Task, 0, 32)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	paramsJSON, err := json.Marshal(t.Params)
	if err != nil {
		return fmt.Errorf("Create: marshal params: %w", err)
	}
	var resultJSON []byte
	if t.Result != nil {
		resultJSON, err = json.Marshal(t.Result)
		if err != nil {
			return fmt.Errorf("Create: marshal result: %w", err)
		}
	}
	const query = `
INSERT INTO tasks (task_type, status, title, params, result, progress_current, progress_total,
	error_message, started_at, completed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id, created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		t.TaskType, t.Status, t.Title, paramsJSON, resultJSON, t.ProgressCurrent, t.ProgressTotal,
		t.ErrorMessage, t.StartedAt, t.CompletedAt,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TaskRepo) Update(ctx context.Context, t *entity.Task) error {
	var resultJSON []byte
	var err error
	if t.Result != nil {
		resultJSON, err = json.Marshal(t.Result)
		if err != nil {
			return fmt.Errorf("Update: marshal result: %w", err)
		}
	}
	const query = `
UPDATE tasks SET
	status = $1, title = $2, result = $3, progress_current = $4, progress_total = $5,
	error_message = $6, started_at = $7, completed_at = $8, updated_at = now()
WHERE id = $9`
	res, err := r.db.ExecContext(ctx, query,
		t.Status, t.Title, resultJSON, t.ProgressCurrent, t.ProgressTotal,
		t.ErrorMessage, t.StartedAt, t.CompletedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

type TaskEventRepo struct{ db *sql.DB }

func NewTaskEventRepo(db *sql.DB) repository.TaskEventRepository {
	return &TaskEventRepo{db: db}
}

func (r *TaskEventRepo) Append(ctx context.Context, e *entity.TaskEvent) error {
	payloadJSON, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("Append: marshal payload: %w", err)
	}
	const query = `
INSERT INTO task_events (task_id, event_type, payload)
VALUES ($1,$2,$3)
RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query, e.TaskID, e.EventType, payloadJSON).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

func (r *TaskEventRepo) ListByTask(ctx context.Context, taskID int64, afterID int64) ([]*entity.TaskEvent, error) {
	const query = `SELECT id, task_id, event_type, payload, created_at FROM task_events
WHERE task_id = $1 AND id > $2
ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, taskID, afterID)
	if err != nil {
		return nil, fmt.Errorf("ListByTask: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*entity.TaskEvent, 0, 16)
	for rows.Next() {
		var e entity.TaskEvent
		var payloadJSON []byte
		if err := rows.Scan(&e.ID, &e.TaskID, &e.EventType, &payloadJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByTask: %w", err)
		}
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
				return nil, fmt.Errorf("ListByTask: unmarshal payload: %w", err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
