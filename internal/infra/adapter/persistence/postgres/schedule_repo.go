package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

type ScheduleRepo struct{ db *sql.DB }

func NewScheduleRepo(db *sql.DB) repository.ScheduleRepository {
	return &ScheduleRepo{db: db}
}

const scheduleColumns = `id, name, schedule_type, status, interval_minutes, max_executions, execution_count,
	config, last_run_at, next_run_at, last_status, last_error, created_at, updated_at`

func scanSchedule(scanner interface{ Scan(...any) error }) (*entity.Schedule, error) {
	var s entity.Schedule
	var cfgJSON []byte
	if err := scanner.Scan(
		&s.ID, &s.Name, &s.ScheduleType, &s.Status, &s.IntervalMinutes, &s.MaxExecutions, &s.ExecutionCount,
		&cfgJSON, &s.LastRunAt, &s.NextRunAt, &s.LastStatus, &s.LastError, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(cfgJSON) > 0 {
		if err := json.Unmarshal(cfgJSON, &s.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	return &s, nil
}

func (r *ScheduleRepo) Get(ctx context.Context, id int64) (*entity.Schedule, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	s, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return s, nil
}

func (r *ScheduleRepo) List(ctx context.Context) ([]*entity.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+scheduleColumns+` FROM schedules ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectSchedules(rows)
}

// ListDue returns active schedules due at now, ordered by next_run_at for
// serial dispatch.
func (r *ScheduleRepo) ListDue(ctx context.Context, now time.Time) ([]*entity.Schedule, error) {
	const query = `SELECT ` + scheduleColumns + ` FROM schedules
WHERE status = 'active' AND next_run_at <= $1
ORDER BY next_run_at ASC`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("ListDue: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectSchedules(rows)
}

func collectSchedules(rows *sql.Rows) ([]*entity.Schedule, error) {
	out := make([]*entity.Schedule, 0, 16)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ScheduleRepo) Create(ctx context.Context, s *entity.Schedule) error {
	cfgJSON, err := json.Marshal(s.Config)
	if err != nil {
		return fmt.Errorf("Create: marshal config: %w", err)
	}
	const query = `
INSERT INTO schedules (name, schedule_type, status, interval_minutes, max_executions, execution_count,
	config, last_run_at, next_run_at, last_status, last_error)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id, created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		s.Name, s.ScheduleType, s.Status, s.IntervalMinutes, s.MaxExecutions, s.ExecutionCount,
		cfgJSON, s.LastRunAt, s.NextRunAt, s.LastStatus, s.LastError,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ScheduleRepo) Update(ctx context.Context, s *entity.Schedule) error {
	cfgJSON, err := json.Marshal(s.Config)
	if err != nil {
		return fmt.Errorf("Update: marshal config: %w", err)
	}
	const query = `
UPDATE schedules SET
	name = $1, status = $2, interval_minutes = $3, max_executions = $4, execution_count = $5,
	config = $6, last_run_at = $7, next_run_at = $8, last_status = $9, last_error = $10, updated_at = now()
WHERE id = $11`
	res, err := r.db.ExecContext(ctx, query,
		s.Name, s.Status, s.IntervalMinutes, s.MaxExecutions, s.ExecutionCount,
		cfgJSON, s.LastRunAt, s.NextRunAt, s.LastStatus, s.LastError, s.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (r *ScheduleRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

type KeywordRepo struct{ db *sql.DB }

func NewKeywordRepo(db *sql.DB) repository.KeywordRepository {
	return &KeywordRepo{db: db}
}

const keywordColumns = `id, query, time_range, max_results, region, is_active, usage_count, last_used_at, created_at, updated_at`

func scanKeyword(scanner interface{ Scan(...any) error }) (*entity.SearchKeyword, error) {
	var k entity.SearchKeyword
	if err := scanner.Scan(&k.ID, &k.Query, &k.TimeRange, &k.MaxResults, &k.Region, &k.IsActive, &k.UsageCount, &k.LastUsedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *KeywordRepo) Get(ctx context.Context, id int64) (*entity.SearchKeyword, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+keywordColumns+` FROM search_keywords WHERE id = $1`, id)
	k, err := scanKeyword(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return k, nil
}

func (r *KeywordRepo) ListActive(ctx context.Context) ([]*entity.SearchKeyword, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+keywordColumns+` FROM search_keywords WHERE is_active = TRUE ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*entity.SearchKeyword, 0, 16)
	for rows.Next() {
		k, err := scanKeyword(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *KeywordRepo) Create(ctx context.Context, k *entity.SearchKeyword) error {
	const query = `
INSERT INTO search_keywords (query, time_range, max_results, region, is_active, usage_count, last_used_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, k.Query, k.TimeRange, k.MaxResults, k.Region, k.IsActive, k.UsageCount, k.LastUsedAt).
		Scan(&k.ID, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *KeywordRepo) Update(ctx context.Context, k *entity.SearchKeyword) error {
	const query = `
UPDATE search_keywords SET
	query = $1, time_range = $2, max_results = $3, region = $4, is_active = $5,
	usage_count = $6, last_used_at = $7, updated_at = now()
WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query, k.Query, k.TimeRange, k.MaxResults, k.Region, k.IsActive, k.UsageCount, k.LastUsedAt, k.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (r *KeywordRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM search_keywords WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
