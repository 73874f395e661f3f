package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

type ReportRepo struct{ db *sql.DB }

func NewReportRepo(db *sql.DB) repository.ReportRepository {
	return &ReportRepo{db: db}
}

const reportColumns = `id, title, time_range_start, time_range_end, template_id, language, status,
	agent_stage, progress_pct, sections, created_at, updated_at`

func scanReport(scanner interface{ Scan(...any) error }) (*entity.Report, error) {
	var r entity.Report
	var sectionsJSON []byte
	if err := scanner.Scan(
		&r.ID, &r.Title, &r.TimeRangeStart, &r.TimeRangeEnd, &r.TemplateID, &r.Language, &r.Status,
		&r.AgentStage, &r.ProgressPct, &sectionsJSON, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(sectionsJSON) > 0 {
		if err := json.Unmarshal(sectionsJSON, &r.Sections); err != nil {
			return nil, fmt.Errorf("unmarshal sections: %w", err)
		}
	}
	return &r, nil
}

func (r *ReportRepo) Get(ctx context.Context, id int64) (*entity.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	rep, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return rep, nil
}

func (r *ReportRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Report, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*entity.Report, 0, limit)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRecent: %w", err)
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *ReportRepo) Create(ctx context.Context, rep *entity.Report) error {
	sectionsJSON, err := json.Marshal(rep.Sections)
	if err != nil {
		return fmt.Errorf("Create: marshal sections: %w", err)
	}
	const query = `
INSERT INTO reports (title, time_range_start, time_range_end, template_id, language, status,
	agent_stage, progress_pct, sections)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id, created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		rep.Title, rep.TimeRangeStart, rep.TimeRangeEnd, rep.TemplateID, rep.Language, rep.Status,
		rep.AgentStage, rep.ProgressPct, sectionsJSON,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ReportRepo) Update(ctx context.Context, rep *entity.Report) error {
	sectionsJSON, err := json.Marshal(rep.Sections)
	if err != nil {
		return fmt.Errorf("Update: marshal sections: %w", err)
	}
	const query = `
UPDATE reports SET
	status = $1, agent_stage = $2, progress_pct = $3, sections = $4, updated_at = now()
WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, rep.Status, rep.AgentStage, rep.ProgressPct, sectionsJSON, rep.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (r *ReportRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

type ReferenceRepo struct{ db *sql.DB }

func NewReferenceRepo(db *sql.DB) repository.ReferenceRepository {
	return &ReferenceRepo{db: db}
}

func (r *ReferenceRepo) ListByReport(ctx context.Context, reportID int64) ([]*entity.Reference, error) {
	const query = `SELECT id, article_id, report_id, citation_index, snippet, created_at FROM "references"
WHERE report_id = $1
ORDER BY citation_index ASC`
	rows, err := r.db.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("ListByReport: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*entity.Reference, 0, 16)
	for rows.Next() {
		var ref entity.Reference
		if err := rows.Scan(&ref.ID, &ref.ArticleID, &ref.ReportID, &ref.CitationIndex, &ref.Snippet, &ref.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByReport: %w", err)
		}
		out = append(out, &ref)
	}
	return out, rows.Err()
}

func (r *ReferenceRepo) CreateBatch(ctx context.Context, refs []*entity.Reference) error {
	if len(refs) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO "references" (article_id, report_id, citation_index, snippet) VALUES `)
	args := make([]any, 0, len(refs)*4)
	for i, ref := range refs {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i * 4
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4)
		args = append(args, ref.ArticleID, ref.ReportID, ref.CitationIndex, ref.Snippet)
	}
	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("CreateBatch: %w", err)
	}
	return nil
}

func (r *ReferenceRepo) DeleteByReport(ctx context.Context, reportID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM "references" WHERE report_id = $1`, reportID); err != nil {
		return fmt.Errorf("DeleteByReport: %w", err)
	}
	return nil
}
