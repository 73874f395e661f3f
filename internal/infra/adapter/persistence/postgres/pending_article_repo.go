package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

type PendingArticleRepo struct{ db *sql.DB }

func NewPendingArticleRepo(db *sql.DB) repository.PendingArticleRepository {
	return &PendingArticleRepo{db: db}
}

const pendingArticleColumns = `id, source_id, sitemap_id, url, url_hash, title, publish_time, status, created_at, updated_at`

func scanPendingArticle(scanner interface{ Scan(...any) error }) (*entity.PendingArticle, error) {
	var p entity.PendingArticle
	if err := scanner.Scan(&p.ID, &p.SourceID, &p.SitemapID, &p.URL, &p.URLHash, &p.Title, &p.PublishTime, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PendingArticleRepo) Get(ctx context.Context, id int64) (*entity.PendingArticle, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pendingArticleColumns+` FROM pending_articles WHERE id = $1`, id)
	p, err := scanPendingArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return p, nil
}

func (r *PendingArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM pending_articles WHERE url_hash = $1)`, entity.URLHash(url)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return exists, nil
}

func (r *PendingArticleRepo) ListForCrawl(ctx context.Context, sourceID int64, status entity.PendingStatus, limit int) ([]*entity.PendingArticle, error) {
	const query = `SELECT ` + pendingArticleColumns + ` FROM pending_articles
WHERE source_id = $1 AND status = $2
ORDER BY publish_time DESC NULLS LAST, created_at DESC
LIMIT $3`
	return r.queryList(ctx, query, sourceID, status, limit)
}

func (r *PendingArticleRepo) ListByStatus(ctx context.Context, status entity.PendingStatus, limit int) ([]*entity.PendingArticle, error) {
	const query = `SELECT ` + pendingArticleColumns + ` FROM pending_articles
WHERE status = $1
ORDER BY created_at ASC
LIMIT $2`
	return r.queryList(ctx, query, status, limit)
}

func (r *PendingArticleRepo) queryList(ctx context.Context, query string, args ...any) ([]*entity.PendingArticle, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]*entity.PendingArticle, 0, 64)
	for rows.Next() {
		p, err := scanPendingArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PendingArticleRepo) CountBySource(ctx context.Context, sourceID int64) (map[entity.PendingStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM pending_articles WHERE source_id = $1 GROUP BY status`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("CountBySource: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[entity.PendingStatus]int)
	for rows.Next() {
		var status entity.PendingStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("CountBySource: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *PendingArticleRepo) Create(ctx context.Context, p *entity.PendingArticle) error {
	const query = `
INSERT INTO pending_articles (source_id, sitemap_id, url, url_hash, title, publish_time, status)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.SourceID, p.SitemapID, p.URL, p.URLHash, p.Title, p.PublishTime, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// CreateBatch inserts ps in one statement, skipping rows whose url_hash
// already exists. Returns the count actually inserted.
func (r *PendingArticleRepo) CreateBatch(ctx context.Context, ps []*entity.PendingArticle) (int, error) {
	if len(ps) == 0 {
		return 0, nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO pending_articles (source_id, sitemap_id, url, url_hash, title, publish_time, status) VALUES `)
	args := make([]any, 0, len(ps)*7)
	for i, p := range ps {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i * 7
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, p.SourceID, p.SitemapID, p.URL, p.URLHash, p.Title, p.PublishTime, p.Status)
	}
	sb.WriteString(` ON CONFLICT (url_hash) DO NOTHING`)

	res, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("CreateBatch: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *PendingArticleRepo) UpdateStatus(ctx context.Context, id int64, status entity.PendingStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE pending_articles SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateStatus: %w", entity.ErrNotFound)
	}
	return nil
}

func (r *PendingArticleRepo) Update(ctx context.Context, p *entity.PendingArticle) error {
	const query = `
UPDATE pending_articles SET title = $1, publish_time = $2, status = $3, updated_at = now()
WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, p.Title, p.PublishTime, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}
