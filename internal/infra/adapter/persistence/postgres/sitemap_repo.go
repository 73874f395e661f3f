package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

type SitemapRepo struct{ db *sql.DB }

func NewSitemapRepo(db *sql.DB) repository.SitemapRepository {
	return &SitemapRepo{db: db}
}

const sitemapColumns = `id, source_id, url, last_fetched, fetch_status, article_count, created_at`

func scanSitemap(scanner interface{ Scan(...any) error }) (*entity.Sitemap, error) {
	var s entity.Sitemap
	if err := scanner.Scan(&s.ID, &s.SourceID, &s.URL, &s.LastFetched, &s.FetchStatus, &s.ArticleCount, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SitemapRepo) Get(ctx context.Context, id int64) (*entity.Sitemap, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sitemapColumns+` FROM sitemaps WHERE id = $1`, id)
	s, err := scanSitemap(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return s, nil
}

func (r *SitemapRepo) GetByURL(ctx context.Context, url string) (*entity.Sitemap, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sitemapColumns+` FROM sitemaps WHERE url = $1`, url)
	s, err := scanSitemap(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByURL: %w", err)
	}
	return s, nil
}

func (r *SitemapRepo) ListBySource(ctx context.Context, sourceID int64) ([]*entity.Sitemap, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sitemapColumns+` FROM sitemaps WHERE source_id = $1 ORDER BY id ASC`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("ListBySource: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*entity.Sitemap, 0, 8)
	for rows.Next() {
		s, err := scanSitemap(rows)
		if err != nil {
			return nil, fmt.Errorf("ListBySource: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SitemapRepo) Create(ctx context.Context, s *entity.Sitemap) error {
	const query = `
INSERT INTO sitemaps (source_id, url, last_fetched, fetch_status, article_count)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, s.SourceID, s.URL, s.LastFetched, s.FetchStatus, s.ArticleCount).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *SitemapRepo) Update(ctx context.Context, s *entity.Sitemap) error {
	const query = `
UPDATE sitemaps SET last_fetched = $1, fetch_status = $2, article_count = $3
WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, s.LastFetched, s.FetchStatus, s.ArticleCount, s.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (r *SitemapRepo) Delete(ctx context.Context, id int64) error {
	// ON DELETE SET NULL on pending_articles.sitemap_id keeps the queue rows;
	// the caller is responsible for deciding whether to abandon them.
	res, err := r.db.ExecContext(ctx, `DELETE FROM sitemaps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
