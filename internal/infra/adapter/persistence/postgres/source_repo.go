// Package postgres provides PostgreSQL implementations of the repository
// interfaces, built on database/sql with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

type SourceRepo struct{ db *sql.DB }

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

const sourceColumns = `id, site_name, base_url, parser_config, enabled, crawl_interval_seconds,
	robots_status, crawl_delay_seconds, sitemap_url, discovery_method, sitemap_count,
	article_count, created_at, updated_at`

func scanSource(scanner interface{ Scan(...any) error }) (*entity.CrawlSource, error) {
	var s entity.CrawlSource
	var cfgJSON []byte
	if err := scanner.Scan(
		&s.ID, &s.SiteName, &s.BaseURL, &cfgJSON, &s.Enabled, &s.CrawlIntervalSeconds,
		&s.RobotsStatus, &s.CrawlDelaySeconds, &s.SitemapURL, &s.DiscoveryMethod, &s.SitemapCount,
		&s.ArticleCount, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(cfgJSON) > 0 {
		if err := json.Unmarshal(cfgJSON, &s.ParserConfig); err != nil {
			return nil, fmt.Errorf("unmarshal parser_config: %w", err)
		}
	}
	return &s, nil
}

func (r *SourceRepo) Get(ctx context.Context, id int64) (*entity.CrawlSource, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM crawl_sources WHERE id = $1`, id)
	s, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return s, nil
}

func (r *SourceRepo) GetByBaseURL(ctx context.Context, baseURL string) (*entity.CrawlSource, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM crawl_sources WHERE base_url = $1`, baseURL)
	s, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByBaseURL: %w", err)
	}
	return s, nil
}

func (r *SourceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.CrawlSource, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*entity.CrawlSource, 0, 32)
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *SourceRepo) List(ctx context.Context) ([]*entity.CrawlSource, error) {
	sources, err := r.list(ctx, `SELECT `+sourceColumns+` FROM crawl_sources ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return sources, nil
}

func (r *SourceRepo) ListEnabled(ctx context.Context) ([]*entity.CrawlSource, error) {
	sources, err := r.list(ctx, `SELECT `+sourceColumns+` FROM crawl_sources WHERE enabled = TRUE ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("ListEnabled: %w", err)
	}
	return sources, nil
}

func (r *SourceRepo) Create(ctx context.Context, s *entity.CrawlSource) error {
	cfgJSON, err := json.Marshal(s.ParserConfig)
	if err != nil {
		return fmt.Errorf("Create: marshal parser_config: %w", err)
	}
	const query = `
INSERT INTO crawl_sources (site_name, base_url, parser_config, enabled, crawl_interval_seconds,
	robots_status, crawl_delay_seconds, sitemap_url, discovery_method, sitemap_count, article_count)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id, created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		s.SiteName, s.BaseURL, cfgJSON, s.Enabled, s.CrawlIntervalSeconds,
		s.RobotsStatus, s.CrawlDelaySeconds, s.SitemapURL, s.DiscoveryMethod, s.SitemapCount, s.ArticleCount,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *SourceRepo) Update(ctx context.Context, s *entity.CrawlSource) error {
	cfgJSON, err := json.Marshal(s.ParserConfig)
	if err != nil {
		return fmt.Errorf("Update: marshal parser_config: %w", err)
	}
	const query = `
UPDATE crawl_sources SET
	site_name = $1, base_url = $2, parser_config = $3, enabled = $4, crawl_interval_seconds = $5,
	robots_status = $6, crawl_delay_seconds = $7, sitemap_url = $8, discovery_method = $9,
	sitemap_count = $10, article_count = $11, updated_at = now()
WHERE id = $12`
	res, err := r.db.ExecContext(ctx, query,
		s.SiteName, s.BaseURL, cfgJSON, s.Enabled, s.CrawlIntervalSeconds,
		s.RobotsStatus, s.CrawlDelaySeconds, s.SitemapURL, s.DiscoveryMethod,
		s.SitemapCount, s.ArticleCount, s.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (r *SourceRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM crawl_sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
