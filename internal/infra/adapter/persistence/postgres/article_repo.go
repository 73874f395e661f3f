package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/repository"
)

type ArticleRepo struct{ db *sql.DB }

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

const articleColumns = `id, url_hash, url, title, content, content_hash, publish_time, author,
	source_id, status, fetch_status, retry_count, error, extra, created_at, updated_at`

func scanArticle(scanner interface{ Scan(...any) error }) (*entity.Article, error) {
	var a entity.Article
	var extraJSON []byte
	if err := scanner.Scan(
		&a.ID, &a.URLHash, &a.URL, &a.Title, &a.Content, &a.ContentHash, &a.PublishTime, &a.Author,
		&a.SourceID, &a.Status, &a.FetchStatus, &a.RetryCount, &a.Error, &extraJSON, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(extraJSON) > 0 {
		if err := json.Unmarshal(extraJSON, &a.Extra); err != nil {
			return nil, fmt.Errorf("unmarshal extra: %w", err)
		}
	}
	return &a, nil
}

func (r *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (r *ArticleRepo) GetByURLHash(ctx context.Context, urlHash string) (*entity.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE url_hash = $1`, urlHash)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByURLHash: %w", err)
	}
	return a, nil
}

// buildWhere builds a WHERE clause and its positional args for filters,
// prefixing every column with the "a." alias used by ListWithSourcePaginated.
func buildWhere(filters repository.ArticleSearchFilters) (string, []any) {
	var conditions []string
	var args []any
	idx := 1

	next := func(cond string, arg any) {
		conditions = append(conditions, fmt.Sprintf(cond, idx))
		args = append(args, arg)
		idx++
	}
	if filters.SourceID != nil {
		next("a.source_id = $%d", *filters.SourceID)
	}
	if filters.Status != nil {
		next("a.status = $%d", *filters.Status)
	}
	if filters.FetchStatus != nil {
		next("a.fetch_status = $%d", *filters.FetchStatus)
	}
	if filters.From != nil {
		next("a.publish_time >= $%d", *filters.From)
	}
	if filters.To != nil {
		next("a.publish_time <= $%d", *filters.To)
	}
	if filters.Keyword != nil && *filters.Keyword != "" {
		escaped := escapeILIKE(*filters.Keyword)
		conditions = append(conditions, fmt.Sprintf("(a.title ILIKE $%d OR a.content ILIKE $%d)", idx, idx))
		args = append(args, "%"+escaped+"%")
		idx++
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// escapeILIKE escapes ILIKE wildcard characters in user-supplied search
// terms so they're matched literally.
func escapeILIKE(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func (r *ArticleRepo) ListWithSourcePaginated(ctx context.Context, filters repository.ArticleSearchFilters, offset, limit int) ([]*repository.ArticleWithSource, int, error) {
	where, args := buildWhere(filters)

	countQuery := `SELECT COUNT(*) FROM articles a ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListWithSourcePaginated: count: %w", err)
	}
	if total == 0 {
		return []*repository.ArticleWithSource{}, 0, nil
	}

	const aliasedArticleColumns = `a.id, a.url_hash, a.url, a.title, a.content, a.content_hash, a.publish_time, a.author,
	a.source_id, a.status, a.fetch_status, a.retry_count, a.error, a.extra, a.created_at, a.updated_at`
	query := fmt.Sprintf(`
SELECT %s, s.site_name
FROM articles a
JOIN crawl_sources s ON s.id = a.source_id
%s
ORDER BY a.publish_time DESC NULLS LAST, a.id DESC
LIMIT $%d OFFSET $%d`, aliasedArticleColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListWithSourcePaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*repository.ArticleWithSource, 0, limit)
	for rows.Next() {
		var a entity.Article
		var extraJSON []byte
		var sourceName string
		if err := rows.Scan(
			&a.ID, &a.URLHash, &a.URL, &a.Title, &a.Content, &a.ContentHash, &a.PublishTime, &a.Author,
			&a.SourceID, &a.Status, &a.FetchStatus, &a.RetryCount, &a.Error, &extraJSON, &a.CreatedAt, &a.UpdatedAt,
			&sourceName,
		); err != nil {
			return nil, 0, fmt.Errorf("ListWithSourcePaginated: scan: %w", err)
		}
		if len(extraJSON) > 0 {
			if err := json.Unmarshal(extraJSON, &a.Extra); err != nil {
				return nil, 0, fmt.Errorf("ListWithSourcePaginated: unmarshal extra: %w", err)
			}
		}
		out = append(out, &repository.ArticleWithSource{Article: &a, SourceName: sourceName})
	}
	return out, total, rows.Err()
}

func (r *ArticleRepo) ListByTimeRange(ctx context.Context, from, to time.Time, limit int) ([]*entity.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles
WHERE publish_time >= $1 AND publish_time <= $2
ORDER BY publish_time DESC
LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("ListByTimeRange: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*entity.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByTimeRange: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ArticleRepo) ListLowQuality(ctx context.Context, minContentLen int, olderThan time.Time, limit int) ([]*entity.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles
WHERE (LENGTH(content) < $1 OR status = 'low_quality') AND created_at < $2
ORDER BY created_at ASC
LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, minContentLen, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("ListLowQuality: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*entity.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListLowQuality: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ArticleRepo) ExistsByURLHashBatch(ctx context.Context, urlHashes []string) (map[string]bool, error) {
	result := make(map[string]bool, len(urlHashes))
	if len(urlHashes) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(urlHashes))
	args := make([]any, len(urlHashes))
	for i, h := range urlHashes {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = h
	}
	query := `SELECT url_hash FROM articles WHERE url_hash IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLHashBatch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("ExistsByURLHashBatch: %w", err)
		}
		result[hash] = true
	}
	return result, rows.Err()
}

func (r *ArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	extraJSON, err := json.Marshal(a.Extra)
	if err != nil {
		return fmt.Errorf("Create: marshal extra: %w", err)
	}
	const query = `
INSERT INTO articles (url_hash, url, title, content, content_hash, publish_time, author,
	source_id, status, fetch_status, retry_count, error, extra)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
RETURNING id, created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		a.URLHash, a.URL, a.Title, a.Content, a.ContentHash, a.PublishTime, a.Author,
		a.SourceID, a.Status, a.FetchStatus, a.RetryCount, a.Error, extraJSON,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ArticleRepo) Update(ctx context.Context, a *entity.Article) error {
	extraJSON, err := json.Marshal(a.Extra)
	if err != nil {
		return fmt.Errorf("Update: marshal extra: %w", err)
	}
	const query = `
UPDATE articles SET
	title = $1, content = $2, content_hash = $3, publish_time = $4, author = $5,
	status = $6, fetch_status = $7, retry_count = $8, error = $9, extra = $10, updated_at = now()
WHERE id = $11`
	res, err := r.db.ExecContext(ctx, query,
		a.Title, a.Content, a.ContentHash, a.PublishTime, a.Author,
		a.Status, a.FetchStatus, a.RetryCount, a.Error, extraJSON, a.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (r *ArticleRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
