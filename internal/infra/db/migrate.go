package db

import (
	"database/sql"
)

// MigrateUp creates the schema backing the Store if it does not already
// exist. Tables map directly onto the domain entities; JSONB columns hold
// the semi-structured fields (parser_config, params/result, config).
func MigrateUp(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS crawl_sources (
		    id                      SERIAL PRIMARY KEY,
		    site_name               TEXT NOT NULL,
		    base_url                TEXT NOT NULL UNIQUE,
		    parser_config           JSONB NOT NULL DEFAULT '{}',
		    enabled                 BOOLEAN NOT NULL DEFAULT FALSE,
		    crawl_interval_seconds  INTEGER NOT NULL DEFAULT 3600,
		    robots_status           VARCHAR(20) NOT NULL DEFAULT 'pending',
		    crawl_delay_seconds     INTEGER,
		    sitemap_url             TEXT,
		    discovery_method        VARCHAR(20) NOT NULL DEFAULT 'sitemap',
		    sitemap_count           INTEGER NOT NULL DEFAULT 0,
		    article_count           INTEGER NOT NULL DEFAULT 0,
		    created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
		    updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS sitemaps (
		    id            SERIAL PRIMARY KEY,
		    source_id     INTEGER NOT NULL REFERENCES crawl_sources(id) ON DELETE CASCADE,
		    url           TEXT NOT NULL UNIQUE,
		    last_fetched  TIMESTAMPTZ,
		    fetch_status  VARCHAR(20) NOT NULL DEFAULT 'pending',
		    article_count INTEGER NOT NULL DEFAULT 0,
		    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS pending_articles (
		    id           SERIAL PRIMARY KEY,
		    source_id    INTEGER NOT NULL REFERENCES crawl_sources(id) ON DELETE CASCADE,
		    sitemap_id   INTEGER REFERENCES sitemaps(id) ON DELETE SET NULL,
		    url          TEXT NOT NULL,
		    url_hash     CHAR(32) NOT NULL UNIQUE,
		    title        TEXT,
		    publish_time TIMESTAMPTZ,
		    status       VARCHAR(20) NOT NULL DEFAULT 'pending',
		    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS articles (
		    id           SERIAL PRIMARY KEY,
		    url_hash     CHAR(32) NOT NULL UNIQUE,
		    url          TEXT NOT NULL,
		    title        TEXT NOT NULL DEFAULT '',
		    content      TEXT NOT NULL DEFAULT '',
		    content_hash CHAR(64),
		    publish_time TIMESTAMPTZ,
		    author       TEXT NOT NULL DEFAULT '',
		    source_id    INTEGER NOT NULL REFERENCES crawl_sources(id) ON DELETE CASCADE,
		    status       VARCHAR(20) NOT NULL DEFAULT 'raw',
		    fetch_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		    retry_count  INTEGER NOT NULL DEFAULT 0,
		    error        TEXT NOT NULL DEFAULT '',
		    extra        JSONB NOT NULL DEFAULT '{}',
		    embedding    vector(1536),
		    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS tasks (
		    id               SERIAL PRIMARY KEY,
		    task_type        VARCHAR(64) NOT NULL,
		    status           VARCHAR(20) NOT NULL DEFAULT 'pending',
		    title            TEXT NOT NULL DEFAULT '',
		    params           JSONB NOT NULL DEFAULT '{}',
		    result           JSONB,
		    progress_current INTEGER NOT NULL DEFAULT 0,
		    progress_total   INTEGER NOT NULL DEFAULT 0,
		    error_message    TEXT NOT NULL DEFAULT '',
		    started_at       TIMESTAMPTZ,
		    completed_at     TIMESTAMPTZ,
		    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS task_events (
		    id         SERIAL PRIMARY KEY,
		    task_id    INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		    event_type VARCHAR(20) NOT NULL,
		    payload    JSONB NOT NULL DEFAULT '{}',
		    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS schedules (
		    id               SERIAL PRIMARY KEY,
		    name             TEXT NOT NULL UNIQUE,
		    schedule_type    VARCHAR(32) NOT NULL,
		    status           VARCHAR(20) NOT NULL DEFAULT 'active',
		    interval_minutes INTEGER NOT NULL,
		    max_executions   INTEGER,
		    execution_count  INTEGER NOT NULL DEFAULT 0,
		    config           JSONB NOT NULL DEFAULT '{}',
		    last_run_at      TIMESTAMPTZ,
		    next_run_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		    last_status      TEXT NOT NULL DEFAULT '',
		    last_error       TEXT NOT NULL DEFAULT '',
		    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS search_keywords (
		    id           SERIAL PRIMARY KEY,
		    query        TEXT NOT NULL,
		    time_range   VARCHAR(4) NOT NULL DEFAULT 'w',
		    max_results  INTEGER NOT NULL DEFAULT 20,
		    region       TEXT NOT NULL DEFAULT '',
		    is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		    usage_count  INTEGER NOT NULL DEFAULT 0,
		    last_used_at TIMESTAMPTZ,
		    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS reports (
		    id               SERIAL PRIMARY KEY,
		    title            TEXT NOT NULL,
		    time_range_start TIMESTAMPTZ NOT NULL,
		    time_range_end   TIMESTAMPTZ NOT NULL,
		    template_id      TEXT,
		    language         VARCHAR(8) NOT NULL DEFAULT 'en',
		    status           VARCHAR(20) NOT NULL DEFAULT 'generating',
		    agent_stage      VARCHAR(32) NOT NULL DEFAULT 'initializing',
		    progress_pct     INTEGER NOT NULL DEFAULT 0,
		    sections         JSONB NOT NULL DEFAULT '[]',
		    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS "references" (
		    id             SERIAL PRIMARY KEY,
		    article_id     INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		    report_id      INTEGER NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		    citation_index INTEGER NOT NULL,
		    snippet        TEXT,
		    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		    UNIQUE(report_id, citation_index)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_crawl_sources_enabled ON crawl_sources(enabled) WHERE enabled = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_sitemaps_source_id ON sitemaps(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pending_articles_source_status ON pending_articles(source_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_pending_articles_status ON pending_articles(status)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_source_id ON articles(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_publish_time ON articles(publish_time DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_type_created ON tasks(task_type, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_task_events_task_id ON task_events(task_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_due ON schedules(status, next_run_at)`,
		`CREATE INDEX IF NOT EXISTS idx_search_keywords_active ON search_keywords(is_active) WHERE is_active = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_references_article_id ON "references"(article_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// pg_trgm speeds up the ILIKE keyword search the Report Agent's article
	// filter and the articles list endpoint both use. Ignored if the
	// extension isn't available (no superuser, managed instance, etc).
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_articles_title_gin ON articles USING gin(title gin_trgm_ops)`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_articles_content_gin ON articles USING gin(content gin_trgm_ops)`)

	// pgvector backs the optional Article.embedding column; absent on
	// managed instances without the extension, the column stays unused.
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_articles_embedding ON articles USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`)

	return nil
}

// MigrateDown drops every table MigrateUp creates, in dependency order.
// Use with caution: this deletes all data.
func MigrateDown(db *sql.DB) error {
	tables := []string{
		`"references"`, `reports`, `search_keywords`, `schedules`,
		`task_events`, `tasks`, `articles`, `pending_articles`, `sitemaps`, `crawl_sources`,
	}
	for _, t := range tables {
		if _, err := db.Exec(`DROP TABLE IF EXISTS ` + t + ` CASCADE`); err != nil {
			return err
		}
	}
	return nil
}
