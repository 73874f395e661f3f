// Package bootstrap wires the store, the task executor catalogue, the
// report agent and the scheduler from a single *sql.DB, so cmd/api and
// cmd/worker build identical component graphs instead of duplicating the
// construction logic the teacher's main.go used to inline.
package bootstrap

import (
	"database/sql"
	"log/slog"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	pgRepo "github.com/myki-jim/newssys-sub000/internal/infra/adapter/persistence/postgres"
	"github.com/myki-jim/newssys-sub000/internal/infra/discovery"
	"github.com/myki-jim/newssys-sub000/internal/infra/llm"
	"github.com/myki-jim/newssys-sub000/internal/infra/scraper"
	"github.com/myki-jim/newssys-sub000/internal/infra/search"
	"github.com/myki-jim/newssys-sub000/internal/pkg/simhash"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/report"
	"github.com/myki-jim/newssys-sub000/internal/usecase/schedule"
	"github.com/myki-jim/newssys-sub000/internal/usecase/score"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task/executor"
)

// Bare task types for on-demand dispatch (HTTP POST /tasks, source refresh).
// schedule_sitemap_crawl, schedule_article_crawl and schedule_keyword_search
// dispatch the same executors under schedule.TaskTypeFor's naming.
const (
	TaskTypeCrawlPending        = "crawl_pending"
	TaskTypeRetryFailed         = "retry_failed"
	TaskTypeCleanupLowQuality   = "cleanup_low_quality"
	TaskTypeScheduleKeywordSearch = "schedule_keyword_search"
	TaskTypeSitemapSync         = "sitemap_sync"
)

// Components is the full set of collaborators shared by cmd/api and
// cmd/worker: the store (component A), the scrape/discovery/score/simhash
// pipeline (B-F), the task manager and its executor catalogue (G),
// the scheduler (H) and the report agent (I).
type Components struct {
	DB *sql.DB

	Articles   repository.ArticleRepository
	Sources    repository.SourceRepository
	Tasks      repository.TaskRepository
	TaskEvents repository.TaskEventRepository
	Schedules  repository.ScheduleRepository
	Keywords   repository.KeywordRepository
	Reports    repository.ReportRepository
	References repository.ReferenceRepository
	Sitemaps   repository.SitemapRepository
	Pending    repository.PendingArticleRepository

	Scraper   *scraper.Scraper
	Discovery *discovery.Service
	Scorer    *score.Scorer
	Clusterer *simhash.Cluster
	Chat      llm.ChatClient
	Search    executor.SearchBackend

	Manager   *task.Manager
	Agent     *report.Agent
	Scheduler *schedule.Scheduler
}

// Build constructs the full component graph against db. logger is used for
// the scheduler and the LLM client's fail-open config loading.
func Build(logger *slog.Logger, db *sql.DB) *Components {
	c := &Components{
		DB: db,

		Articles:   pgRepo.NewArticleRepo(db),
		Sources:    pgRepo.NewSourceRepo(db),
		Tasks:      pgRepo.NewTaskRepo(db),
		TaskEvents: pgRepo.NewTaskEventRepo(db),
		Schedules:  pgRepo.NewScheduleRepo(db),
		Keywords:   pgRepo.NewKeywordRepo(db),
		Reports:    pgRepo.NewReportRepo(db),
		References: pgRepo.NewReferenceRepo(db),
		Sitemaps:   pgRepo.NewSitemapRepo(db),
		Pending:    pgRepo.NewPendingArticleRepo(db),

		Scraper:   scraper.New(),
		Discovery: discovery.NewService(),
		Scorer:    score.NewScorer(),
		Clusterer: simhash.NewCluster(),
		Search:    search.New(),
	}
	c.Chat = llm.NewOpenAIChat(llm.LoadConfigFromEnv(logger))

	c.Manager = task.NewManager(c.Tasks, c.TaskEvents)
	c.registerExecutors()

	c.Agent = report.NewAgent(c.Articles, c.Sources, c.Reports, c.References, c.Scorer, c.Clusterer, c.Chat)
	c.Scheduler = schedule.New(c.Schedules, c.Manager, logger)

	return c
}

func (c *Components) registerExecutors() {
	crawlPending := &executor.CrawlPending{
		Sources:  c.Sources,
		Pending:  c.Pending,
		Articles: c.Articles,
		Scraper:  c.Scraper,
	}
	retryFailed := &executor.RetryFailed{
		Pending:  c.Pending,
		Sources:  c.Sources,
		Articles: c.Articles,
		Scraper:  c.Scraper,
	}
	cleanupLowQuality := &executor.CleanupLowQuality{
		Articles: c.Articles,
		Pending:  c.Pending,
	}
	keywordSearch := &executor.ScheduleKeywordSearch{
		Keywords: c.Keywords,
		Sources:  c.Sources,
		Articles: c.Articles,
		Scraper:  c.Scraper,
		Search:   c.Search,
	}
	sitemapSync := &executor.SitemapSync{
		Sources:   c.Sources,
		Sitemaps:  c.Sitemaps,
		Pending:   c.Pending,
		Discovery: c.Discovery,
	}

	c.Manager.Register(TaskTypeCrawlPending, crawlPending)
	c.Manager.Register(TaskTypeRetryFailed, retryFailed)
	c.Manager.Register(TaskTypeCleanupLowQuality, cleanupLowQuality)
	c.Manager.Register(TaskTypeScheduleKeywordSearch, keywordSearch)
	c.Manager.Register(TaskTypeSitemapSync, sitemapSync)

	// Scheduler.dispatch looks tasks up under "schedule_<type>" — register
	// the same executors there so cron-driven runs and on-demand runs share
	// one code path.
	c.Manager.Register(schedule.TaskTypeFor(entity.ScheduleTypeArticleCrawl), crawlPending)
	c.Manager.Register(schedule.TaskTypeFor(entity.ScheduleTypeSitemapCrawl), sitemapSync)
	c.Manager.Register(schedule.TaskTypeFor(entity.ScheduleTypeKeywordSearch), keywordSearch)
}
