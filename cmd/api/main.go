package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/myki-jim/newssys-sub000/internal/bootstrap"
	"github.com/myki-jim/newssys-sub000/internal/common/pagination"
	"github.com/myki-jim/newssys-sub000/internal/infra/db"
	"github.com/myki-jim/newssys-sub000/pkg/security/csp"

	hhttp "github.com/myki-jim/newssys-sub000/internal/handler/http"
	harticle "github.com/myki-jim/newssys-sub000/internal/handler/http/article"
	hkeyword "github.com/myki-jim/newssys-sub000/internal/handler/http/keyword"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/requestid"
	hreport "github.com/myki-jim/newssys-sub000/internal/handler/http/report"
	hschedule "github.com/myki-jim/newssys-sub000/internal/handler/http/schedule"
	hsrc "github.com/myki-jim/newssys-sub000/internal/handler/http/source"
	htask "github.com/myki-jim/newssys-sub000/internal/handler/http/task"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	components := bootstrap.Build(logger, database)
	handler := setupServer(logger, database, version, components)

	runServer(logger, handler, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer registers every HTTP route onto a fresh mux and wraps it in
// the ambient middleware chain.
func setupServer(logger *slog.Logger, database *sql.DB, version string, c *bootstrap.Components) http.Handler {
	paginationCfg := pagination.LoadFromEnv()

	mux := http.NewServeMux()
	mux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	harticle.Register(mux, c.Articles, paginationCfg)
	hsrc.Register(mux, c.Sources, c.Manager, c.Scraper)
	htask.Register(mux, c.Manager, c.Tasks)
	hschedule.Register(mux, c.Schedules, c.Scheduler)
	hreport.Register(mux, c.Agent, c.Reports, c.References)
	hkeyword.Register(mux, c.Keywords)

	return applyMiddleware(logger, mux)
}

// applyMiddleware wraps the handler with middleware chain.
// Middleware order: Request ID -> IP Rate Limit -> Recovery -> Logging -> Body Limit -> CSP -> Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	rateLimit := hhttp.NewRateLimiter(loadRateLimit(logger))

	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = cspMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = rateLimit.Limit(chain)
	chain = requestid.Middleware(chain)

	return chain
}

// loadRateLimit reads API_RATE_LIMIT/API_RATE_WINDOW_SECONDS, falling back
// to 300 requests per minute per IP.
func loadRateLimit(logger *slog.Logger) (int, time.Duration) {
	limit := 300
	window := time.Minute
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			limit = n
		} else {
			logger.Warn("invalid API_RATE_LIMIT, using default", slog.String("value", v))
		}
	}
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			window = time.Duration(n) * time.Second
		} else {
			logger.Warn("invalid API_RATE_WINDOW_SECONDS, using default", slog.String("value", v))
		}
	}
	return limit, window
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.New("not a positive integer")
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

// cspMiddleware sets a strict Content-Security-Policy header on every response.
func cspMiddleware(next http.Handler) http.Handler {
	policy := csp.StrictPolicy()
	header := policy.HeaderName()
	value := policy.Build()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(header, value)
		next.ServeHTTP(w, r)
	})
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", ":8080"),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
