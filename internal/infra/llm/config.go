package llm

import (
	"log/slog"
	"time"

	"github.com/myki-jim/newssys-sub000/internal/pkg/config"
)

// Config holds the chat-completion settings for the Report Agent's LLM
// collaborator: keyword generation and per-section streaming generation.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns sane defaults; BaseURL empty means the official
// OpenAI endpoint, and APIKey empty means any call will fail fast at the
// API layer rather than block on startup.
func DefaultConfig() Config {
	return Config{
		Model:   "gpt-4o-mini",
		Timeout: 60 * time.Second,
	}
}

// LoadConfigFromEnv loads LLM settings from environment variables, falling
// back to DefaultConfig on any validation failure — same fail-open strategy
// as the worker package's config loader, so a bad LLM_TIMEOUT never blocks
// the rest of the service from starting.
//
// Environment variables: LLM_BASE_URL, LLM_API_KEY, LLM_MODEL, LLM_TIMEOUT.
func LoadConfigFromEnv(logger *slog.Logger) Config {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := DefaultConfig()

	cfg.BaseURL = config.LoadEnvString("LLM_BASE_URL", cfg.BaseURL)
	cfg.APIKey = config.LoadEnvString("LLM_API_KEY", cfg.APIKey)
	cfg.Model = config.LoadEnvString("LLM_MODEL", cfg.Model)

	result := config.LoadEnvDuration("LLM_TIMEOUT", cfg.Timeout, func(d time.Duration) error {
		return config.ValidatePositiveDuration(d)
	})
	cfg.Timeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		for _, warning := range result.Warnings {
			logger.Warn("llm config fallback applied", slog.String("field", "Timeout"), slog.String("warning", warning))
		}
	}

	return cfg
}
