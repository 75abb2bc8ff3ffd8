package config

import (
	"log/slog"
	"time"

	"github.com/k1networth/itdesk/internal/shared/env"
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	LogLevel slog.Level

	// DatabaseURL selects the document store backend by scheme.
	// Empty means the service starts without a store.
	DatabaseURL string

	RateLimitPerMinute int
	ShutdownTimeout    time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment. ENV_FILE names an extra
// dotenv file consulted before ".env".
func Load() Config {
	files := []string{".env"}
	if extra := env.String("ENV_FILE", ""); extra != "" {
		files = append([]string{extra}, files...)
	}
	if err := loadDotEnv(files...); err != nil {
		slog.Warn("dotenv_load_failed", slog.String("err", err.Error()))
	}

	port := env.String("PORT", "8000")

	return Config{
		AppEnv:             env.String("APP_ENV", "dev"),
		HTTPAddr:           env.String("HTTP_ADDR", ":"+port),
		LogLevel:           env.Level("LOG_LEVEL", slog.LevelInfo),
		DatabaseURL:        env.String("DATABASE_URL", ""),
		RateLimitPerMinute: env.Int("RATE_LIMIT_PER_MINUTE", 0),
		ShutdownTimeout:    env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		KafkaBrokers:       env.StringsCSV("KAFKA_BROKERS", nil),
		KafkaTopic:         env.String("KAFKA_TOPIC", "tickets.events"),
	}
}
