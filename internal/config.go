package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/DukeRupert/tesis/internal/paginate"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Thesis backend
	BackendURL     string
	BackendTimeout time.Duration
	BackendRPS     float64 // 0 disables the outbound limiter
	BackendBurst   int

	// SessionSecret seals backend tokens at rest: 64 hex chars or 32+ bytes.
	SessionSecret   string
	SessionDuration time.Duration

	// Login attempts per client IP
	LoginRatePerMinute int
	LoginBurst         int

	// ListPresetsFile optionally overrides the built-in presets of some lists.
	ListPresetsFile string
	Lists           map[string]paginate.Settings

	DefaultLocale string

	WorkerEnabled      bool
	WorkerPollInterval time.Duration
	WorkerJobTimeout   time.Duration

	// Without credentials /metrics only answers loopback clients.
	MetricsUsername string
	MetricsPassword string
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// NewConfig reads the environment, after loading a .env file when one
// exists. Every missing required variable and malformed value is reported
// together.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	var env envReader
	cfg := &Config{
		Env:         env.str("ENV", "development"),
		Port:        env.int("PORT", 8080),
		LogLevel:    env.str("LOG_LEVEL", "debug"),
		DatabaseUrl: env.required("DATABASE_URL"),

		BackendURL:     env.required("BACKEND_URL"),
		BackendTimeout: env.duration("BACKEND_TIMEOUT", 10*time.Second),
		BackendRPS:     env.float("BACKEND_RPS", 20),
		BackendBurst:   env.int("BACKEND_BURST", 40),

		SessionSecret:   env.required("SESSION_SECRET"),
		SessionDuration: env.duration("SESSION_DURATION", 24*time.Hour),

		LoginRatePerMinute: env.int("LOGIN_RATE_PER_MINUTE", 10),
		LoginBurst:         env.int("LOGIN_BURST", 5),

		ListPresetsFile: env.str("LIST_PRESETS_FILE", ""),
		DefaultLocale:   env.str("DEFAULT_LOCALE", "es"),

		WorkerEnabled:      env.bool("WORKER_ENABLED", true),
		WorkerPollInterval: env.duration("WORKER_POLL_INTERVAL", time.Hour),
		WorkerJobTimeout:   env.duration("WORKER_JOB_TIMEOUT", time.Minute),

		MetricsUsername: env.str("METRICS_USERNAME", ""),
		MetricsPassword: env.str("METRICS_PASSWORD", ""),
	}
	if cfg.LoginRatePerMinute < 1 {
		env.errs = append(env.errs, fmt.Errorf("LOGIN_RATE_PER_MINUTE must be at least 1, got %d", cfg.LoginRatePerMinute))
	}
	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}

	lists, err := LoadPresets(cfg.ListPresetsFile)
	if err != nil {
		return nil, fmt.Errorf("load list presets: %w", err)
	}
	cfg.Lists = lists

	return cfg, nil
}

// envReader collects lookup failures so NewConfig can report them at once.
type envReader struct {
	errs []error
}

func (e *envReader) str(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (e *envReader) required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		e.errs = append(e.errs, fmt.Errorf("%s is required", key))
	}
	return v
}

func (e *envReader) int(key string, fallback int) int {
	return parseEnv(e, key, fallback, strconv.Atoi)
}

func (e *envReader) float(key string, fallback float64) float64 {
	return parseEnv(e, key, fallback, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func (e *envReader) bool(key string, fallback bool) bool {
	return parseEnv(e, key, fallback, strconv.ParseBool)
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	return parseEnv(e, key, fallback, time.ParseDuration)
}

func parseEnv[T any](e *envReader, key string, fallback T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s=%q: %w", key, raw, err))
		return fallback
	}
	return v
}
