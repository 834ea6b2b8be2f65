package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppEnv string
	AppURL string // Optional: base URL for share links, request host is used when empty
	Port   string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Goals
	GoalDefaultDeadline time.Duration

	// HTTP
	CORSAllowedOrigins     []string
	RateLimitAuthPerMinute int

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppEnv: envString("APP_ENV", "development"),
		AppURL: strings.TrimRight(envString("APP_URL", ""), "/"),
		Port:   envString("PORT", "5001"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/experience_points.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Goals
		GoalDefaultDeadline: envDuration("GOAL_DEFAULT_DEADLINE", 90*24*time.Hour),

		// HTTP
		CORSAllowedOrigins:     envList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitAuthPerMinute: envInt("RATE_LIMIT_AUTH_PER_MINUTE", 10),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = defaultOrigins(cfg.IsDevelopment())
	}

	err = Validate(cfg)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	return cfg
}

// Validate checks values that cannot be repaired with a default.
func Validate(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.AppEnv != "development" && cfg.AppEnv != "production" {
		return errors.New("APP_ENV must be 'development' or 'production'")
	}
	if cfg.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "pgx" {
		return errors.New("DB_DRIVER must be 'sqlite' or 'pgx'")
	}
	if cfg.IsProduction() {
		for _, origin := range cfg.CORSAllowedOrigins {
			if origin == "*" {
				return errors.New("CORS wildcard '*' is not allowed in production")
			}
		}
	}
	return nil
}

func defaultOrigins(isDev bool) []string {
	if isDev {
		return []string{"*"}
	}
	return []string{
		"https://experiencepoints.app",
		"http://experiencepoints.app",
		"http://localhost:8080",
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
