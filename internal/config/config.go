package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	LogLevel       string
	RequestTimeout time.Duration
	AllowedOrigins []string
	Env            string

	// Remote database. Both values are required before a connection is
	// attempted, but their absence must not prevent the process from
	// starting: validation happens at bootstrap time so the instance can
	// still answer /health and return 503 everywhere else.
	DatabaseURL       string
	DatabaseAuthToken string

	// Shared secret for the scheduler-triggered /cron endpoints.
	CronSecret string

	// Bootstrap seed account password. Defaults to a development password
	// outside production; in production it must be set explicitly or the
	// seeding of an empty database fails.
	AdminPassword string

	// Retention window applied by /cron/cleanup-logs.
	LogRetention time.Duration
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:           getenv("PORT", "8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		RequestTimeout: parseDuration(getenv("REQUEST_TIMEOUT", "30s"), 30*time.Second),
		AllowedOrigins: parseCSV(getenv("ALLOWED_ORIGINS", "")),
		Env:            getenv("APP_ENV", "development"),

		DatabaseURL:       getenv("DATABASE_URL", ""),
		DatabaseAuthToken: getenv("DATABASE_AUTH_TOKEN", ""),
		CronSecret:        getenv("CRON_SECRET", ""),
		AdminPassword:     getenv("ADMIN_PASSWORD", ""),
		LogRetention:      parseDuration(getenv("LOG_RETENTION", "720h"), 720*time.Hour), // 30 days
	}

	if cfg.AdminPassword == "" && cfg.Env != "production" {
		cfg.AdminPassword = "admin123"
	}

	// Default to permissive CORS in non-production if not explicitly configured.
	// This prevents local dev CORS errors when ALLOWED_ORIGINS is omitted.
	if len(cfg.AllowedOrigins) == 0 && cfg.Env != "production" {
		cfg.AllowedOrigins = []string{"*"}
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func parseCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
