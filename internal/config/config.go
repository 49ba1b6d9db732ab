package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingJWTSecret is returned by Load when JWT_SECRET is not set.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	DatabaseURL     string // postgres:// URL or a SQLite path
	JWTSecret       string
	TokenTTL        time.Duration
	BcryptCost      int
	LogLevel        string
	LogFormat       string // "console" or "json"
	AllowedOrigins  []string
	EventRetention  time.Duration
	MaintenanceCron string
	ShutdownTimeout time.Duration
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	ttlMinutes, err := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if ttlMinutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", ttlMinutes)
	}
	cost, err := getEnvInt("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}
	if cost < 4 || cost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cost)
	}
	retentionDays, err := getEnvInt("EVENT_RETENTION_DAYS", 30)
	if err != nil {
		return nil, err
	}
	shutdownSeconds, err := getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	format := strings.ToLower(getEnv("LOG_FORMAT", "console"))
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be console or json, got %q", format)
	}

	return &Config{
		ServerPort:      port,
		DatabaseURL:     databaseURL(),
		JWTSecret:       secret,
		TokenTTL:        time.Duration(ttlMinutes) * time.Minute,
		BcryptCost:      cost,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       format,
		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		EventRetention:  time.Duration(retentionDays) * 24 * time.Hour,
		MaintenanceCron: getEnv("MAINTENANCE_CRON", "@daily"),
		ShutdownTimeout: time.Duration(shutdownSeconds) * time.Second,
	}, nil
}

// databaseURL prefers DATABASE_URL, then a postgres URL assembled from the
// POSTGRES_* variables, then the SQLite file at DATABASE_PATH.
func databaseURL() string {
	if dsn := getEnv("DATABASE_URL", ""); dsn != "" {
		return dsn
	}
	if user := getEnv("POSTGRES_USER", ""); user != "" {
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, getEnv("POSTGRES_PASSWORD", "")),
			Host:   getEnv("POSTGRES_HOST", "localhost") + ":5432",
			Path:   "/" + getEnv("POSTGRES_DB", ""),
		}
		return u.String()
	}
	return getEnv("DATABASE_PATH", "./bookshelf.db")
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
