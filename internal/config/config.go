// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "3333".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// APIBaseURL is the public base URL used to build the confirmation links
	// embedded in emails.
	APIBaseURL string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart applies embedded migrations before serving traffic.
	MigrateOnStart bool

	Mail Mail
}

// Mail configures the outgoing mail gateway and the notification fan-out.
type Mail struct {
	FromName    string
	FromAddress string

	// SMTPHost selects the SMTP transport. When empty, messages are logged
	// instead of sent.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool

	// Timeout bounds each individual send attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first failed attempt.
	MaxRetries uint64
	// Concurrency limits simultaneous sends during a fan-out.
	Concurrency int
	// Deadline bounds a whole fan-out, retries and waves included. The HTTP
	// write timeout is derived from it so a late 502 still reaches the client.
	Deadline time.Duration
	// Locale selects the language of email subjects, bodies and dates.
	Locale language.Tag
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable that could not be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "3333"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		APIBaseURL:  strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3333"), "/"),
		Mail: Mail{
			FromName:     getEnv("MAIL_FROM_NAME", "Equipe plann.er"),
			FromAddress:  getEnv("MAIL_FROM_ADDRESS", "equipe@plann.er"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		},
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.MaxBodyBytes, err = getInt64("MAX_BODY_BYTES", 1<<20); err != nil {
		return Config{}, err
	}
	if cfg.MigrateOnStart, err = getBool("MIGRATE_ON_START", false); err != nil {
		return Config{}, err
	}
	if cfg.Mail.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.Mail.SMTPTLS, err = getBool("SMTP_TLS", true); err != nil {
		return Config{}, err
	}
	if cfg.Mail.Timeout, err = getDuration("MAIL_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	retries, err := getInt("MAIL_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, err
	}
	if retries < 0 {
		return Config{}, fmt.Errorf("MAIL_MAX_RETRIES must not be negative, got %d", retries)
	}
	cfg.Mail.MaxRetries = uint64(retries)
	if cfg.Mail.Concurrency, err = getInt("MAIL_CONCURRENCY", 8); err != nil {
		return Config{}, err
	}
	if cfg.Mail.Concurrency < 1 {
		return Config{}, fmt.Errorf("MAIL_CONCURRENCY must be at least 1, got %d", cfg.Mail.Concurrency)
	}
	if cfg.Mail.Deadline, err = getDuration("MAIL_DEADLINE", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Mail.Deadline <= 0 {
		return Config{}, fmt.Errorf("MAIL_DEADLINE must be positive, got %s", cfg.Mail.Deadline)
	}
	if cfg.Mail.Locale, err = language.Parse(getEnv("MAIL_LOCALE", "pt-BR")); err != nil {
		return Config{}, fmt.Errorf("invalid MAIL_LOCALE: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
