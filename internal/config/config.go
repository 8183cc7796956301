package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// App
	AppName    string
	AppVersion string

	// Document store
	DatabaseURL    string
	DatabaseName   string
	LeadCollection string

	// Redis (lead notification queue)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Server
	ApiPort            string
	ServiceApiPort     string
	CorsAllowedOrigins []string

	// Email
	SmtpHost             string
	SmtpPort             int
	SmtpUsername         string
	SmtpPassword         string
	SmtpFromAddress      string
	LeadNotifyRecipients []string
}

// QueueEnabled reports whether Redis is configured for background notifications.
func (c *Config) QueueEnabled() bool {
	return c.RedisAddr != ""
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.DatabaseURL, err = getRequiredEnv("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	cfg.DatabaseName = getEnv("DATABASE_NAME", "oxyspa")
	cfg.LeadCollection = getEnv("LEAD_COLLECTION", "lead")
	cfg.AppName = getEnv("APP_NAME", "OxySPA B2B API")
	cfg.AppVersion = getEnv("APP_VERSION", "1.0.0")
	cfg.ApiPort = getEnv("PORT", "8000")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.CorsAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@oxyspa.example.com")
	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.LeadNotifyRecipients = splitList(getEnv("LEAD_NOTIFY_RECIPIENTS", ""))

	switch cfg.RunMode {
	case "api", "bg", "all":
	default:
		return nil, fmt.Errorf("invalid run mode: %q", cfg.RunMode)
	}
	if cfg.RunMode == "bg" && !cfg.QueueEnabled() {
		return nil, fmt.Errorf("run mode 'bg' requires REDIS_ADDR")
	}

	return cfg, nil
}

// splitList parses a comma separated value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
