package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	DBUrl    string
	// Outbound mailbox; also the SMTP login
	EmailUser      string
	EmailPass      string
	SMTPHost       string
	SMTPPort       string
	SMTPSkipVerify bool
	SMTPTimeout    time.Duration
	// CORS
	AllowedOrigins []string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Proxies whose X-Forwarded-For is trusted; none by default
	TrustedProxies []string
	// Rate Limiting Configuration; 0 disables the contact limiter
	ContactRateLimitPerMinute int
	// Admin listing is disabled when empty
	AdminJWTSecret string
}

// ErrMissingRequired is returned by Validate when a required variable is unset.
var ErrMissingRequired = errors.New("missing required configuration")

func LoadConfig() (*Config, error) {
	// Load .env file if present; real environment wins.
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "5000"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DBUrl:    getEnv("DATABASE_URL", ""),
		// SMTP Configuration
		EmailUser:      getEnv("EMAIL_USER", ""),
		EmailPass:      getEnv("EMAIL_PASS", ""),
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPSkipVerify: getEnvBool("SMTP_TLS_SKIP_VERIFY", false),
		SMTPTimeout:    time.Duration(getEnvInt("SMTP_TIMEOUT_SECONDS", 15)) * time.Second,
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"https://Krutik3008.github.io"}),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		TrustedProxies:            getEnvList("TRUSTED_PROXIES", nil),
		ContactRateLimitPerMinute: getEnvInt("RATE_LIMIT_CONTACT_PER_MINUTE", 0),
		AdminJWTSecret:            getEnv("ADMIN_JWT_SECRET", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabaseURL reads only DATABASE_URL, for tools that do not send mail.
func LoadDatabaseURL() (string, error) {
	_ = godotenv.Load()
	url := getEnv("DATABASE_URL", "")
	if url == "" {
		return "", fmt.Errorf("%w: DATABASE_URL", ErrMissingRequired)
	}
	return url, nil
}

// Validate checks that the database and mailbox settings are present.
func (c *Config) Validate() error {
	var missing []string
	if c.DBUrl == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.EmailUser == "" {
		missing = append(missing, "EMAIL_USER")
	}
	if c.EmailPass == "" {
		missing = append(missing, "EMAIL_PASS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}
	return nil
}

// Redacted returns loggable key/value pairs with secrets masked.
func (c *Config) Redacted() []any {
	return []any{
		"port", c.Port,
		"env", c.Env,
		"database_url_set", c.DBUrl != "",
		"email_user", c.EmailUser,
		"email_pass", redact(c.EmailPass),
		"smtp_host", c.SMTPHost,
		"smtp_port", c.SMTPPort,
		"redis_configured", c.UpstashRedisURL != "",
		"contact_rate_limit_per_minute", c.ContactRateLimitPerMinute,
		"trusted_proxies", c.TrustedProxies,
		"admin_enabled", c.AdminJWTSecret != "",
	}
}

func redact(v string) string {
	if v == "" {
		return ""
	}
	return "[REDACTED]"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blanks and trailing slashes.
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimRight(strings.TrimSpace(item), "/")
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
