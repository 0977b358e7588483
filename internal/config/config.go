package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"bizai/internal/log"
)

// Config holds every runtime setting. Values are layered: built-in defaults,
// then the YAML file named by BIZAI_CONFIG, then environment variables.
type Config struct {
	// HTTP Server
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Analytics backend
	AnalyticsAPIURL string        `yaml:"analytics_api_url"`
	BackendTimeout  time.Duration `yaml:"backend_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`

	// Sessions and auth
	SessionTTL        time.Duration `yaml:"session_ttl"`
	SessionMaxEntries int           `yaml:"session_max_entries"`
	CookieSecure      bool          `yaml:"cookie_secure"`
	RequireLogin      bool          `yaml:"require_login"`

	// Security
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	TrustedProxies     []string `yaml:"trusted_proxies"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Upload journal
	JournalBackend    string        `yaml:"journal_backend"`
	SQLiteDBPath      string        `yaml:"sqlite_db_path"`
	JournalRetention  time.Duration `yaml:"journal_retention"`
	RetentionSchedule string        `yaml:"retention_schedule"`

	// AMQP
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Google Sheets export
	GoogleSpreadsheetID string `yaml:"google_spreadsheet_id"`
	GoogleSheetName     string `yaml:"google_sheet_name"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Port:               "8080",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       45 * time.Second,
		AnalyticsAPIURL:    "http://localhost:8000",
		BackendTimeout:     30 * time.Second,
		MaxUploadBytes:     10 << 20,
		SessionTTL:         12 * time.Hour,
		SessionMaxEntries:  1000,
		CookieSecure:       false,
		RequireLogin:       true,
		RateLimitPerMinute: 60,
		LogLevel:           "info",
		LogFormat:          "text",
		JournalBackend:     "memory",
		SQLiteDBPath:       "./data/bizai.db",
		JournalRetention:   30 * 24 * time.Hour,
		RetentionSchedule:  "0 3 * * *",
		AMQPExchange:       "bizai",
		AMQPQueue:          "upload_events",
		GoogleSheetName:    "Uploads",
	}
}

// Load builds the configuration. A missing BIZAI_CONFIG file is an error; an
// unset BIZAI_CONFIG skips the file layer.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("BIZAI_CONFIG")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.WriteTimeout)

	c.AnalyticsAPIURL = getEnv("ANALYTICS_API_URL", c.AnalyticsAPIURL)
	c.BackendTimeout = getEnvDuration("BACKEND_TIMEOUT", c.BackendTimeout)
	c.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))

	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)
	c.SessionMaxEntries = getEnvInt("SESSION_MAX_ENTRIES", c.SessionMaxEntries)
	c.CookieSecure = getEnvBool("COOKIE_SECURE", c.CookieSecure)
	c.RequireLogin = getEnvBool("REQUIRE_LOGIN", c.RequireLogin)

	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		c.TrustedProxies = splitList(proxies)
	}

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.JournalBackend = getEnv("JOURNAL_BACKEND", c.JournalBackend)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.JournalRetention = getEnvDuration("JOURNAL_RETENTION", c.JournalRetention)
	c.RetentionSchedule = getEnv("RETENTION_SCHEDULE", c.RetentionSchedule)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)

	c.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", c.GoogleSpreadsheetID)
	c.GoogleSheetName = getEnv("GOOGLE_SHEET_NAME", c.GoogleSheetName)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		errs = append(errs, "server read and write timeouts must be positive")
	}

	if parsed, err := url.Parse(c.AnalyticsAPIURL); err != nil || c.AnalyticsAPIURL == "" {
		errs = append(errs, fmt.Sprintf("invalid analytics API URL '%s'", c.AnalyticsAPIURL))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid analytics API URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	} else if parsed.Host == "" {
		errs = append(errs, fmt.Sprintf("invalid analytics API URL '%s': missing host", c.AnalyticsAPIURL))
	}

	if c.BackendTimeout < time.Second || c.BackendTimeout > 10*time.Minute {
		errs = append(errs, fmt.Sprintf("invalid backend timeout %v: must be between 1s and 10m", c.BackendTimeout))
	}

	if c.MaxUploadBytes < 1024 {
		errs = append(errs, fmt.Sprintf("invalid max upload size %d: must be at least 1024 bytes", c.MaxUploadBytes))
	}

	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMaxEntries < 1 {
		errs = append(errs, fmt.Sprintf("invalid session max entries %d: must be at least 1", c.SessionMaxEntries))
	}

	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	switch c.JournalBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite journal")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid journal backend '%s': must be one of [memory sqlite]", c.JournalBackend))
	}

	if c.JournalRetention < time.Hour {
		errs = append(errs, fmt.Sprintf("invalid journal retention %v: must be at least 1 hour", c.JournalRetention))
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.RetentionSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("invalid retention schedule '%s': %v", c.RetentionSchedule, err))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && strings.TrimSpace(c.GoogleSheetName) == "" {
		errs = append(errs, "Google Sheet name is required when a spreadsheet ID is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether upload events should be published.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// SheetsEnabled reports whether the worker should export to Google Sheets.
func (c *Config) SheetsEnabled() bool { return c.GoogleSpreadsheetID != "" }

// Addr returns the listen address.
func (c *Config) Addr() string { return ":" + c.Port }

// ErrNoConfigFile is returned by WriteExample when path is empty.
var ErrNoConfigFile = errors.New("no config file path")

// WriteExample writes the defaults as YAML to path.
func WriteExample(path string) error {
	if path == "" {
		return ErrNoConfigFile
	}
	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
