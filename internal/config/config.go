// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Telemetry exporter names accepted in OTEL_EXPORTER.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

const (
	defaultSummaryHour  = 21
	defaultTimezone     = "Asia/Kolkata"
	defaultServiceName  = "daily-expense-tracker"
	defaultOTLPProtocol = "grpc"
)

// Config holds all configuration for the application.
type Config struct {
	TelegramBotToken     string
	HTTPAddr             string
	CORSAllowedOrigins   []string
	GeminiAPIKey         string
	GeminiModel          string
	LogLevel             string
	LogFormat            string
	WhitelistedUserIDs   []int64
	WhitelistedUsernames []string
	DailySummaryEnabled  bool
	SummaryHour          int
	Timezone             string
	OTelExporter         string
	OTelProtocol         string
	OTelServiceName      string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		HTTPAddr:         os.Getenv("HTTP_ADDR"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
	}

	cfg.DailySummaryEnabled = os.Getenv("DAILY_SUMMARY_ENABLED") == "true"
	cfg.SummaryHour = defaultSummaryHour
	if hourStr := os.Getenv("SUMMARY_HOUR"); hourStr != "" {
		if h, err := strconv.Atoi(hourStr); err == nil && h >= 0 && h <= 23 {
			cfg.SummaryHour = h
		}
	}
	cfg.Timezone = defaultTimezone
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.Timezone = tz
		}
	}

	cfg.OTelExporter = strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER")))
	if cfg.OTelExporter == "" {
		cfg.OTelExporter = ExporterNone
	}
	cfg.OTelProtocol = strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL")))
	if cfg.OTelProtocol == "" {
		cfg.OTelProtocol = defaultOTLPProtocol
	}
	cfg.OTelServiceName = os.Getenv("OTEL_SERVICE_NAME")
	if cfg.OTelServiceName == "" {
		cfg.OTelServiceName = defaultServiceName
	}

	cfg.WhitelistedUserIDs = parseUserIDs(os.Getenv("WHITELISTED_USER_IDS"))
	cfg.WhitelistedUsernames = parseUsernames(os.Getenv("WHITELISTED_USERNAMES"))
	cfg.CORSAllowedOrigins = parseList(os.Getenv("HTTP_CORS_ORIGINS"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseUserIDs(raw string) []int64 {
	var ids []int64
	for idStr := range strings.SplitSeq(raw, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func parseUsernames(raw string) []string {
	var names []string
	for username := range strings.SplitSeq(raw, ",") {
		username = strings.TrimPrefix(strings.TrimSpace(username), "@")
		if username == "" {
			continue
		}
		names = append(names, username)
	}
	return names
}

func parseList(raw string) []string {
	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.TelegramBotToken == "" && c.HTTPAddr == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN or HTTP_ADDR is required")
	}

	if c.TelegramBotToken != "" && len(c.WhitelistedUserIDs) == 0 && len(c.WhitelistedUsernames) == 0 {
		errs = append(errs, "at least one whitelisted user (WHITELISTED_USER_IDS or WHITELISTED_USERNAMES) is required")
	}

	switch c.OTelExporter {
	case ExporterNone, ExporterStdout, ExporterOTLP:
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER must be one of none, stdout, otlp (got %q)", c.OTelExporter))
	}

	switch c.OTelProtocol {
	case "grpc", "http/protobuf":
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER_OTLP_PROTOCOL must be grpc or http/protobuf (got %q)", c.OTelProtocol))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BotEnabled reports whether the Telegram front end should start.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// HTTPEnabled reports whether the HTTP API should start.
func (c *Config) HTTPEnabled() bool {
	return c.HTTPAddr != ""
}

// IsUserWhitelisted checks if a Telegram user ID or username is in the whitelist.
// Returns true if either the user ID or username is whitelisted.
func (c *Config) IsUserWhitelisted(userID int64, username string) bool {
	if slices.Contains(c.WhitelistedUserIDs, userID) {
		return true
	}

	if username != "" {
		username = strings.TrimPrefix(username, "@")
		for _, whitelisted := range c.WhitelistedUsernames {
			if strings.EqualFold(whitelisted, username) {
				return true
			}
		}
	}

	return false
}
