package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	// StatsTimezone is the IANA zone used to turn instants into day keys.
	StatsTimezone string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	AIMaxTokens   int
	AITemperature float64

	MaintenanceWorkerCount int
	MaintenanceQueueSize   int
	// MaintenanceAt is the daily HH:MM time for stats verification.
	MaintenanceAt string
	// MaintenancePruneStats adds the retention cleanup to the nightly pass. Off by default.
	MaintenancePruneStats bool
	// ReviewRefreshMinutes is the interval of the background review sweep; 0 disables it.
	ReviewRefreshMinutes int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                   envOr("ADDR", ":8080"),
		DBPath:                 envOr("DB_PATH", "file:neurobank.db"),
		LogLevel:               envOr("LOG_LEVEL", "INFO"),
		StatsTimezone:          envOr("STATS_TIMEZONE", "UTC"),
		OpenAIAPIKey:           envOr("OPENAI_API_KEY", ""),
		OpenAIModel:            envOr("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL:          envOr("OPENAI_BASE_URL", ""),
		AIMaxTokens:            envIntOr("AI_MAX_TOKENS", 2000),
		AITemperature:          envFloatOr("AI_TEMPERATURE", 0.7),
		MaintenanceWorkerCount: envIntOr("MAINTENANCE_WORKER_COUNT", 2),
		MaintenanceQueueSize:   envIntOr("MAINTENANCE_QUEUE_SIZE", 64),
		MaintenanceAt:          envOr("MAINTENANCE_AT", "03:00"),
		MaintenancePruneStats:  envBoolOr("MAINTENANCE_PRUNE_STATS", false),
		ReviewRefreshMinutes:   envIntOr("REVIEW_REFRESH_MINUTES", 15),
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", c.LogLevel))
	}
	if _, err := time.LoadLocation(c.StatsTimezone); err != nil || c.StatsTimezone == "" {
		problems = append(problems, fmt.Sprintf("STATS_TIMEZONE is not a known timezone: %q", c.StatsTimezone))
	}
	if c.AIMaxTokens <= 0 {
		problems = append(problems, "AI_MAX_TOKENS must be positive")
	}
	if c.AITemperature < 0 || c.AITemperature > 2 {
		problems = append(problems, "AI_TEMPERATURE must be between 0 and 2")
	}
	if c.MaintenanceWorkerCount <= 0 {
		problems = append(problems, "MAINTENANCE_WORKER_COUNT must be positive")
	}
	if c.MaintenanceQueueSize <= 0 {
		problems = append(problems, "MAINTENANCE_QUEUE_SIZE must be positive")
	}
	if _, err := time.Parse("15:04", c.MaintenanceAt); err != nil {
		problems = append(problems, fmt.Sprintf("MAINTENANCE_AT must be HH:MM, got %q", c.MaintenanceAt))
	}
	if c.ReviewRefreshMinutes < 0 {
		problems = append(problems, "REVIEW_REFRESH_MINUTES cannot be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves StatsTimezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StatsTimezone)
	if err != nil || c.StatsTimezone == "" {
		return time.UTC
	}
	return loc
}

// AIEnabled reports whether an API key is configured for text generation.
func (c Config) AIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
