// Package config centralises configuration parsing for the exercise tracker.
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

// Supported store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config captures runtime configuration values for the exercise tracker.
type Config struct {
	HTTPAddress         string
	StoreDriver         string
	MongoURI            string
	MongoDatabase       string
	PostgresURL         string
	StoreConnectTimeout time.Duration // Bound on establishing the store connection at startup.
	ShutdownTimeout     time.Duration
	CORSAllowedOrigins  []string
	RateLimitPerMinute  int // Requests per client IP per minute; 0 disables limiting.
	LogLevel            string
	LogFormat           string
}

// Load reads an optional .env file and then environment variables into Config, applying
// defaults suitable for local dev.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddress:         getEnv("HTTP_ADDRESS", ":3000"),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:            getEnv("MONGO_URI", ""),
		MongoDatabase:       getEnv("MONGO_DATABASE", "exercise_tracker"),
		PostgresURL:         getEnv("POSTGRES_URL", ""),
		StoreConnectTimeout: getDurationEnv("STORE_CONNECT_TIMEOUT", 5*time.Second),
		ShutdownTimeout:     getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute:  getIntEnv("RATE_LIMIT_PER_MINUTE", 0),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
	}

	if port := getEnv("PORT", ""); port != "" {
		cfg.HTTPAddress = ":" + strings.TrimPrefix(port, ":")
	}
	return cfg
}

// Validate reports settings the selected store cannot start without.
func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE_DRIVER=mongo"))
		}
	case DriverPostgres:
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("POSTGRES_URL is required when STORE_DRIVER=postgres"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.StoreConnectTimeout <= 0 {
		errs = append(errs, errors.New("STORE_CONNECT_TIMEOUT must be positive"))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}
	return errors.Join(errs...)
}

// lookupEnv returns the trimmed value of key. Blank values count as unset.
func lookupEnv(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}

func getEnv(key, fallback string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}
	return fallback
}

// getDurationEnv accepts Go duration syntax ("250ms", "5s") or a bare number of seconds.
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// splitList parses a comma separated list, dropping empty items.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
