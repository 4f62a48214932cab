// Package config loads and validates application configuration.
//
// Values come from an optional YAML file named by CONFIG_FILE and from
// environment variables. The environment wins over the file, and the file
// wins over the built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/vacation-gallery/internal/geocode"
	"github.com/pkordes/vacation-gallery/internal/ors"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `yaml:"database_url"`

	// LogLevel is one of debug, info, warn, error. Defaults to "info".
	LogLevel string `yaml:"log_level"`

	// LogFile, when set, receives a copy of the log with size-based rotation.
	LogFile string `yaml:"log_file"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string `yaml:"cors_origins"`

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// MigrateOnStart applies pending migrations before serving. Defaults to true.
	MigrateOnStart bool `yaml:"migrate_on_start"`

	Geocoder Geocoder `yaml:"geocoder"`
	ORS      ORS      `yaml:"openrouteservice"`
}

// Geocoder configures the Nominatim client.
type Geocoder struct {
	BaseURL         string        `yaml:"base_url"`
	UserAgent       string        `yaml:"user_agent"`
	MinInterval     time.Duration `yaml:"min_interval"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryBase       time.Duration `yaml:"retry_base"`
	CacheSize       int           `yaml:"cache_size"`
	LandmarkClasses []string      `yaml:"landmark_classes"`
}

// ORS configures the OpenRouteService client. An empty APIKey leaves
// routing disabled; the rest of the API still works.
type ORS struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	RequestDelay time.Duration `yaml:"request_delay"`
}

func defaults() Config {
	return Config{
		Port:           "8080",
		LogLevel:       "info",
		CORSOrigins:    []string{"http://localhost:5173"},
		MaxBodyBytes:   1 << 20,
		MigrateOnStart: true,
		Geocoder: Geocoder{
			BaseURL:     geocode.DefaultBaseURL,
			UserAgent:   geocode.DefaultUserAgent,
			MinInterval: geocode.DefaultMinInterval,
			MaxRetries:  geocode.DefaultMaxRetries,
			RetryBase:   geocode.DefaultRetryBase,
			CacheSize:   geocode.DefaultCacheSize,
		},
		ORS: ORS{
			BaseURL:      ors.DefaultBaseURL,
			RequestDelay: ors.DefaultRequestDelay,
		},
	}
}

// Load builds a Config from defaults, CONFIG_FILE and the environment.
// It returns an error naming every invalid or missing value.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	e := envReader{}
	cfg.Port = e.str("PORT", cfg.Port)
	cfg.DatabaseURL = e.str("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = e.str("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = e.str("LOG_FILE", cfg.LogFile)
	cfg.CORSOrigins = e.list("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.MaxBodyBytes = e.int64("MAX_BODY_BYTES", cfg.MaxBodyBytes)
	cfg.MigrateOnStart = e.bool("MIGRATE_ON_START", cfg.MigrateOnStart)

	cfg.Geocoder.BaseURL = e.str("GEOCODER_BASE_URL", cfg.Geocoder.BaseURL)
	cfg.Geocoder.UserAgent = e.str("GEOCODER_USER_AGENT", cfg.Geocoder.UserAgent)
	cfg.Geocoder.MinInterval = e.duration("GEOCODER_MIN_INTERVAL", cfg.Geocoder.MinInterval)
	cfg.Geocoder.MaxRetries = int(e.int64("GEOCODER_MAX_RETRIES", int64(cfg.Geocoder.MaxRetries)))
	cfg.Geocoder.RetryBase = e.duration("GEOCODER_RETRY_BASE", cfg.Geocoder.RetryBase)
	cfg.Geocoder.CacheSize = int(e.int64("GEOCODER_CACHE_SIZE", int64(cfg.Geocoder.CacheSize)))
	cfg.Geocoder.LandmarkClasses = e.list("GEOCODER_LANDMARK_CLASSES", cfg.Geocoder.LandmarkClasses)

	cfg.ORS.BaseURL = e.str("ORS_BASE_URL", cfg.ORS.BaseURL)
	cfg.ORS.APIKey = e.str("ORS_API_KEY", cfg.ORS.APIKey)
	cfg.ORS.RequestDelay = e.duration("ORS_REQUEST_DELAY", cfg.ORS.RequestDelay)

	if cfg.DatabaseURL == "" {
		e.problems = append(e.problems, "DATABASE_URL is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		e.problems = append(e.problems, "MAX_BODY_BYTES must be positive")
	}
	if len(e.problems) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(e.problems, "; "))
	}
	return cfg, nil
}

// envReader reads typed environment variables, keeping fallback when a
// variable is unset or empty and collecting parse problems.
type envReader struct {
	problems []string
}

func (e *envReader) str(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (e *envReader) list(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return splitCSV(v)
}

func (e *envReader) int64(key string, fallback int64) int64 {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		e.problems = append(e.problems, fmt.Sprintf("%s must be a non-negative integer, got %q", key, v))
		return fallback
	}
	return n
}

func (e *envReader) bool(key string, fallback bool) bool {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.problems = append(e.problems, fmt.Sprintf("%s must be a boolean, got %q", key, v))
		return fallback
	}
	return b
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		e.problems = append(e.problems, fmt.Sprintf("%s must be a duration such as 1s or 250ms, got %q", key, v))
		return fallback
	}
	return d
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
