package geocode

import (
	"net/http"
	"time"
)

// Nominatim's usage policy allows one request per second.
const (
	DefaultBaseURL     = "https://nominatim.openstreetmap.org"
	DefaultUserAgent   = "vacation-gallery/1.0 (reverse geocoding)"
	DefaultMinInterval = time.Second
	DefaultMaxRetries  = 3
	DefaultRetryBase   = time.Second
	DefaultCacheSize   = 10000
	DefaultCacheTTL    = 24 * time.Hour
)

// DefaultLandmarkClasses are the Nominatim classes (or types) whose named
// results are reported as a landmark.
var DefaultLandmarkClasses = []string{"attraction", "tourism", "historic", "natural"}

// Config configures a Client. Zero values fall back to the defaults above.
// A negative MinInterval disables spacing and a negative MaxRetries
// disables retries.
type Config struct {
	BaseURL         string
	UserAgent       string
	MinInterval     time.Duration
	MaxRetries      int
	RetryBase       time.Duration
	CacheSize       int
	CacheTTL        time.Duration
	LandmarkClasses []string
	HTTPClient      *http.Client
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	switch {
	case c.MinInterval == 0:
		c.MinInterval = DefaultMinInterval
	case c.MinInterval < 0:
		c.MinInterval = 0
	}
	switch {
	case c.MaxRetries == 0:
		c.MaxRetries = DefaultMaxRetries
	case c.MaxRetries < 0:
		c.MaxRetries = 0
	}
	if c.RetryBase <= 0 {
		c.RetryBase = DefaultRetryBase
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.LandmarkClasses == nil {
		c.LandmarkClasses = DefaultLandmarkClasses
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}
