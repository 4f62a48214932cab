// Package ors is a client for the OpenRouteService directions, isochrones
// and matrix APIs.
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/throttle"
)

const (
	DefaultBaseURL      = "https://api.openrouteservice.org"
	DefaultRequestDelay = 250 * time.Millisecond

	maxErrorBody = 4 << 10
	maxBody      = 8 << 20
)

// ErrMissingAPIKey is returned by every call when no API key is configured.
var ErrMissingAPIKey = fmt.Errorf("%w: openrouteservice API key is not set", domain.ErrConfiguration)

// Config configures a Client.
type Config struct {
	BaseURL      string
	APIKey       string
	// RequestDelay spaces requests. Zero means DefaultRequestDelay and a
	// negative value disables spacing.
	RequestDelay time.Duration
	HTTPClient   *http.Client
}

// APIError is a non-2xx answer from OpenRouteService.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openrouteservice %s: status %d: %s", e.Endpoint, e.Status, e.Body)
}

// Unwrap lets callers match provider failures with errors.Is(err, domain.ErrUpstream).
func (e *APIError) Unwrap() error {
	return domain.ErrUpstream
}

// Client calls OpenRouteService. Requests are spaced by Config.RequestDelay.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	throttle *throttle.Throttle
	log      *slog.Logger
}

// New builds a Client. A missing API key is not an error here; every call
// fails with ErrMissingAPIKey instead, so the rest of the API keeps working.
func New(cfg Config, log *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	switch {
	case cfg.RequestDelay == 0:
		cfg.RequestDelay = DefaultRequestDelay
	case cfg.RequestDelay < 0:
		cfg.RequestDelay = 0
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   strings.TrimSpace(cfg.APIKey),
		http:     cfg.HTTPClient,
		throttle: throttle.New(cfg.RequestDelay),
		log:      log,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// post sends body to /v2/{endpoint}/{profile} and decodes the answer into out.
func (c *Client) post(ctx context.Context, endpoint string, profile domain.TransportProfile, body, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	if !profile.Valid() {
		return fmt.Errorf("%w: unknown transport profile %q", domain.ErrValidation, profile)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("ors: encode %s request: %w", endpoint, err)
	}

	if err := c.throttle.Wait(ctx); err != nil {
		return err
	}

	url := c.baseURL + "/v2/" + endpoint + "/" + string(profile)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ors: build %s request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json, application/geo+json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: openrouteservice %s: %v", domain.ErrUpstream, endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		apiErr := &APIError{Endpoint: endpoint, Status: res.StatusCode, Body: strings.TrimSpace(string(raw))}
		c.log.Warn("ors: request failed", "endpoint", endpoint, "profile", profile, "status", res.StatusCode)
		return apiErr
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: openrouteservice %s: read body: %v", domain.ErrUpstream, endpoint, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: openrouteservice %s: decode body: %v", domain.ErrUpstream, endpoint, err)
	}

	c.log.Debug("ors: request done", "endpoint", endpoint, "profile", profile, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// lonLat converts coordinates to the [longitude, latitude] pairs the API expects.
func lonLat(coords []domain.Coordinate) ([][]float64, error) {
	out := make([][]float64, len(coords))
	for i, c := range coords {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: coordinate %d is out of range", domain.ErrValidation, i)
		}
		out[i] = []float64{c.Lon, c.Lat}
	}
	return out, nil
}
