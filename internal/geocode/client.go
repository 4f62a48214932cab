// Package geocode resolves coordinates to place names through Nominatim.
//
// Lookups are best effort: every failure is logged and reported as a nil
// Place, so callers can enrich photos and stops without ever failing on it.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bluele/gcache"
	"github.com/sethvargo/go-retry"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/throttle"
)

// Store is a persistent cache of earlier results keyed by bounding box.
// Lookup returns domain.ErrNotFound when no stored box contains the point.
type Store interface {
	Lookup(ctx context.Context, at domain.Coordinate) (domain.Place, error)
	Save(ctx context.Context, box domain.BBox, place domain.Place) error
}

// Client performs rate-limited reverse geocoding. It owns its throttle and
// caches, so two clients never interfere with each other.
type Client struct {
	cfg       Config
	log       *slog.Logger
	throttle  *throttle.Throttle
	cache     gcache.Cache
	store     Store
	landmarks map[string]bool
}

// Option customises a Client.
type Option func(*Client)

// WithStore adds a persistent cache consulted before the network.
func WithStore(s Store) Option {
	return func(c *Client) { c.store = s }
}

// New builds a Client from cfg.
func New(cfg Config, log *slog.Logger, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:       cfg,
		log:       log,
		throttle:  throttle.New(cfg.MinInterval),
		cache:     gcache.New(cfg.CacheSize).LRU().Expiration(cfg.CacheTTL).Build(),
		landmarks: make(map[string]bool, len(cfg.LandmarkClasses)),
	}
	for _, class := range cfg.LandmarkClasses {
		c.landmarks[strings.ToLower(strings.TrimSpace(class))] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reverse returns the place at the given coordinate, or nil when the
// coordinate is invalid, nothing is there, or the provider kept failing.
func (c *Client) Reverse(ctx context.Context, at domain.Coordinate) *domain.Place {
	if !at.Valid() {
		c.log.Warn("geocode: invalid coordinate", "lat", at.Lat, "lon", at.Lon)
		return nil
	}

	key := cacheKey(at)
	if v, err := c.cache.Get(key); err == nil {
		p := v.(domain.Place)
		return &p
	}

	if c.store != nil {
		p, err := c.store.Lookup(ctx, at)
		switch {
		case err == nil:
			p.Lat, p.Lon = at.Lat, at.Lon
			_ = c.cache.Set(key, p)
			return &p
		case !errors.Is(err, domain.ErrNotFound):
			c.log.Warn("geocode: store lookup failed", "error", err)
		}
	}

	resp, err := c.fetchWithRetry(ctx, at)
	if err != nil {
		c.log.Warn("geocode: reverse lookup failed", "lat", at.Lat, "lon", at.Lon, "error", err)
		return nil
	}

	place := resp.toPlace(at, c.landmarks)
	if place == nil {
		c.log.Debug("geocode: no address at coordinate", "lat", at.Lat, "lon", at.Lon)
		return nil
	}
	_ = c.cache.Set(key, *place)

	if c.store != nil {
		if box, ok := resp.bounds(at); ok {
			if err := c.store.Save(ctx, box, *place); err != nil {
				c.log.Warn("geocode: store save failed", "error", err)
			}
		}
	}

	c.log.Debug("geocode: resolved", "lat", at.Lat, "lon", at.Lon, "city", place.City, "country", place.Country)
	return place
}

// ReverseBatch geocodes coords one after another, honouring the minimum
// spacing between requests. The result is index-aligned with coords and
// holds nil for every lookup that failed. Once ctx is done the remaining
// entries stay nil.
func (c *Client) ReverseBatch(ctx context.Context, coords []domain.Coordinate) []*domain.Place {
	out := make([]*domain.Place, len(coords))
	for i, at := range coords {
		if ctx.Err() != nil {
			c.log.Warn("geocode: batch cancelled", "done", i, "total", len(coords))
			break
		}
		out[i] = c.Reverse(ctx, at)
	}
	return out
}

// fetchWithRetry issues the request, retrying transport errors and 5xx
// responses with exponential backoff. Every attempt waits on the throttle.
func (c *Client) fetchWithRetry(ctx context.Context, at domain.Coordinate) (nominatimResponse, error) {
	var resp nominatimResponse
	backoff := retry.WithMaxRetries(uint64(c.cfg.MaxRetries), retry.NewExponential(c.cfg.RetryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.throttle.Wait(ctx); err != nil {
			return err
		}
		r, err := c.fetch(ctx, at)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	return resp, err
}

func (c *Client) fetch(ctx context.Context, at domain.Coordinate) (nominatimResponse, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(at.Lon, 'f', 6, 64))
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/reverse?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nominatimResponse{}, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nominatimResponse{}, ctx.Err()
		}
		return nominatimResponse{}, retry.RetryableError(fmt.Errorf("nominatim request: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusInternalServerError {
		return nominatimResponse{}, retry.RetryableError(
			fmt.Errorf("%w: nominatim returned status %d", domain.ErrUpstream, res.StatusCode))
	}
	if res.StatusCode != http.StatusOK {
		return nominatimResponse{}, fmt.Errorf("%w: nominatim returned status %d", domain.ErrUpstream, res.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nominatimResponse{}, fmt.Errorf("%w: parse nominatim response: %v", domain.ErrUpstream, err)
	}
	return body, nil
}

// cacheKey rounds to five decimals (about 1 m), close enough to share results.
func cacheKey(at domain.Coordinate) string {
	return fmt.Sprintf("%.5f,%.5f", at.Lat, at.Lon)
}
