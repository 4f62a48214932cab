package ors

import (
	"context"
	"fmt"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// Matrix metrics.
const (
	MetricDuration = "duration"
	MetricDistance = "distance"
)

// MatrixRequest asks for travel costs between Locations. Sources and
// Destinations index into Locations; empty means all of them.
type MatrixRequest struct {
	Locations    []domain.Coordinate `json:"locations"`
	Sources      []int               `json:"sources,omitempty"`
	Destinations []int               `json:"destinations,omitempty"`
	Metrics      []string            `json:"metrics,omitempty"`
}

// Matrix holds one row per source and one column per destination.
// A nil cell means the pair could not be routed.
type Matrix struct {
	Durations    [][]*float64     `json:"durations,omitempty"`
	Distances    [][]*float64     `json:"distances,omitempty"`
	Sources      []MatrixLocation `json:"sources,omitempty"`
	Destinations []MatrixLocation `json:"destinations,omitempty"`
}

// MatrixLocation is an input location snapped to the road network.
type MatrixLocation struct {
	Location        domain.Coordinate `json:"location"`
	SnappedDistance float64           `json:"snapped_distance"`
}

type matrixBody struct {
	Locations    [][]float64 `json:"locations"`
	Sources      []int       `json:"sources,omitempty"`
	Destinations []int       `json:"destinations,omitempty"`
	Metrics      []string    `json:"metrics"`
}

type matrixLocationWire struct {
	Location        []float64 `json:"location"`
	SnappedDistance float64   `json:"snapped_distance"`
}

type matrixResponse struct {
	Durations    [][]*float64         `json:"durations"`
	Distances    [][]*float64         `json:"distances"`
	Sources      []matrixLocationWire `json:"sources"`
	Destinations []matrixLocationWire `json:"destinations"`
}

// Matrix computes the duration and/or distance matrix for req.
func (c *Client) Matrix(ctx context.Context, profile domain.TransportProfile, req MatrixRequest) (Matrix, error) {
	if err := req.validate(); err != nil {
		return Matrix{}, err
	}
	locations, err := lonLat(req.Locations)
	if err != nil {
		return Matrix{}, err
	}
	body := matrixBody{
		Locations:    locations,
		Sources:      req.Sources,
		Destinations: req.Destinations,
		Metrics:      req.Metrics,
	}
	if len(body.Metrics) == 0 {
		body.Metrics = []string{MetricDuration}
	}

	var resp matrixResponse
	if err := c.post(ctx, "matrix", profile, body, &resp); err != nil {
		return Matrix{}, err
	}
	return Matrix{
		Durations:    resp.Durations,
		Distances:    resp.Distances,
		Sources:      matrixLocations(resp.Sources),
		Destinations: matrixLocations(resp.Destinations),
	}, nil
}

func (r MatrixRequest) validate() error {
	if len(r.Locations) < 2 {
		return fmt.Errorf("%w: matrix needs at least 2 locations", domain.ErrValidation)
	}
	for _, idx := range append(append([]int{}, r.Sources...), r.Destinations...) {
		if idx < 0 || idx >= len(r.Locations) {
			return fmt.Errorf("%w: location index %d is out of range", domain.ErrValidation, idx)
		}
	}
	for _, m := range r.Metrics {
		if m != MetricDuration && m != MetricDistance {
			return fmt.Errorf("%w: unknown metric %q", domain.ErrValidation, m)
		}
	}
	return nil
}

func matrixLocations(in []matrixLocationWire) []MatrixLocation {
	if len(in) == 0 {
		return nil
	}
	out := make([]MatrixLocation, 0, len(in))
	for _, l := range in {
		if len(l.Location) < 2 {
			continue
		}
		out = append(out, MatrixLocation{
			Location:        domain.Coordinate{Lat: l.Location[1], Lon: l.Location[0]},
			SnappedDistance: l.SnappedDistance,
		})
	}
	return out
}
