package ors

import (
	"context"
	"fmt"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// Directions is the parsed answer of the directions endpoint.
type Directions struct {
	Routes []DirectionsRoute `json:"routes"`
	BBox   *domain.BBox      `json:"bbox,omitempty"`
}

// DirectionsRoute is one routed alternative. Geometry is an encoded
// polyline at precision 5. Legs has one entry per pair of consecutive
// input coordinates.
type DirectionsRoute struct {
	Distance  float64 `json:"distance"`
	Duration  float64 `json:"duration"`
	Geometry  string  `json:"geometry"`
	Legs      []Leg   `json:"legs"`
	WayPoints []int   `json:"way_points,omitempty"`
}

// Leg is the part of a route between two consecutive input coordinates.
type Leg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Steps    []Step  `json:"steps,omitempty"`
}

// Step is a single turn-by-turn instruction.
type Step struct {
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
	Type        int     `json:"type"`
	Instruction string  `json:"instruction"`
	Name        string  `json:"name,omitempty"`
	WayPoints   []int   `json:"way_points,omitempty"`
}

type directionsRequest struct {
	Coordinates  [][]float64 `json:"coordinates"`
	Instructions bool        `json:"instructions"`
	Geometry     bool        `json:"geometry"`
	Units        string      `json:"units"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
			Steps    []Step  `json:"steps"`
		} `json:"segments"`
		Geometry  string `json:"geometry"`
		WayPoints []int  `json:"way_points"`
	} `json:"routes"`
	BBox []float64 `json:"bbox"`
}

// Directions routes through coords in order using profile.
func (c *Client) Directions(ctx context.Context, profile domain.TransportProfile, coords []domain.Coordinate) (Directions, error) {
	if len(coords) < 2 {
		return Directions{}, fmt.Errorf("%w: directions need at least 2 coordinates", domain.ErrValidation)
	}
	pairs, err := lonLat(coords)
	if err != nil {
		return Directions{}, err
	}

	var resp directionsResponse
	req := directionsRequest{Coordinates: pairs, Instructions: true, Geometry: true, Units: "m"}
	if err := c.post(ctx, "directions", profile, req, &resp); err != nil {
		return Directions{}, err
	}
	if len(resp.Routes) == 0 {
		return Directions{}, fmt.Errorf("%w: openrouteservice directions: no route returned", domain.ErrUpstream)
	}

	out := Directions{Routes: make([]DirectionsRoute, 0, len(resp.Routes)), BBox: bboxFrom(resp.BBox)}
	for _, r := range resp.Routes {
		route := DirectionsRoute{
			Distance:  r.Summary.Distance,
			Duration:  r.Summary.Duration,
			Geometry:  r.Geometry,
			WayPoints: r.WayPoints,
			Legs:      make([]Leg, 0, len(r.Segments)),
		}
		for _, s := range r.Segments {
			route.Legs = append(route.Legs, Leg{Distance: s.Distance, Duration: s.Duration, Steps: s.Steps})
		}
		out.Routes = append(out.Routes, route)
	}
	return out, nil
}

// bboxFrom converts ORS [minLon, minLat, maxLon, maxLat] (optionally with
// elevation as a 6-element box) to a BBox.
func bboxFrom(v []float64) *domain.BBox {
	switch len(v) {
	case 4:
		return &domain.BBox{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}
	case 6:
		return &domain.BBox{MinLon: v[0], MinLat: v[1], MaxLon: v[3], MaxLat: v[4]}
	default:
		return nil
	}
}
