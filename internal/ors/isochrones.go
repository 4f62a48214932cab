package ors

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// Range types accepted by the isochrones endpoint.
const (
	RangeTime     = "time"
	RangeDistance = "distance"
)

// IsochroneRequest asks for reachability polygons around Locations.
// Range values are seconds for RangeTime and metres for RangeDistance.
type IsochroneRequest struct {
	Locations []domain.Coordinate `json:"locations"`
	Range     []float64           `json:"range"`
	RangeType string              `json:"range_type,omitempty"`
	Interval  float64             `json:"interval,omitempty"`
}

// Isochrone is one reachability polygon. Rings[0] is the outer boundary.
type Isochrone struct {
	GroupIndex int                   `json:"group_index"`
	Value      float64               `json:"value"`
	Center     *domain.Coordinate    `json:"center,omitempty"`
	Rings      [][]domain.Coordinate `json:"rings"`
}

type isochroneBody struct {
	Locations [][]float64 `json:"locations"`
	Range     []float64   `json:"range"`
	RangeType string      `json:"range_type"`
	Interval  float64     `json:"interval,omitempty"`
}

// Isochrones returns the reachability polygons for req, one per location
// and range value.
func (c *Client) Isochrones(ctx context.Context, profile domain.TransportProfile, req IsochroneRequest) ([]Isochrone, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	locations, err := lonLat(req.Locations)
	if err != nil {
		return nil, err
	}
	body := isochroneBody{Locations: locations, Range: req.Range, RangeType: req.RangeType, Interval: req.Interval}
	if body.RangeType == "" {
		body.RangeType = RangeTime
	}

	var raw json.RawMessage
	if err := c.post(ctx, "isochrones", profile, body, &raw); err != nil {
		return nil, err
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("%w: openrouteservice isochrones: decode features: %v", domain.ErrUpstream, err)
	}

	out := make([]Isochrone, 0, len(fc.Features))
	for _, f := range fc.Features {
		iso, ok := isochroneFrom(f)
		if !ok {
			c.log.Warn("ors: skipping isochrone feature without polygon geometry")
			continue
		}
		out = append(out, iso)
	}
	return out, nil
}

func (r IsochroneRequest) validate() error {
	if len(r.Locations) == 0 {
		return fmt.Errorf("%w: isochrones need at least 1 location", domain.ErrValidation)
	}
	if len(r.Range) == 0 {
		return fmt.Errorf("%w: isochrones need at least 1 range value", domain.ErrValidation)
	}
	for _, v := range r.Range {
		if v <= 0 {
			return fmt.Errorf("%w: range values must be positive", domain.ErrValidation)
		}
	}
	switch r.RangeType {
	case "", RangeTime, RangeDistance:
	default:
		return fmt.Errorf("%w: range_type must be %q or %q", domain.ErrValidation, RangeTime, RangeDistance)
	}
	return nil
}

func isochroneFrom(f *geojson.Feature) (Isochrone, bool) {
	poly, ok := f.Geometry.(*geom.Polygon)
	if !ok {
		return Isochrone{}, false
	}
	iso := Isochrone{Rings: make([][]domain.Coordinate, 0, poly.NumLinearRings())}
	for i := 0; i < poly.NumLinearRings(); i++ {
		coords := poly.LinearRing(i).Coords()
		ring := make([]domain.Coordinate, len(coords))
		for j, c := range coords {
			ring[j] = domain.Coordinate{Lat: c.Y(), Lon: c.X()}
		}
		iso.Rings = append(iso.Rings, ring)
	}

	if v, ok := f.Properties["value"].(float64); ok {
		iso.Value = v
	}
	if v, ok := f.Properties["group_index"].(float64); ok {
		iso.GroupIndex = int(v)
	}
	if center, ok := f.Properties["center"].([]any); ok && len(center) >= 2 {
		lon, okLon := center[0].(float64)
		lat, okLat := center[1].(float64)
		if okLon && okLat {
			iso.Center = &domain.Coordinate{Lat: lat, Lon: lon}
		}
	}
	return iso, true
}
