// Package routepath turns a stored route into a single drawable path:
// segments are ordered by their start stop, their geometries decoded and
// concatenated, and the result smoothed into a curve for the map.
package routepath

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-polyline"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// Precision markers may prefix an encoded polyline. Digits are outside the
// polyline alphabet (ASCII 63-126), so a leading digit is never payload.
const (
	MarkerPrecision5 = '5'
	MarkerPrecision6 = '6'
)

// ErrEmptyGeometry is returned when a geometry decodes to no points.
var ErrEmptyGeometry = errors.New("routepath: empty geometry")

// DecodeGeometry decodes a stored segment geometry into lat/lon points.
//
//   - a JSON object is GeoJSON (a LineString or MultiLineString geometry,
//     or a Feature wrapping one); positions are [lon, lat]. '{' is also a
//     polyline character, so only valid JSON takes this branch
//   - a leading '6' selects a precision-6 polyline
//   - a leading '5', or no marker at all, selects a precision-5 polyline
func DecodeGeometry(geometry string) ([]domain.Coordinate, error) {
	s := strings.TrimSpace(geometry)
	if s == "" {
		return nil, ErrEmptyGeometry
	}
	if s[0] == '{' && json.Valid([]byte(s)) {
		return decodeGeoJSON([]byte(s))
	}
	switch s[0] {
	case MarkerPrecision6:
		return decodePolyline(s[1:], 1e6)
	case MarkerPrecision5:
		return decodePolyline(s[1:], 1e5)
	}
	return decodePolyline(s, 1e5)
}

// EncodeGeometry encodes points as a polyline of the given precision (5 or 6).
// Precision 6 output carries the MarkerPrecision6 prefix; precision 5 output
// is left unmarked so it stays readable by any polyline decoder.
func EncodeGeometry(points []domain.Coordinate, precision int) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lon}
	}
	if precision == 6 {
		codec := polyline.Codec{Dim: 2, Scale: 1e6}
		return string(MarkerPrecision6) + string(codec.EncodeCoords(nil, coords))
	}
	return string(polyline.EncodeCoords(coords))
}

func decodePolyline(s string, scale float64) ([]domain.Coordinate, error) {
	codec := polyline.Codec{Dim: 2, Scale: scale}
	coords, rest, err := codec.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("routepath: decode polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("routepath: decode polyline: %d trailing bytes", len(rest))
	}
	if len(coords) == 0 {
		return nil, ErrEmptyGeometry
	}
	points := make([]domain.Coordinate, len(coords))
	for i, c := range coords {
		points[i] = domain.Coordinate{Lat: c[0], Lon: c[1]}
	}
	return points, nil
}

func decodeGeoJSON(data []byte) ([]domain.Coordinate, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("routepath: decode geojson: %w", err)
	}

	var g geom.T
	if probe.Type == "Feature" {
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("routepath: decode geojson feature: %w", err)
		}
		g = f.Geometry
	} else if err := geojson.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("routepath: decode geojson: %w", err)
	}

	var points []domain.Coordinate
	switch g := g.(type) {
	case *geom.LineString:
		points = swapLonLat(g.Coords())
	case *geom.MultiLineString:
		for i := range g.NumLineStrings() {
			points = append(points, swapLonLat(g.LineString(i).Coords())...)
		}
	default:
		return nil, fmt.Errorf("routepath: unsupported geojson geometry %T", g)
	}
	if len(points) == 0 {
		return nil, ErrEmptyGeometry
	}
	return points, nil
}

// swapLonLat converts GeoJSON [lon, lat(, alt)] positions to coordinates.
func swapLonLat(coords []geom.Coord) []domain.Coordinate {
	points := make([]domain.Coordinate, len(coords))
	for i, c := range coords {
		points[i] = domain.Coordinate{Lat: c.Y(), Lon: c.X()}
	}
	return points
}
