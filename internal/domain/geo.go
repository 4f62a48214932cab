package domain

import "math"

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies within the WGS84 range.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon) &&
		c.Lat >= -90 && c.Lat <= 90 &&
		c.Lon >= -180 && c.Lon <= 180
}

// Place is the human-readable description of a coordinate as returned by
// reverse geocoding. Any field may be empty.
type Place struct {
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Landmark    string  `json:"landmark,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// IsZero reports whether p carries no place information at all.
func (p Place) IsZero() bool {
	return p.City == "" && p.State == "" && p.Country == "" &&
		p.CountryCode == "" && p.Landmark == "" && p.DisplayName == ""
}

// BBox is an axis-aligned bounding box in decimal degrees.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether c falls inside the box, edges included.
func (b BBox) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// Extend grows the box so that it contains c.
func (b BBox) Extend(c Coordinate) BBox {
	b.MinLat = math.Min(b.MinLat, c.Lat)
	b.MaxLat = math.Max(b.MaxLat, c.Lat)
	b.MinLon = math.Min(b.MinLon, c.Lon)
	b.MaxLon = math.Max(b.MaxLon, c.Lon)
	return b
}

// BoundsOf returns the bounding box of points, or false if points is empty.
func BoundsOf(points []Coordinate) (BBox, bool) {
	if len(points) == 0 {
		return BBox{}, false
	}
	b := BBox{MinLat: points[0].Lat, MaxLat: points[0].Lat, MinLon: points[0].Lon, MaxLon: points[0].Lon}
	for _, p := range points[1:] {
		b = b.Extend(p)
	}
	return b, true
}
