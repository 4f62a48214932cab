package routepath

import (
	"math"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

const (
	minTolerance = 0.00001 // about 1 m
	maxTolerance = 0.001   // about 100 m
)

// Simplify drops points that deviate less than tolerance degrees from the
// line through their neighbours (Douglas-Peucker). The first and last point
// are always kept.
func Simplify(points []domain.Coordinate, tolerance float64) []domain.Coordinate {
	if len(points) <= 2 || tolerance <= 0 {
		return points
	}

	first, last := points[0], points[len(points)-1]
	maxDist, maxIdx := 0.0, 0
	for i := 1; i < len(points)-1; i++ {
		if d := perpendicularDistance(points[i], first, last); d > maxDist {
			maxDist, maxIdx = d, i
		}
	}

	if maxDist <= tolerance {
		return []domain.Coordinate{first, last}
	}

	left := Simplify(points[:maxIdx+1], tolerance)
	right := Simplify(points[maxIdx:], tolerance)

	out := make([]domain.Coordinate, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	return append(out, right...)
}

// ToleranceFor picks a simplification tolerance for a viewport: 0.1% of its
// smaller side, clamped to roughly 1–100 m.
func ToleranceFor(b domain.BBox) float64 {
	span := math.Min(b.MaxLat-b.MinLat, b.MaxLon-b.MinLon)
	return math.Max(minTolerance, math.Min(maxTolerance, span*0.001))
}

func perpendicularDistance(p, a, b domain.Coordinate) float64 {
	dx, dy := b.Lon-a.Lon, b.Lat-a.Lat
	if dx == 0 && dy == 0 {
		return math.Hypot(p.Lon-a.Lon, p.Lat-a.Lat)
	}
	num := math.Abs(dy*p.Lon - dx*p.Lat + b.Lon*a.Lat - b.Lat*a.Lon)
	return num / math.Hypot(dx, dy)
}
