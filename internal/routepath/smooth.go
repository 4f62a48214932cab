package routepath

import (
	"math"
	"slices"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

const (
	defaultSmoothSteps     = 8
	defaultSmoothSharpness = 0.85
)

// SmoothOptions controls the Bezier spline.
// Steps is the number of samples per span between two input points;
// Sharpness in (0, 1] scales the control points towards their anchor.
type SmoothOptions struct {
	Steps     int
	Sharpness float64
}

// DefaultSmoothOptions returns 8 samples per span and sharpness 0.85.
func DefaultSmoothOptions() SmoothOptions {
	return SmoothOptions{Steps: defaultSmoothSteps, Sharpness: defaultSmoothSharpness}
}

// Smooth fits a cubic Bezier spline through points and samples it.
// Every input point is on the output curve, at index i*Steps. Inputs with
// fewer than three points have nothing to bend and are returned unchanged.
//
// Longitude is treated as x and latitude as y; the curve is for display, so
// planar interpolation is enough.
func Smooth(points []domain.Coordinate, opts SmoothOptions) []domain.Coordinate {
	n := len(points)
	if n < 3 {
		return slices.Clone(points)
	}
	steps := opts.Steps
	if steps <= 0 {
		steps = defaultSmoothSteps
	}
	sharpness := opts.Sharpness
	if sharpness <= 0 {
		sharpness = defaultSmoothSharpness
	}
	sharpness = math.Min(sharpness, 1)

	ctrlIn := make([]domain.Coordinate, n)
	ctrlOut := make([]domain.Coordinate, n)
	ctrlOut[0] = points[0]
	ctrlIn[n-1] = points[n-1]

	for i := 1; i < n-1; i++ {
		prev, cur, next := points[i-1], points[i], points[i+1]
		m1, m2 := lerp(prev, cur, 0.5), lerp(cur, next, 0.5)
		d1, d2 := planarDist(prev, cur), planarDist(cur, next)

		ratio := 0.5
		if d1+d2 > 0 {
			ratio = d1 / (d1 + d2)
		}
		pivot := lerp(m1, m2, ratio)
		offLat, offLon := cur.Lat-pivot.Lat, cur.Lon-pivot.Lon

		ctrlIn[i] = lerp(cur, domain.Coordinate{Lat: m1.Lat + offLat, Lon: m1.Lon + offLon}, sharpness)
		ctrlOut[i] = lerp(cur, domain.Coordinate{Lat: m2.Lat + offLat, Lon: m2.Lon + offLon}, sharpness)
	}

	out := make([]domain.Coordinate, 0, (n-1)*steps+1)
	for i := range n - 1 {
		for s := range steps {
			t := float64(s) / float64(steps)
			out = append(out, cubicBezier(points[i], ctrlOut[i], ctrlIn[i+1], points[i+1], t))
		}
	}
	return append(out, points[n-1])
}

func cubicBezier(p0, c1, c2, p1 domain.Coordinate, t float64) domain.Coordinate {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return domain.Coordinate{
		Lat: a*p0.Lat + b*c1.Lat + c*c2.Lat + d*p1.Lat,
		Lon: a*p0.Lon + b*c1.Lon + c*c2.Lon + d*p1.Lon,
	}
}

func lerp(a, b domain.Coordinate, t float64) domain.Coordinate {
	return domain.Coordinate{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lon: a.Lon + (b.Lon-a.Lon)*t,
	}
}

func planarDist(a, b domain.Coordinate) float64 {
	return math.Hypot(b.Lat-a.Lat, b.Lon-a.Lon)
}
