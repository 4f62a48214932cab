package routepath

import (
	"log/slog"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// Options tunes Build.
type Options struct {
	Smooth SmoothOptions
	// NoSmoothing leaves Path.Smoothed equal to Path.Points.
	NoSmoothing bool
	// Tolerance, when positive, simplifies the merged points before smoothing.
	Tolerance float64
	// AutoTolerance derives the tolerance from the path bounds when
	// Tolerance is zero.
	AutoTolerance bool
}

// Build runs the full pipeline for one route: order the segments by stop,
// merge their geometries, optionally simplify, then smooth.
func Build(log *slog.Logger, route domain.Route, opts Options) domain.Path {
	ordered, orphans := OrderSegments(route.Stops, route.Segments)
	if len(orphans) > 0 {
		log.Warn("segments reference unknown start stops",
			"route_id", route.ID,
			"segment_ids", orphans,
		)
	}

	merged := Merge(log, ordered)
	points := merged.Points
	tolerance := opts.Tolerance
	if tolerance == 0 && opts.AutoTolerance {
		if b, ok := domain.BoundsOf(points); ok {
			tolerance = ToleranceFor(b)
		}
	}
	if tolerance > 0 {
		points = Simplify(points, tolerance)
	}

	path := domain.Path{
		RouteID:         route.ID,
		Points:          points,
		Smoothed:        points,
		Distance:        merged.Distance,
		Duration:        merged.Duration,
		SkippedSegments: merged.Skipped,
	}
	if !opts.NoSmoothing {
		path.Smoothed = Smooth(points, opts.Smooth)
	}
	if b, ok := domain.BoundsOf(points); ok {
		path.Bounds = &b
	}
	return path
}
