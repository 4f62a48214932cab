package routepath

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// Merged is the concatenation of a route's segment geometries. Distance and
// Duration total the merged segments only; skipped ones are not counted.
type Merged struct {
	Points   []domain.Coordinate
	Skipped  []uuid.UUID
	Distance float64
	Duration float64
}

// Merge decodes the geometry of each segment, in the given order, and
// concatenates the points. The first point of every segment after the first
// non-empty one is dropped because it repeats the previous segment's last point.
//
// A segment whose geometry fails to decode is skipped with a warning; an empty
// segment list yields an empty, non-nil point list.
func Merge(log *slog.Logger, segments []domain.Segment) Merged {
	m := Merged{Points: []domain.Coordinate{}}
	for _, seg := range segments {
		points, err := DecodeGeometry(seg.Geometry)
		if err != nil {
			log.Warn("skipping segment with undecodable geometry",
				"segment_id", seg.ID,
				"route_id", seg.RouteID,
				"error", err,
			)
			m.Skipped = append(m.Skipped, seg.ID)
			continue
		}
		if len(m.Points) > 0 {
			points = points[1:]
		}
		m.Points = append(m.Points, points...)
		m.Distance += seg.Distance
		m.Duration += seg.Duration
	}
	return m
}
