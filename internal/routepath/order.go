package routepath

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// OrderSegments returns a copy of segments sorted ascending by the
// OrderIndex of each segment's start stop. The sort is stable, so segments
// sharing a start stop keep their stored order.
//
// Segments whose start stop is not among stops cannot be placed; they are
// moved to the end and their IDs returned as orphans.
func OrderSegments(stops []domain.Stop, segments []domain.Segment) (ordered []domain.Segment, orphans []uuid.UUID) {
	index := make(map[uuid.UUID]int, len(stops))
	for _, s := range stops {
		index[s.ID] = s.OrderIndex
	}

	ordered = slices.Clone(segments)
	slices.SortStableFunc(ordered, func(a, b domain.Segment) int {
		ia, okA := index[a.StartStopID]
		ib, okB := index[b.StartStopID]
		switch {
		case okA && !okB:
			return -1
		case !okA && okB:
			return 1
		case !okA && !okB:
			return 0
		}
		return cmp.Compare(ia, ib)
	})

	for _, seg := range ordered {
		if _, ok := index[seg.StartStopID]; !ok {
			orphans = append(orphans, seg.ID)
		}
	}
	return ordered, orphans
}

// OrderStops returns a copy of stops sorted ascending by OrderIndex.
func OrderStops(stops []domain.Stop) []domain.Stop {
	out := slices.Clone(stops)
	slices.SortStableFunc(out, func(a, b domain.Stop) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})
	return out
}
