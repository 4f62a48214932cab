package routepath_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/routepath"
)

func TestOrderSegments_SortsByStartStopOrderIndex(t *testing.T) {
	stops := []domain.Stop{
		{ID: uuid.New(), OrderIndex: 2},
		{ID: uuid.New(), OrderIndex: 0},
		{ID: uuid.New(), OrderIndex: 1},
	}
	end := uuid.New()
	// Stored in the same scrambled order as the stops.
	segments := []domain.Segment{
		{ID: uuid.New(), StartStopID: stops[0].ID, EndStopID: end},
		{ID: uuid.New(), StartStopID: stops[1].ID, EndStopID: stops[2].ID},
		{ID: uuid.New(), StartStopID: stops[2].ID, EndStopID: stops[0].ID},
	}

	ordered, orphans := routepath.OrderSegments(stops, segments)

	require.Len(t, ordered, 3)
	assert.Empty(t, orphans)
	assert.Equal(t, segments[1].ID, ordered[0].ID, "order_index 0 first")
	assert.Equal(t, segments[2].ID, ordered[1].ID, "order_index 1 second")
	assert.Equal(t, segments[0].ID, ordered[2].ID, "order_index 2 last")
}

func TestOrderSegments_DoesNotMutateInput(t *testing.T) {
	stops := []domain.Stop{{ID: uuid.New(), OrderIndex: 1}, {ID: uuid.New(), OrderIndex: 0}}
	segments := []domain.Segment{
		{ID: uuid.New(), StartStopID: stops[0].ID},
		{ID: uuid.New(), StartStopID: stops[1].ID},
	}
	first := segments[0].ID

	routepath.OrderSegments(stops, segments)

	assert.Equal(t, first, segments[0].ID)
}

func TestOrderSegments_UnknownStartStopGoesLast(t *testing.T) {
	stops := []domain.Stop{{ID: uuid.New(), OrderIndex: 0}, {ID: uuid.New(), OrderIndex: 1}}
	orphan := domain.Segment{ID: uuid.New(), StartStopID: uuid.New()}
	known := domain.Segment{ID: uuid.New(), StartStopID: stops[0].ID}

	ordered, orphans := routepath.OrderSegments(stops, []domain.Segment{orphan, known})

	require.Len(t, ordered, 2)
	assert.Equal(t, known.ID, ordered[0].ID)
	assert.Equal(t, orphan.ID, ordered[1].ID)
	assert.Equal(t, []uuid.UUID{orphan.ID}, orphans)
}

func TestOrderSegments_Empty(t *testing.T) {
	ordered, orphans := routepath.OrderSegments(nil, nil)

	assert.Empty(t, ordered)
	assert.Empty(t, orphans)
}

func TestOrderStops(t *testing.T) {
	stops := []domain.Stop{{Title: "c", OrderIndex: 2}, {Title: "a", OrderIndex: 0}, {Title: "b", OrderIndex: 1}}

	got := routepath.OrderStops(stops)

	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Title, got[1].Title, got[2].Title})
	assert.Equal(t, "c", stops[0].Title, "input untouched")
}
