package routepath_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/routepath"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

// line returns n points stepping north-east from start by 0.01 degrees.
func line(start domain.Coordinate, n int) []domain.Coordinate {
	pts := make([]domain.Coordinate, n)
	for i := range n {
		pts[i] = domain.Coordinate{Lat: start.Lat + float64(i)*0.01, Lon: start.Lon + float64(i)*0.01}
	}
	return pts
}

func segmentFor(startStop, endStop uuid.UUID, pts []domain.Coordinate) domain.Segment {
	return domain.Segment{
		ID:          uuid.New(),
		StartStopID: startStop,
		EndStopID:   endStop,
		Geometry:    routepath.EncodeGeometry(pts, 6),
	}
}

func assertCoordsEqual(t *testing.T, want, got []domain.Coordinate) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		assert.InDelta(t, want[i].Lat, got[i].Lat, 1e-6, "lat at %d", i)
		assert.InDelta(t, want[i].Lon, got[i].Lon, 1e-6, "lon at %d", i)
	}
}
