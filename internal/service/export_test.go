package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/service"
)

// ---- helpers ---------------------------------------------------------------

func exportTrip(name string, start time.Time) domain.Trip {
	return domain.Trip{ID: uuid.New(), Name: name, StartDate: start}
}

func exportPhoto(tripID uuid.UUID, filename string) domain.Photo {
	taken := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	return domain.Photo{
		ID:        uuid.New(),
		TripID:    tripID,
		Filename:  filename,
		Title:     "Miradouro",
		TakenAt:   &taken,
		Latitude:  ptr(38.7139),
		Longitude: ptr(-9.1334),
		Place:     domain.Place{City: "Lisbon", Country: "Portugal", Landmark: "Castelo de São Jorge"},
	}
}

func exportRepos(trips []domain.Trip, photos map[uuid.UUID][]domain.Photo, tags map[uuid.UUID][]domain.Tag) *service.ExportService {
	return service.NewExportService(
		&mockTripRepo{
			list: func(_ context.Context) ([]domain.Trip, error) { return trips, nil },
		},
		&mockPhotoRepo{
			listByTrip: func(_ context.Context, id uuid.UUID) ([]domain.Photo, error) { return photos[id], nil },
		},
		&mockTagRepo{
			listByPhoto: func(_ context.Context, id uuid.UUID) ([]domain.Tag, error) { return tags[id], nil },
		},
	)
}

// ---- Export ----------------------------------------------------------------

func TestExportService_Export_PhotoWithTags(t *testing.T) {
	trip := exportTrip("Lisbon", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	end := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	trip.EndDate = &end
	photo := exportPhoto(trip.ID, "IMG_0001.jpg")

	svc := exportRepos(
		[]domain.Trip{trip},
		map[uuid.UUID][]domain.Photo{trip.ID: {photo}},
		map[uuid.UUID][]domain.Tag{photo.ID: {{Slug: "castle"}, {Slug: "view"}}},
	)

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, trip.ID.String(), r.TripID)
	assert.Equal(t, "2025-06-01", r.TripStartDate)
	assert.Equal(t, "2025-06-08", r.TripEndDate)
	assert.Equal(t, "IMG_0001.jpg", r.PhotoFilename)
	assert.Equal(t, "Lisbon", r.City)
	assert.Equal(t, "Castelo de São Jorge", r.Landmark)
	assert.Equal(t, []string{"castle", "view"}, r.Tags)
	require.NotNil(t, r.Latitude)
	assert.InDelta(t, 38.7139, *r.Latitude, 1e-9)
}

func TestExportService_Export_TripWithoutPhotos(t *testing.T) {
	trip := exportTrip("Planned", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	svc := exportRepos([]domain.Trip{trip}, nil, nil)

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Planned", rows[0].TripName)
	assert.Empty(t, rows[0].TripEndDate)
	assert.Empty(t, rows[0].PhotoFilename)
	assert.NotNil(t, rows[0].Tags)
	assert.Empty(t, rows[0].Tags)
}

func TestExportService_Export_OneRowPerPhotoInOrder(t *testing.T) {
	a := exportTrip("A", time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	b := exportTrip("B", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	p1, p2, p3 := exportPhoto(a.ID, "1.jpg"), exportPhoto(a.ID, "2.jpg"), exportPhoto(b.ID, "3.jpg")

	svc := exportRepos(
		[]domain.Trip{a, b},
		map[uuid.UUID][]domain.Photo{a.ID: {p1, p2}, b.ID: {p3}},
		nil,
	)

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1.jpg", "2.jpg", "3.jpg"},
		[]string{rows[0].PhotoFilename, rows[1].PhotoFilename, rows[2].PhotoFilename})
	assert.Equal(t, "B", rows[2].TripName)
	assert.Empty(t, rows[0].Tags)
}

func TestExportService_Export_Empty(t *testing.T) {
	svc := exportRepos(nil, nil, nil)

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExportService_Export_RepoError(t *testing.T) {
	boom := errors.New("tags offline")
	trip := exportTrip("A", time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	photo := exportPhoto(trip.ID, "1.jpg")
	svc := service.NewExportService(
		&mockTripRepo{list: func(_ context.Context) ([]domain.Trip, error) { return []domain.Trip{trip}, nil }},
		&mockPhotoRepo{listByTrip: func(_ context.Context, _ uuid.UUID) ([]domain.Photo, error) { return []domain.Photo{photo}, nil }},
		&mockTagRepo{listByPhoto: func(_ context.Context, _ uuid.UUID) ([]domain.Tag, error) { return nil, boom }},
	)

	_, err := svc.Export(context.Background())

	assert.ErrorIs(t, err, boom)
}
