package service

import (
	"context"
	"fmt"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/repo"
)

// ExportService assembles a flat export of every trip, photo and tag.
type ExportService struct {
	trips  repo.TripRepo
	photos repo.PhotoRepo
	tags   repo.TagRepo
}

// NewExportService constructs an ExportService.
func NewExportService(trips repo.TripRepo, photos repo.PhotoRepo, tags repo.TagRepo) *ExportService {
	return &ExportService{trips: trips, photos: photos, tags: tags}
}

// Export returns one row per photo across all trips, trips in List order
// and photos in ListByTrip order. A trip without photos yields a single row
// with empty photo fields.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := []domain.ExportRow{}
	for _, trip := range trips {
		base := domain.ExportRow{
			TripID:        trip.ID.String(),
			TripName:      trip.Name,
			TripStartDate: trip.StartDate.Format("2006-01-02"),
		}
		if trip.EndDate != nil {
			base.TripEndDate = trip.EndDate.Format("2006-01-02")
		}

		photos, err := s.photos.ListByTrip(ctx, trip.ID)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: photos of %s: %w", trip.ID, err)
		}
		if len(photos) == 0 {
			base.Tags = []string{}
			rows = append(rows, base)
			continue
		}

		for _, p := range photos {
			tags, err := s.tags.ListByPhoto(ctx, p.ID)
			if err != nil {
				return nil, fmt.Errorf("service.ExportService.Export: tags of %s: %w", p.ID, err)
			}
			row := base
			row.PhotoFilename = p.Filename
			row.PhotoTitle = p.Title
			row.TakenAt = p.TakenAt
			row.Latitude = p.Latitude
			row.Longitude = p.Longitude
			row.City = p.Place.City
			row.Country = p.Place.Country
			row.Landmark = p.Place.Landmark
			row.Tags = make([]string, len(tags))
			for i, t := range tags {
				row.Tags[i] = t.Slug
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}
