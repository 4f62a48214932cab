package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/repo"
)

// PhotoService implements business logic for Photos. Photos with a position
// and no place are reverse geocoded on write. A failed lookup never fails
// the write.
type PhotoService struct {
	trips    repo.TripRepo
	photos   repo.PhotoRepo
	geocoder Geocoder
	log      *slog.Logger
}

// NewPhotoService constructs a PhotoService. geocoder may be nil to disable
// enrichment.
func NewPhotoService(trips repo.TripRepo, photos repo.PhotoRepo, geocoder Geocoder, log *slog.Logger) *PhotoService {
	return &PhotoService{trips: trips, photos: photos, geocoder: geocoder, log: log}
}

// EnrichResult reports what a batch enrichment did.
type EnrichResult struct {
	Checked  int `json:"checked"`
	Resolved int `json:"resolved"`
}

// Create validates the photo, checks the parent trip, fills in the place
// when possible, then persists.
func (s *PhotoService) Create(ctx context.Context, photo domain.Photo) (domain.Photo, error) {
	if _, err := s.trips.GetByID(ctx, photo.TripID); err != nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.Create: %w", err)
	}
	photo.Filename = strings.TrimSpace(photo.Filename)
	if err := validatePhoto(photo); err != nil {
		return domain.Photo{}, err
	}

	s.enrich(ctx, &photo)

	result, err := s.photos.Create(ctx, photo)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a photo of tripID.
func (s *PhotoService) GetByID(ctx context.Context, tripID, photoID uuid.UUID) (domain.Photo, error) {
	result, err := s.photos.GetByID(ctx, tripID, photoID)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.GetByID: %w", err)
	}
	return result, nil
}

// ListByTrip returns every photo of a trip. Returns domain.ErrNotFound for
// an unknown trip rather than an empty list.
func (s *PhotoService) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Photo, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.PhotoService.ListByTrip: %w", err)
	}
	result, err := s.photos.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.PhotoService.ListByTrip: %w", err)
	}
	if result == nil {
		result = []domain.Photo{}
	}
	return result, nil
}

// ListByTripPaged returns one page of a trip's photos.
func (s *PhotoService) ListByTripPaged(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Photo], error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return domain.Page[domain.Photo]{}, fmt.Errorf("service.PhotoService.ListByTripPaged: %w", err)
	}
	items, total, err := s.photos.ListByTripPaged(ctx, tripID, p)
	if err != nil {
		return domain.Page[domain.Photo]{}, fmt.Errorf("service.PhotoService.ListByTripPaged: %w", err)
	}
	if items == nil {
		items = []domain.Photo{}
	}
	return domain.Page[domain.Photo]{Items: items, Total: total}, nil
}

// Update overwrites the user-editable fields of a photo. The stored place
// is kept while the position is unchanged and recomputed when it moves.
func (s *PhotoService) Update(ctx context.Context, photo domain.Photo) (domain.Photo, error) {
	existing, err := s.photos.GetByID(ctx, photo.TripID, photo.ID)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.Update: %w", err)
	}
	photo.Filename = strings.TrimSpace(photo.Filename)
	if err := validatePhoto(photo); err != nil {
		return domain.Photo{}, err
	}

	if samePosition(existing, photo) {
		photo.Place = existing.Place
	} else {
		photo.Place = domain.Place{}
		s.enrich(ctx, &photo)
	}

	result, err := s.photos.Update(ctx, photo)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a photo of tripID.
func (s *PhotoService) Delete(ctx context.Context, tripID, photoID uuid.UUID) error {
	if err := s.photos.Delete(ctx, tripID, photoID); err != nil {
		return fmt.Errorf("service.PhotoService.Delete: %w", err)
	}
	return nil
}

// EnrichTrip geocodes every photo of the trip that has a position but no
// place. Lookups run one after another through the geocoder's rate limit.
func (s *PhotoService) EnrichTrip(ctx context.Context, tripID uuid.UUID) (EnrichResult, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return EnrichResult{}, fmt.Errorf("service.PhotoService.EnrichTrip: %w", err)
	}
	pending, err := s.photos.ListMissingPlace(ctx, tripID)
	if err != nil {
		return EnrichResult{}, fmt.Errorf("service.PhotoService.EnrichTrip: %w", err)
	}
	result := EnrichResult{Checked: len(pending)}
	if len(pending) == 0 || s.geocoder == nil {
		return result, nil
	}

	coords := make([]domain.Coordinate, len(pending))
	for i, p := range pending {
		coords[i], _ = p.Coordinate()
	}
	places := s.geocoder.ReverseBatch(ctx, coords)

	for i, place := range places {
		if place == nil || place.IsZero() {
			continue
		}
		if err := s.photos.UpdatePlace(ctx, pending[i].ID, *place); err != nil {
			return result, fmt.Errorf("service.PhotoService.EnrichTrip: %w", err)
		}
		result.Resolved++
	}

	s.log.Info("photo places enriched", "trip_id", tripID, "checked", result.Checked, "resolved", result.Resolved)
	return result, nil
}

func (s *PhotoService) enrich(ctx context.Context, photo *domain.Photo) {
	if s.geocoder == nil || !photo.NeedsGeocoding() {
		return
	}
	at, _ := photo.Coordinate()
	if place := s.geocoder.Reverse(ctx, at); place != nil {
		photo.Place = *place
	}
}

func validatePhoto(p domain.Photo) error {
	if p.Filename == "" {
		return fmt.Errorf("%w: filename is required", domain.ErrValidation)
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be given together", domain.ErrValidation)
	}
	if at, ok := p.Coordinate(); ok && !at.Valid() {
		return fmt.Errorf("%w: coordinate out of range", domain.ErrValidation)
	}
	return nil
}

func samePosition(a, b domain.Photo) bool {
	ca, okA := a.Coordinate()
	cb, okB := b.Coordinate()
	return okA == okB && ca == cb
}
