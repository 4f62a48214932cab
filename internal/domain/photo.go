package domain

import (
	"time"

	"github.com/google/uuid"
)

// Photo is a single picture taken during a trip.
// Latitude and Longitude are either both set or both nil; Place is filled in
// by reverse geocoding and stays zero when the lookup failed or was skipped.
type Photo struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	Filename    string
	Title       string
	Description string
	TakenAt     *time.Time
	Latitude    *float64
	Longitude   *float64
	Place       Place
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Coordinate returns the photo position, or false when the photo has no GPS data.
func (p Photo) Coordinate() (Coordinate, bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *p.Latitude, Lon: *p.Longitude}, true
}

// NeedsGeocoding reports whether the photo has a position but no place yet.
func (p Photo) NeedsGeocoding() bool {
	_, ok := p.Coordinate()
	return ok && p.Place.IsZero()
}
