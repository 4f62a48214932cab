// Package domain contains the core data types for the vacation gallery.
// It depends only on uuid and is imported by every other internal package.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a single vacation. It is the top-level aggregate:
// photos and routes belong to a trip.
type Trip struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"` // nil while the trip is ongoing
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
