package service

import (
	"context"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/ors"
)

// Geocoder resolves coordinates to places. Both methods are best effort:
// a nil place means "unknown", never an error. *geocode.Client satisfies it.
type Geocoder interface {
	Reverse(ctx context.Context, at domain.Coordinate) *domain.Place
	ReverseBatch(ctx context.Context, coords []domain.Coordinate) []*domain.Place
}

// Router plans routes through an external provider. *ors.Client satisfies it.
type Router interface {
	Directions(ctx context.Context, profile domain.TransportProfile, coords []domain.Coordinate) (ors.Directions, error)
	Isochrones(ctx context.Context, profile domain.TransportProfile, req ors.IsochroneRequest) ([]ors.Isochrone, error)
	Matrix(ctx context.Context, profile domain.TransportProfile, req ors.MatrixRequest) (ors.Matrix, error)
}
