package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// GeocacheRepo stores reverse-geocoding results by bounding box. It
// satisfies geocode.Store.
type GeocacheRepo struct {
	db db
}

// NewGeocacheRepo constructs a GeocacheRepo backed by db.
func NewGeocacheRepo(db db) *GeocacheRepo {
	return &GeocacheRepo{db: db}
}

// Lookup returns the place of the smallest stored box containing at, or
// domain.ErrNotFound.
func (r *GeocacheRepo) Lookup(ctx context.Context, at domain.Coordinate) (domain.Place, error) {
	q := `
		SELECT ` + placeColumns + `
		FROM geocache
		WHERE @lat BETWEEN min_lat AND max_lat
		  AND @lon BETWEEN min_lon AND max_lon
		ORDER BY (max_lat - min_lat) * (max_lon - min_lon) ASC
		LIMIT 1`

	var p domain.Place
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"lat": at.Lat, "lon": at.Lon}).Scan(placeDest(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Place{}, fmt.Errorf("repo.GeocacheRepo.Lookup: %w", domain.ErrNotFound)
		}
		return domain.Place{}, fmt.Errorf("repo.GeocacheRepo.Lookup: %w", err)
	}
	p.Lat, p.Lon = at.Lat, at.Lon
	return p, nil
}

// Save stores place for box. An identical box is overwritten.
func (r *GeocacheRepo) Save(ctx context.Context, box domain.BBox, place domain.Place) error {
	const q = `
		INSERT INTO geocache (min_lat, max_lat, min_lon, max_lon,
		                      city, state, country, country_code, landmark, display_name)
		VALUES (@min_lat, @max_lat, @min_lon, @max_lon,
		        @city, @state, @country, @country_code, @landmark, @display_name)
		ON CONFLICT (min_lat, max_lat, min_lon, max_lon) DO UPDATE
		SET city         = EXCLUDED.city,
		    state        = EXCLUDED.state,
		    country      = EXCLUDED.country,
		    country_code = EXCLUDED.country_code,
		    landmark     = EXCLUDED.landmark,
		    display_name = EXCLUDED.display_name,
		    created_at   = now()`

	args := pgx.NamedArgs{
		"min_lat": box.MinLat,
		"max_lat": box.MaxLat,
		"min_lon": box.MinLon,
		"max_lon": box.MaxLon,
	}
	placeArgs(place, args)
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.GeocacheRepo.Save: %w", err)
	}
	return nil
}
