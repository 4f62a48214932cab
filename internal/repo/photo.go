package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// PhotoRepo defines the persistence operations for Photos.
// Reads and writes are scoped by tripID.
type PhotoRepo interface {
	Create(ctx context.Context, photo domain.Photo) (domain.Photo, error)

	// GetByID returns domain.ErrNotFound if the photo is not under tripID.
	GetByID(ctx context.Context, tripID, photoID uuid.UUID) (domain.Photo, error)

	// ListByTrip returns a trip's photos by taken_at, undated photos last.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Photo, error)

	// ListByTripPaged returns one page of ListByTrip and the total count.
	ListByTripPaged(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) ([]domain.Photo, int64, error)

	// ListMissingPlace returns photos of a trip that have coordinates but
	// no geocoded place yet.
	ListMissingPlace(ctx context.Context, tripID uuid.UUID) ([]domain.Photo, error)

	Update(ctx context.Context, photo domain.Photo) (domain.Photo, error)

	// UpdatePlace stores geocoding output without touching user fields.
	UpdatePlace(ctx context.Context, photoID uuid.UUID, place domain.Place) error

	Delete(ctx context.Context, tripID, photoID uuid.UUID) error
}

type pgPhotoRepo struct {
	db db
}

// NewPhotoRepo constructs a PhotoRepo backed by db.
func NewPhotoRepo(db db) PhotoRepo {
	return &pgPhotoRepo{db: db}
}

const photoColumns = `id, trip_id, filename, title, description, taken_at, latitude, longitude, ` +
	placeColumns + `, created_at, updated_at`

const photoOrder = `ORDER BY taken_at ASC NULLS LAST, created_at ASC`

func photoArgs(p domain.Photo) pgx.NamedArgs {
	args := pgx.NamedArgs{
		"id":          p.ID,
		"trip_id":     p.TripID,
		"filename":    p.Filename,
		"title":       p.Title,
		"description": p.Description,
		"taken_at":    p.TakenAt,
		"latitude":    p.Latitude,
		"longitude":   p.Longitude,
	}
	placeArgs(p.Place, args)
	return args
}

func (r *pgPhotoRepo) Create(ctx context.Context, photo domain.Photo) (domain.Photo, error) {
	q := `
		INSERT INTO photos (trip_id, filename, title, description, taken_at, latitude, longitude,
		                    city, state, country, country_code, landmark, display_name)
		VALUES (@trip_id, @filename, @title, @description, @taken_at, @latitude, @longitude,
		        @city, @state, @country, @country_code, @landmark, @display_name)
		RETURNING ` + photoColumns

	result, err := scanPhoto(r.db.QueryRow(ctx, q, photoArgs(photo)))
	if err != nil {
		return domain.Photo{}, fmt.Errorf("repo.PhotoRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgPhotoRepo) GetByID(ctx context.Context, tripID, photoID uuid.UUID) (domain.Photo, error) {
	q := `SELECT ` + photoColumns + ` FROM photos WHERE id = @id AND trip_id = @trip_id`

	result, err := scanPhoto(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": photoID, "trip_id": tripID}))
	if err != nil {
		return domain.Photo{}, fmt.Errorf("repo.PhotoRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPhotoRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Photo, error) {
	q := `SELECT ` + photoColumns + ` FROM photos WHERE trip_id = @trip_id ` + photoOrder

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.PhotoRepo.ListByTrip: %w", err)
	}
	photos, _, err := collectPhotos(rows, false)
	if err != nil {
		return nil, fmt.Errorf("repo.PhotoRepo.ListByTrip: %w", err)
	}
	return photos, nil
}

func (r *pgPhotoRepo) ListByTripPaged(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) ([]domain.Photo, int64, error) {
	q := `
		SELECT ` + photoColumns + `, count(*) OVER () AS total
		FROM photos
		WHERE trip_id = @trip_id
		` + photoOrder + `
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"trip_id": tripID, "limit": p.Limit, "offset": p.Offset()}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PhotoRepo.ListByTripPaged: %w", err)
	}
	photos, total, err := collectPhotos(rows, true)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PhotoRepo.ListByTripPaged: %w", err)
	}

	if len(photos) == 0 && p.Offset() > 0 {
		const countQ = `SELECT count(*) FROM photos WHERE trip_id = @trip_id`
		if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"trip_id": tripID}).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("repo.PhotoRepo.ListByTripPaged: count: %w", err)
		}
	}
	return photos, total, nil
}

func (r *pgPhotoRepo) ListMissingPlace(ctx context.Context, tripID uuid.UUID) ([]domain.Photo, error) {
	q := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE trip_id = @trip_id
		  AND latitude IS NOT NULL AND longitude IS NOT NULL
		  AND city = '' AND state = '' AND country = '' AND country_code = ''
		  AND landmark = '' AND display_name = ''
		` + photoOrder

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.PhotoRepo.ListMissingPlace: %w", err)
	}
	photos, _, err := collectPhotos(rows, false)
	if err != nil {
		return nil, fmt.Errorf("repo.PhotoRepo.ListMissingPlace: %w", err)
	}
	return photos, nil
}

func (r *pgPhotoRepo) Update(ctx context.Context, photo domain.Photo) (domain.Photo, error) {
	q := `
		UPDATE photos
		SET filename     = @filename,
		    title        = @title,
		    description  = @description,
		    taken_at     = @taken_at,
		    latitude     = @latitude,
		    longitude    = @longitude,
		    city         = @city,
		    state        = @state,
		    country      = @country,
		    country_code = @country_code,
		    landmark     = @landmark,
		    display_name = @display_name,
		    updated_at   = now()
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + photoColumns

	result, err := scanPhoto(r.db.QueryRow(ctx, q, photoArgs(photo)))
	if err != nil {
		return domain.Photo{}, fmt.Errorf("repo.PhotoRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgPhotoRepo) UpdatePlace(ctx context.Context, photoID uuid.UUID, place domain.Place) error {
	const q = `
		UPDATE photos
		SET city         = @city,
		    state        = @state,
		    country      = @country,
		    country_code = @country_code,
		    landmark     = @landmark,
		    display_name = @display_name,
		    updated_at   = now()
		WHERE id = @id`

	args := pgx.NamedArgs{"id": photoID}
	placeArgs(place, args)
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.PhotoRepo.UpdatePlace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PhotoRepo.UpdatePlace: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgPhotoRepo) Delete(ctx context.Context, tripID, photoID uuid.UUID) error {
	const q = `DELETE FROM photos WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": photoID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.PhotoRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PhotoRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func collectPhotos(rows pgx.Rows, withTotal bool) ([]domain.Photo, int64, error) {
	defer rows.Close()

	photos := []domain.Photo{}
	var total int64
	var totalDest *int64
	if withTotal {
		totalDest = &total
	}
	for rows.Next() {
		p, err := scanPhotoWithTotal(rows, totalDest)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}
	return photos, total, nil
}

func scanPhoto(s scanner) (domain.Photo, error) {
	return scanPhotoWithTotal(s, nil)
}

func scanPhotoWithTotal(s scanner, total *int64) (domain.Photo, error) {
	var (
		p      domain.Photo
		id     pgtype.UUID
		tripID pgtype.UUID
	)

	dest := []any{&id, &tripID, &p.Filename, &p.Title, &p.Description, &p.TakenAt, &p.Latitude, &p.Longitude}
	dest = append(dest, placeDest(&p.Place)...)
	dest = append(dest, &p.CreatedAt, &p.UpdatedAt)
	if total != nil {
		dest = append(dest, total)
	}

	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Photo{}, domain.ErrNotFound
		}
		return domain.Photo{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.TripID = uuid.UUID(tripID.Bytes)
	if c, ok := p.Coordinate(); ok {
		p.Place.Lat, p.Place.Lon = c.Lat, c.Lon
	}
	return p, nil
}
