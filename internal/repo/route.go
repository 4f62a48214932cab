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

// RouteRepo persists routes together with their stops and segments.
// Stops carry caller-assigned IDs so segments can reference them before
// anything is written.
type RouteRepo interface {
	// Create inserts the route, its stops and its segments in one transaction.
	Create(ctx context.Context, route domain.Route) (domain.Route, error)

	// GetByID loads a route with stops (by order_index) and segments.
	// Returns domain.ErrNotFound if the route is not under tripID.
	GetByID(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error)

	// ListByTrip returns the routes of a trip with their stops, without segments.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Route, error)

	Delete(ctx context.Context, tripID, routeID uuid.UUID) error

	// ReplaceSegments swaps all segments of a route in one transaction.
	ReplaceSegments(ctx context.Context, routeID uuid.UUID, segments []domain.Segment) ([]domain.Segment, error)

	// FindSegmentByHash returns the newest segment with the given coords
	// hash, from any route, or domain.ErrNotFound.
	FindSegmentByHash(ctx context.Context, hash string) (domain.Segment, error)
}

type pgRouteRepo struct {
	db db
}

// NewRouteRepo constructs a RouteRepo backed by db.
func NewRouteRepo(db db) RouteRepo {
	return &pgRouteRepo{db: db}
}

const (
	routeColumns   = `id, trip_id, title, profile, created_at, updated_at`
	stopColumns    = `id, route_id, order_index, latitude, longitude, title, description, ` + placeColumns
	segmentColumns = `id, route_id, start_stop_id, end_stop_id, distance, duration, geometry, coords_hash`
)

func (r *pgRouteRepo) Create(ctx context.Context, route domain.Route) (domain.Route, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.Create: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := `
		INSERT INTO routes (trip_id, title, profile)
		VALUES (@trip_id, @title, @profile)
		RETURNING ` + routeColumns

	args := pgx.NamedArgs{"trip_id": route.TripID, "title": route.Title, "profile": string(route.Profile)}
	created, err := scanRoute(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.Create: %w", err)
	}

	created.Stops = make([]domain.Stop, 0, len(route.Stops))
	for _, s := range route.Stops {
		s.RouteID = created.ID
		stop, err := insertStop(ctx, tx, s)
		if err != nil {
			return domain.Route{}, fmt.Errorf("repo.RouteRepo.Create: stop %d: %w", s.OrderIndex, err)
		}
		created.Stops = append(created.Stops, stop)
	}

	created.Segments, err = insertSegments(ctx, tx, created.ID, route.Segments)
	if err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.Create: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.Create: commit: %w", err)
	}
	return created, nil
}

func (r *pgRouteRepo) GetByID(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error) {
	q := `SELECT ` + routeColumns + ` FROM routes WHERE id = @id AND trip_id = @trip_id`

	route, err := scanRoute(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": routeID, "trip_id": tripID}))
	if err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.GetByID: %w", err)
	}

	stops, err := r.stopsOf(ctx, route.ID, false)
	if err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.GetByID: %w", err)
	}
	route.Stops = stops[route.ID]
	if route.Stops == nil {
		route.Stops = []domain.Stop{}
	}

	route.Segments, err = r.segmentsOf(ctx, route.ID)
	if err != nil {
		return domain.Route{}, fmt.Errorf("repo.RouteRepo.GetByID: %w", err)
	}
	return route, nil
}

func (r *pgRouteRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Route, error) {
	q := `SELECT ` + routeColumns + ` FROM routes WHERE trip_id = @trip_id ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	routes := []domain.Route{}
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RouteRepo.ListByTrip: scan: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ListByTrip: rows: %w", err)
	}
	rows.Close()

	if len(routes) == 0 {
		return routes, nil
	}
	stops, err := r.stopsOf(ctx, tripID, true)
	if err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ListByTrip: %w", err)
	}
	for i := range routes {
		routes[i].Stops = stops[routes[i].ID]
		if routes[i].Stops == nil {
			routes[i].Stops = []domain.Stop{}
		}
	}
	return routes, nil
}

func (r *pgRouteRepo) Delete(ctx context.Context, tripID, routeID uuid.UUID) error {
	const q = `DELETE FROM routes WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": routeID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.RouteRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RouteRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgRouteRepo) ReplaceSegments(ctx context.Context, routeID uuid.UUID, segments []domain.Segment) ([]domain.Segment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ReplaceSegments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const touch = `UPDATE routes SET updated_at = now() WHERE id = @id`
	tag, err := tx.Exec(ctx, touch, pgx.NamedArgs{"id": routeID})
	if err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ReplaceSegments: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("repo.RouteRepo.ReplaceSegments: %w", domain.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM route_segments WHERE route_id = @id`, pgx.NamedArgs{"id": routeID}); err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ReplaceSegments: delete: %w", err)
	}

	inserted, err := insertSegments(ctx, tx, routeID, segments)
	if err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ReplaceSegments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ReplaceSegments: commit: %w", err)
	}
	return inserted, nil
}

func (r *pgRouteRepo) FindSegmentByHash(ctx context.Context, hash string) (domain.Segment, error) {
	q := `
		SELECT ` + segmentColumns + `
		FROM route_segments
		WHERE coords_hash = @hash
		ORDER BY created_at DESC
		LIMIT 1`

	seg, err := scanSegment(r.db.QueryRow(ctx, q, pgx.NamedArgs{"hash": hash}))
	if err != nil {
		return domain.Segment{}, fmt.Errorf("repo.RouteRepo.FindSegmentByHash: %w", err)
	}
	return seg, nil
}

// stopsOf loads the stops of one route, or of every route of a trip when
// byTrip is set, grouped by route.
func (r *pgRouteRepo) stopsOf(ctx context.Context, id uuid.UUID, byTrip bool) (map[uuid.UUID][]domain.Stop, error) {
	q := `SELECT ` + stopColumns + ` FROM route_stops WHERE route_id = @id ORDER BY order_index`
	if byTrip {
		q = `
			SELECT s.id, s.route_id, s.order_index, s.latitude, s.longitude, s.title, s.description,
			       s.city, s.state, s.country, s.country_code, s.landmark, s.display_name
			FROM route_stops s
			JOIN routes rt ON rt.id = s.route_id
			WHERE rt.trip_id = @id
			ORDER BY s.route_id, s.order_index`
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("stops: %w", err)
	}
	defer rows.Close()

	out := map[uuid.UUID][]domain.Stop{}
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("stops: scan: %w", err)
		}
		out[s.RouteID] = append(out[s.RouteID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stops: rows: %w", err)
	}
	return out, nil
}

func (r *pgRouteRepo) segmentsOf(ctx context.Context, routeID uuid.UUID) ([]domain.Segment, error) {
	q := `SELECT ` + segmentColumns + ` FROM route_segments WHERE route_id = @id ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"id": routeID})
	if err != nil {
		return nil, fmt.Errorf("segments: %w", err)
	}
	defer rows.Close()

	segments := []domain.Segment{}
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("segments: scan: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("segments: rows: %w", err)
	}
	return segments, nil
}

func insertStop(ctx context.Context, tx pgx.Tx, s domain.Stop) (domain.Stop, error) {
	q := `
		INSERT INTO route_stops (id, route_id, order_index, latitude, longitude, title, description,
		                         city, state, country, country_code, landmark, display_name)
		VALUES (@id, @route_id, @order_index, @latitude, @longitude, @title, @description,
		        @city, @state, @country, @country_code, @landmark, @display_name)
		RETURNING ` + stopColumns

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	args := pgx.NamedArgs{
		"id":          s.ID,
		"route_id":    s.RouteID,
		"order_index": s.OrderIndex,
		"latitude":    s.Coordinate.Lat,
		"longitude":   s.Coordinate.Lon,
		"title":       s.Title,
		"description": s.Description,
	}
	placeArgs(s.Place, args)
	return scanStop(tx.QueryRow(ctx, q, args))
}

func insertSegments(ctx context.Context, tx pgx.Tx, routeID uuid.UUID, segments []domain.Segment) ([]domain.Segment, error) {
	q := `
		INSERT INTO route_segments (route_id, start_stop_id, end_stop_id, distance, duration, geometry, coords_hash)
		VALUES (@route_id, @start_stop_id, @end_stop_id, @distance, @duration, @geometry, @coords_hash)
		RETURNING ` + segmentColumns

	out := make([]domain.Segment, 0, len(segments))
	for i, seg := range segments {
		args := pgx.NamedArgs{
			"route_id":      routeID,
			"start_stop_id": seg.StartStopID,
			"end_stop_id":   seg.EndStopID,
			"distance":      seg.Distance,
			"duration":      seg.Duration,
			"geometry":      seg.Geometry,
			"coords_hash":   seg.CoordsHash,
		}
		inserted, err := scanSegment(tx.QueryRow(ctx, q, args))
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		out = append(out, inserted)
	}
	return out, nil
}

func scanRoute(s scanner) (domain.Route, error) {
	var (
		rt      domain.Route
		id      pgtype.UUID
		tripID  pgtype.UUID
		profile string
	)
	if err := s.Scan(&id, &tripID, &rt.Title, &profile, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Route{}, domain.ErrNotFound
		}
		return domain.Route{}, err
	}
	rt.ID = uuid.UUID(id.Bytes)
	rt.TripID = uuid.UUID(tripID.Bytes)
	rt.Profile = domain.TransportProfile(profile)
	return rt, nil
}

func scanStop(s scanner) (domain.Stop, error) {
	var (
		st      domain.Stop
		id      pgtype.UUID
		routeID pgtype.UUID
	)
	dest := []any{&id, &routeID, &st.OrderIndex, &st.Coordinate.Lat, &st.Coordinate.Lon, &st.Title, &st.Description}
	dest = append(dest, placeDest(&st.Place)...)
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stop{}, domain.ErrNotFound
		}
		return domain.Stop{}, err
	}
	st.ID = uuid.UUID(id.Bytes)
	st.RouteID = uuid.UUID(routeID.Bytes)
	if !st.Place.IsZero() {
		st.Place.Lat, st.Place.Lon = st.Coordinate.Lat, st.Coordinate.Lon
	}
	return st, nil
}

func scanSegment(s scanner) (domain.Segment, error) {
	var (
		seg                      domain.Segment
		id, routeID, start, end pgtype.UUID
	)
	err := s.Scan(&id, &routeID, &start, &end, &seg.Distance, &seg.Duration, &seg.Geometry, &seg.CoordsHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Segment{}, domain.ErrNotFound
		}
		return domain.Segment{}, err
	}
	seg.ID = uuid.UUID(id.Bytes)
	seg.RouteID = uuid.UUID(routeID.Bytes)
	seg.StartStopID = uuid.UUID(start.Bytes)
	seg.EndStopID = uuid.UUID(end.Bytes)
	return seg, nil
}
