package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/ors"
	"github.com/pkordes/vacation-gallery/internal/repo"
	"github.com/pkordes/vacation-gallery/internal/routepath"
)

// RouteService builds, stores and renders trip routes.
//
// A route is a list of stops. Every pair of consecutive stops becomes a
// segment whose geometry comes from the routing provider, or from an
// earlier segment with the same profile and endpoints.
type RouteService struct {
	trips    repo.TripRepo
	routes   repo.RouteRepo
	router   Router
	geocoder Geocoder
	log      *slog.Logger
}

// NewRouteService constructs a RouteService. geocoder may be nil.
func NewRouteService(trips repo.TripRepo, routes repo.RouteRepo, router Router, geocoder Geocoder, log *slog.Logger) *RouteService {
	return &RouteService{trips: trips, routes: routes, router: router, geocoder: geocoder, log: log}
}

// leg is the routed part between two consecutive stops.
type leg struct {
	distance float64
	duration float64
	geometry string
}

// Create validates the route, geocodes its stops, routes every leg and
// stores the result. Stops are taken in OrderIndex order and renumbered
// from zero.
func (s *RouteService) Create(ctx context.Context, route domain.Route) (domain.Route, error) {
	if _, err := s.trips.GetByID(ctx, route.TripID); err != nil {
		return domain.Route{}, fmt.Errorf("service.RouteService.Create: %w", err)
	}
	route.Title = strings.TrimSpace(route.Title)
	if route.Title == "" {
		return domain.Route{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if !route.Profile.Valid() {
		return domain.Route{}, fmt.Errorf("%w: unknown transport profile %q", domain.ErrValidation, route.Profile)
	}
	stops, err := normaliseStops(route.Stops)
	if err != nil {
		return domain.Route{}, err
	}

	s.geocodeStops(ctx, stops)

	segments, err := s.buildSegments(ctx, route.Profile, stops, true)
	if err != nil {
		return domain.Route{}, fmt.Errorf("service.RouteService.Create: %w", err)
	}

	route.Stops = stops
	route.Segments = segments
	created, err := s.routes.Create(ctx, route)
	if err != nil {
		return domain.Route{}, fmt.Errorf("service.RouteService.Create: %w", err)
	}
	s.log.Info("route created", "route_id", created.ID, "trip_id", created.TripID, "stops", len(stops))
	return created, nil
}

// GetByID returns a route of tripID with stops and segments.
func (s *RouteService) GetByID(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error) {
	route, err := s.routes.GetByID(ctx, tripID, routeID)
	if err != nil {
		return domain.Route{}, fmt.Errorf("service.RouteService.GetByID: %w", err)
	}
	return route, nil
}

// ListByTrip returns the routes of a trip.
func (s *RouteService) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Route, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.RouteService.ListByTrip: %w", err)
	}
	routes, err := s.routes.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.RouteService.ListByTrip: %w", err)
	}
	if routes == nil {
		routes = []domain.Route{}
	}
	return routes, nil
}

// Delete removes a route of tripID.
func (s *RouteService) Delete(ctx context.Context, tripID, routeID uuid.UUID) error {
	if err := s.routes.Delete(ctx, tripID, routeID); err != nil {
		return fmt.Errorf("service.RouteService.Delete: %w", err)
	}
	return nil
}

// Regenerate asks the provider for fresh geometry for every leg and
// replaces the stored segments.
func (s *RouteService) Regenerate(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error) {
	route, err := s.routes.GetByID(ctx, tripID, routeID)
	if err != nil {
		return domain.Route{}, fmt.Errorf("service.RouteService.Regenerate: %w", err)
	}
	stops := routepath.OrderStops(route.Stops)
	if len(stops) < 2 {
		return domain.Route{}, fmt.Errorf("%w: route has fewer than 2 stops", domain.ErrValidation)
	}

	segments, err := s.buildSegments(ctx, route.Profile, stops, false)
	if err != nil {
		return domain.Route{}, fmt.Errorf("service.RouteService.Regenerate: %w", err)
	}
	route.Segments, err = s.routes.ReplaceSegments(ctx, route.ID, segments)
	if err != nil {
		return domain.Route{}, fmt.Errorf("service.RouteService.Regenerate: %w", err)
	}
	route.Stops = stops
	s.log.Info("route regenerated", "route_id", route.ID, "segments", len(route.Segments))
	return route, nil
}

// Path aggregates a stored route into one display-ready path.
func (s *RouteService) Path(ctx context.Context, tripID, routeID uuid.UUID, opts routepath.Options) (domain.Path, error) {
	route, err := s.routes.GetByID(ctx, tripID, routeID)
	if err != nil {
		return domain.Path{}, fmt.Errorf("service.RouteService.Path: %w", err)
	}
	return routepath.Build(s.log, route, opts), nil
}

// PreviewDirections routes through coords without storing anything.
func (s *RouteService) PreviewDirections(ctx context.Context, profile domain.TransportProfile, coords []domain.Coordinate) (ors.Directions, error) {
	d, err := s.router.Directions(ctx, profile, coords)
	if err != nil {
		return ors.Directions{}, fmt.Errorf("service.RouteService.PreviewDirections: %w", err)
	}
	return d, nil
}

// PreviewIsochrones returns reachability polygons without storing anything.
func (s *RouteService) PreviewIsochrones(ctx context.Context, profile domain.TransportProfile, req ors.IsochroneRequest) ([]ors.Isochrone, error) {
	isos, err := s.router.Isochrones(ctx, profile, req)
	if err != nil {
		return nil, fmt.Errorf("service.RouteService.PreviewIsochrones: %w", err)
	}
	return isos, nil
}

// PreviewMatrix returns a travel cost matrix without storing anything.
func (s *RouteService) PreviewMatrix(ctx context.Context, profile domain.TransportProfile, req ors.MatrixRequest) (ors.Matrix, error) {
	m, err := s.router.Matrix(ctx, profile, req)
	if err != nil {
		return ors.Matrix{}, fmt.Errorf("service.RouteService.PreviewMatrix: %w", err)
	}
	return m, nil
}

// normaliseStops orders stops by OrderIndex, renumbers them from zero and
// assigns fresh IDs so segments can reference them before insertion.
func normaliseStops(in []domain.Stop) ([]domain.Stop, error) {
	if len(in) < 2 {
		return nil, fmt.Errorf("%w: a route needs at least 2 stops", domain.ErrValidation)
	}
	stops := routepath.OrderStops(in)
	for i := range stops {
		if !stops[i].Coordinate.Valid() {
			return nil, fmt.Errorf("%w: stop %d has an out of range coordinate", domain.ErrValidation, i)
		}
		stops[i].ID = uuid.New()
		stops[i].OrderIndex = i
		stops[i].Title = strings.TrimSpace(stops[i].Title)
	}
	return stops, nil
}

// geocodeStops fills in the place of stops that have none. Failures leave
// the place empty.
func (s *RouteService) geocodeStops(ctx context.Context, stops []domain.Stop) {
	if s.geocoder == nil {
		return
	}
	var (
		idx    []int
		coords []domain.Coordinate
	)
	for i, st := range stops {
		if st.Place.IsZero() {
			idx = append(idx, i)
			coords = append(coords, st.Coordinate)
		}
	}
	if len(coords) == 0 {
		return
	}
	for j, place := range s.geocoder.ReverseBatch(ctx, coords) {
		if place != nil {
			stops[idx[j]].Place = *place
		}
	}
}

// buildSegments produces one segment per consecutive stop pair. With
// useCache set, legs already routed for the same profile and endpoints are
// reused; the remaining legs cost a single directions request.
func (s *RouteService) buildSegments(ctx context.Context, profile domain.TransportProfile, stops []domain.Stop, useCache bool) ([]domain.Segment, error) {
	segments := make([]domain.Segment, len(stops)-1)
	missing := 0
	for i := range segments {
		from, to := stops[i], stops[i+1]
		seg := domain.Segment{
			StartStopID: from.ID,
			EndStopID:   to.ID,
			CoordsHash:  domain.CoordsHash(profile, from.Coordinate, to.Coordinate),
		}
		if useCache {
			cached, err := s.routes.FindSegmentByHash(ctx, seg.CoordsHash)
			switch {
			case err == nil:
				seg.Distance, seg.Duration, seg.Geometry = cached.Distance, cached.Duration, cached.Geometry
			case !errors.Is(err, domain.ErrNotFound):
				return nil, err
			}
		}
		if seg.Geometry == "" {
			missing++
		}
		segments[i] = seg
	}
	if missing == 0 {
		s.log.Debug("all route legs served from cache", "legs", len(segments))
		return segments, nil
	}

	legs, err := s.routeLegs(ctx, profile, stops)
	if err != nil {
		return nil, err
	}
	for i := range segments {
		if segments[i].Geometry == "" {
			segments[i].Distance = legs[i].distance
			segments[i].Duration = legs[i].duration
			segments[i].Geometry = legs[i].geometry
		}
	}
	return segments, nil
}

// routeLegs routes through all stops at once and cuts the geometry at the
// way points. When the answer cannot be cut, each leg is routed on its own.
func (s *RouteService) routeLegs(ctx context.Context, profile domain.TransportProfile, stops []domain.Stop) ([]leg, error) {
	coords := make([]domain.Coordinate, len(stops))
	for i, st := range stops {
		coords[i] = st.Coordinate
	}

	first, err := s.firstRoute(ctx, profile, coords)
	if err != nil {
		return nil, err
	}
	if legs, ok := splitLegs(first, len(stops)); ok {
		return legs, nil
	}

	s.log.Warn("directions answer could not be split per leg, routing legs one by one", "legs", len(stops)-1)
	legs := make([]leg, len(stops)-1)
	for i := range legs {
		r, err := s.firstRoute(ctx, profile, coords[i:i+2])
		if err != nil {
			return nil, err
		}
		legs[i] = leg{distance: r.Distance, duration: r.Duration, geometry: r.Geometry}
	}
	return legs, nil
}

func (s *RouteService) firstRoute(ctx context.Context, profile domain.TransportProfile, coords []domain.Coordinate) (ors.DirectionsRoute, error) {
	d, err := s.router.Directions(ctx, profile, coords)
	if err != nil {
		return ors.DirectionsRoute{}, err
	}
	if len(d.Routes) == 0 {
		return ors.DirectionsRoute{}, fmt.Errorf("%w: directions returned no route", domain.ErrUpstream)
	}
	return d.Routes[0], nil
}

// splitLegs cuts a multi-stop route into per-leg geometries using the way
// point indices, which mark where each input coordinate sits in the line.
func splitLegs(r ors.DirectionsRoute, stops int) ([]leg, bool) {
	if len(r.Legs) != stops-1 || len(r.WayPoints) != stops {
		return nil, false
	}
	points, err := routepath.DecodeGeometry(r.Geometry)
	if err != nil {
		return nil, false
	}
	legs := make([]leg, stops-1)
	for i := range legs {
		a, b := r.WayPoints[i], r.WayPoints[i+1]
		if a < 0 || b >= len(points) || a > b {
			return nil, false
		}
		legs[i] = leg{
			distance: r.Legs[i].Distance,
			duration: r.Legs[i].Duration,
			geometry: routepath.EncodeGeometry(points[a:b+1], 5),
		}
	}
	return legs, true
}
