package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/ors"
	"github.com/pkordes/vacation-gallery/internal/repo"
	"github.com/pkordes/vacation-gallery/internal/routepath"
	"github.com/pkordes/vacation-gallery/internal/service"
)

// mockRouteRepo is a hand-written test double for repo.RouteRepo.
type mockRouteRepo struct {
	create            func(ctx context.Context, route domain.Route) (domain.Route, error)
	getByID           func(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error)
	listByTrip        func(ctx context.Context, tripID uuid.UUID) ([]domain.Route, error)
	delete            func(ctx context.Context, tripID, routeID uuid.UUID) error
	replaceSegments   func(ctx context.Context, routeID uuid.UUID, segments []domain.Segment) ([]domain.Segment, error)
	findSegmentByHash func(ctx context.Context, hash string) (domain.Segment, error)
}

func (m *mockRouteRepo) Create(ctx context.Context, route domain.Route) (domain.Route, error) {
	return m.create(ctx, route)
}
func (m *mockRouteRepo) GetByID(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error) {
	return m.getByID(ctx, tripID, routeID)
}
func (m *mockRouteRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Route, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockRouteRepo) Delete(ctx context.Context, tripID, routeID uuid.UUID) error {
	return m.delete(ctx, tripID, routeID)
}
func (m *mockRouteRepo) ReplaceSegments(ctx context.Context, routeID uuid.UUID, segments []domain.Segment) ([]domain.Segment, error) {
	return m.replaceSegments(ctx, routeID, segments)
}
func (m *mockRouteRepo) FindSegmentByHash(ctx context.Context, hash string) (domain.Segment, error) {
	return m.findSegmentByHash(ctx, hash)
}

var _ repo.RouteRepo = (*mockRouteRepo)(nil)

// mockRouter is a test double for service.Router. Directions calls are
// recorded in order.
type mockRouter struct {
	directions func(ctx context.Context, profile domain.TransportProfile, coords []domain.Coordinate) (ors.Directions, error)
	isochrones func(ctx context.Context, profile domain.TransportProfile, req ors.IsochroneRequest) ([]ors.Isochrone, error)
	matrix     func(ctx context.Context, profile domain.TransportProfile, req ors.MatrixRequest) (ors.Matrix, error)

	directionsCalls [][]domain.Coordinate
}

func (m *mockRouter) Directions(ctx context.Context, profile domain.TransportProfile, coords []domain.Coordinate) (ors.Directions, error) {
	m.directionsCalls = append(m.directionsCalls, coords)
	return m.directions(ctx, profile, coords)
}
func (m *mockRouter) Isochrones(ctx context.Context, profile domain.TransportProfile, req ors.IsochroneRequest) ([]ors.Isochrone, error) {
	return m.isochrones(ctx, profile, req)
}
func (m *mockRouter) Matrix(ctx context.Context, profile domain.TransportProfile, req ors.MatrixRequest) (ors.Matrix, error) {
	return m.matrix(ctx, profile, req)
}

var _ service.Router = (*mockRouter)(nil)

// ---- helpers ---------------------------------------------------------------

var (
	alfama  = domain.Coordinate{Lat: 38.71, Lon: -9.13}
	midA    = domain.Coordinate{Lat: 38.70, Lon: -9.15}
	belem   = domain.Coordinate{Lat: 38.69, Lon: -9.20}
	midB    = domain.Coordinate{Lat: 38.70, Lon: -9.30}
	cascais = domain.Coordinate{Lat: 38.69, Lon: -9.42}
)

// threeStops returns stops deliberately out of order.
func threeStops() []domain.Stop {
	return []domain.Stop{
		{Coordinate: cascais, OrderIndex: 9, Title: "Cascais"},
		{Coordinate: alfama, OrderIndex: 1, Title: " Alfama "},
		{Coordinate: belem, OrderIndex: 4, Title: "Belém"},
	}
}

func newRoute(tripID uuid.UUID) domain.Route {
	return domain.Route{
		TripID:  tripID,
		Title:   "Coast day",
		Profile: domain.ProfileDrivingCar,
		Stops:   threeStops(),
	}
}

// wholeRoute answers Directions with one route through
// alfama, midA, belem, midB, cascais with way points at the stops.
func wholeRoute() *mockRouter {
	return &mockRouter{
		directions: func(_ context.Context, _ domain.TransportProfile, coords []domain.Coordinate) (ors.Directions, error) {
			return ors.Directions{Routes: []ors.DirectionsRoute{{
				Distance:  21000,
				Duration:  1800,
				Geometry:  routepath.EncodeGeometry([]domain.Coordinate{alfama, midA, belem, midB, cascais}, 5),
				Legs:      []ors.Leg{{Distance: 6000, Duration: 600}, {Distance: 15000, Duration: 1200}},
				WayPoints: []int{0, 2, 4},
			}}}, nil
		},
	}
}

func echoRouteRepo() *mockRouteRepo {
	return &mockRouteRepo{
		create: func(_ context.Context, r domain.Route) (domain.Route, error) {
			r.ID = uuid.New()
			return r, nil
		},
		findSegmentByHash: func(_ context.Context, _ string) (domain.Segment, error) {
			return domain.Segment{}, domain.ErrNotFound
		},
	}
}

func noGeocoding() *mockGeocoder {
	return &mockGeocoder{
		reverseBatch: func(_ context.Context, coords []domain.Coordinate) []*domain.Place {
			return make([]*domain.Place, len(coords))
		},
	}
}

// ---- Create ----------------------------------------------------------------

func TestRouteService_Create_OrdersStopsAndSplitsLegs(t *testing.T) {
	router := wholeRoute()
	svc := service.NewRouteService(existingTrips(), echoRouteRepo(), router, noGeocoding(), discardLogger())

	got, err := svc.Create(context.Background(), newRoute(uuid.New()))

	require.NoError(t, err)
	require.Len(t, got.Stops, 3)
	assert.Equal(t, "Alfama", got.Stops[0].Title)
	assert.Equal(t, "Belém", got.Stops[1].Title)
	assert.Equal(t, "Cascais", got.Stops[2].Title)
	for i, st := range got.Stops {
		assert.Equal(t, i, st.OrderIndex)
		assert.NotEqual(t, uuid.Nil, st.ID)
	}

	require.Len(t, router.directionsCalls, 1)
	assert.Equal(t, []domain.Coordinate{alfama, belem, cascais}, router.directionsCalls[0])

	require.Len(t, got.Segments, 2)
	first, second := got.Segments[0], got.Segments[1]
	assert.Equal(t, got.Stops[0].ID, first.StartStopID)
	assert.Equal(t, got.Stops[1].ID, first.EndStopID)
	assert.Equal(t, got.Stops[1].ID, second.StartStopID)
	assert.Equal(t, got.Stops[2].ID, second.EndStopID)
	assert.Equal(t, routepath.EncodeGeometry([]domain.Coordinate{alfama, midA, belem}, 5), first.Geometry)
	assert.Equal(t, routepath.EncodeGeometry([]domain.Coordinate{belem, midB, cascais}, 5), second.Geometry)
	assert.InDelta(t, 6000, first.Distance, 1e-9)
	assert.InDelta(t, 1200, second.Duration, 1e-9)
	assert.Equal(t, domain.CoordsHash(domain.ProfileDrivingCar, alfama, belem), first.CoordsHash)
}

// Polylines may start with '{'; such an answer must still be split per leg.
func TestRouteService_Create_SplitsBraceLeadingGeometry(t *testing.T) {
	line := []domain.Coordinate{
		{Lat: 48.00014, Lon: 2.35}, {Lat: 48.05, Lon: 2.37}, {Lat: 48.1, Lon: 2.4},
		{Lat: 48.15, Lon: 2.45}, {Lat: 48.2, Lon: 2.5},
	}
	router := &mockRouter{
		directions: func(_ context.Context, _ domain.TransportProfile, _ []domain.Coordinate) (ors.Directions, error) {
			return ors.Directions{Routes: []ors.DirectionsRoute{{
				Geometry:  routepath.EncodeGeometry(line, 5),
				Legs:      []ors.Leg{{Distance: 4000}, {Distance: 5000}},
				WayPoints: []int{0, 2, 4},
			}}}, nil
		},
	}
	svc := service.NewRouteService(existingTrips(), echoRouteRepo(), router, noGeocoding(), discardLogger())
	route := domain.Route{
		TripID:  uuid.New(),
		Title:   "Beauce",
		Profile: domain.ProfileDrivingCar,
		Stops: []domain.Stop{
			{Coordinate: line[0], OrderIndex: 0},
			{Coordinate: line[2], OrderIndex: 1},
			{Coordinate: line[4], OrderIndex: 2},
		},
	}

	got, err := svc.Create(context.Background(), route)

	require.NoError(t, err)
	assert.Len(t, router.directionsCalls, 1, "no per-leg fallback")
	require.Len(t, got.Segments, 2)
	assert.Equal(t, routepath.EncodeGeometry(line[:3], 5), got.Segments[0].Geometry)
	assert.Equal(t, byte('{'), got.Segments[0].Geometry[0])
	assert.Equal(t, routepath.EncodeGeometry(line[2:], 5), got.Segments[1].Geometry)
}

func TestRouteService_Create_ReusesCachedLegs(t *testing.T) {
	cachedHash := domain.CoordsHash(domain.ProfileDrivingCar, alfama, belem)
	routes := echoRouteRepo()
	routes.findSegmentByHash = func(_ context.Context, hash string) (domain.Segment, error) {
		if hash == cachedHash {
			return domain.Segment{Distance: 5999, Duration: 599, Geometry: "cached"}, nil
		}
		return domain.Segment{}, domain.ErrNotFound
	}
	router := wholeRoute()
	svc := service.NewRouteService(existingTrips(), routes, router, noGeocoding(), discardLogger())

	got, err := svc.Create(context.Background(), newRoute(uuid.New()))

	require.NoError(t, err)
	assert.Len(t, router.directionsCalls, 1)
	assert.Equal(t, "cached", got.Segments[0].Geometry)
	assert.InDelta(t, 5999, got.Segments[0].Distance, 1e-9)
	assert.Equal(t, routepath.EncodeGeometry([]domain.Coordinate{belem, midB, cascais}, 5), got.Segments[1].Geometry)
}

func TestRouteService_Create_AllLegsCached(t *testing.T) {
	routes := echoRouteRepo()
	routes.findSegmentByHash = func(_ context.Context, hash string) (domain.Segment, error) {
		return domain.Segment{Geometry: "g-" + hash[:6]}, nil
	}
	router := &mockRouter{}
	svc := service.NewRouteService(existingTrips(), routes, router, noGeocoding(), discardLogger())

	got, err := svc.Create(context.Background(), newRoute(uuid.New()))

	require.NoError(t, err)
	assert.Empty(t, router.directionsCalls)
	assert.Len(t, got.Segments, 2)
}

func TestRouteService_Create_FallsBackToPerLegDirections(t *testing.T) {
	router := &mockRouter{
		directions: func(_ context.Context, _ domain.TransportProfile, coords []domain.Coordinate) (ors.Directions, error) {
			// no way points, so the answer cannot be cut per leg
			return ors.Directions{Routes: []ors.DirectionsRoute{{
				Distance: float64(len(coords)) * 1000,
				Geometry: routepath.EncodeGeometry(coords, 5),
			}}}, nil
		},
	}
	svc := service.NewRouteService(existingTrips(), echoRouteRepo(), router, noGeocoding(), discardLogger())

	got, err := svc.Create(context.Background(), newRoute(uuid.New()))

	require.NoError(t, err)
	require.Len(t, router.directionsCalls, 3)
	assert.Equal(t, []domain.Coordinate{alfama, belem}, router.directionsCalls[1])
	assert.Equal(t, []domain.Coordinate{belem, cascais}, router.directionsCalls[2])
	assert.Equal(t, routepath.EncodeGeometry([]domain.Coordinate{belem, cascais}, 5), got.Segments[1].Geometry)
	assert.InDelta(t, 2000, got.Segments[1].Distance, 1e-9)
}

func TestRouteService_Create_GeocodesStopsWithoutPlace(t *testing.T) {
	var asked []domain.Coordinate
	geo := &mockGeocoder{
		reverseBatch: func(_ context.Context, coords []domain.Coordinate) []*domain.Place {
			asked = coords
			out := make([]*domain.Place, len(coords))
			out[0] = &domain.Place{City: "Lisbon"}
			return out
		},
	}
	route := newRoute(uuid.New())
	route.Stops[0].Place = domain.Place{City: "Cascais"}
	var stored domain.Route
	routes := echoRouteRepo()
	routes.create = func(_ context.Context, r domain.Route) (domain.Route, error) {
		stored = r
		return r, nil
	}
	svc := service.NewRouteService(existingTrips(), routes, wholeRoute(), geo, discardLogger())

	_, err := svc.Create(context.Background(), route)

	require.NoError(t, err)
	assert.Equal(t, []domain.Coordinate{alfama, belem}, asked)
	assert.Equal(t, "Lisbon", stored.Stops[0].Place.City)
	assert.True(t, stored.Stops[1].Place.IsZero())
	assert.Equal(t, "Cascais", stored.Stops[2].Place.City)
}

func TestRouteService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Route)
	}{
		{"blank title", func(r *domain.Route) { r.Title = " " }},
		{"unknown profile", func(r *domain.Route) { r.Profile = "hovercraft" }},
		{"single stop", func(r *domain.Route) { r.Stops = r.Stops[:1] }},
		{"bad coordinate", func(r *domain.Route) { r.Stops[1].Coordinate.Lat = 123 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := wholeRoute()
			svc := service.NewRouteService(existingTrips(), echoRouteRepo(), router, noGeocoding(), discardLogger())
			route := newRoute(uuid.New())
			tc.mutate(&route)

			_, err := svc.Create(context.Background(), route)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, router.directionsCalls)
		})
	}
}

func TestRouteService_Create_UnknownTrip(t *testing.T) {
	svc := service.NewRouteService(missingTrips(), echoRouteRepo(), wholeRoute(), noGeocoding(), discardLogger())

	_, err := svc.Create(context.Background(), newRoute(uuid.New()))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRouteService_Create_UpstreamErrorStoresNothing(t *testing.T) {
	router := &mockRouter{
		directions: func(_ context.Context, _ domain.TransportProfile, _ []domain.Coordinate) (ors.Directions, error) {
			return ors.Directions{}, fmt.Errorf("%w: status 500", domain.ErrUpstream)
		},
	}
	routes := echoRouteRepo()
	routes.create = func(_ context.Context, _ domain.Route) (domain.Route, error) {
		t.Fatal("route must not be stored")
		return domain.Route{}, nil
	}
	svc := service.NewRouteService(existingTrips(), routes, router, noGeocoding(), discardLogger())

	_, err := svc.Create(context.Background(), newRoute(uuid.New()))

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestRouteService_Create_MissingAPIKey(t *testing.T) {
	router := &mockRouter{
		directions: func(_ context.Context, _ domain.TransportProfile, _ []domain.Coordinate) (ors.Directions, error) {
			return ors.Directions{}, ors.ErrMissingAPIKey
		},
	}
	svc := service.NewRouteService(existingTrips(), echoRouteRepo(), router, noGeocoding(), discardLogger())

	_, err := svc.Create(context.Background(), newRoute(uuid.New()))

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

// ---- Regenerate ------------------------------------------------------------

func TestRouteService_Regenerate_BypassesCache(t *testing.T) {
	tripID, routeID := uuid.New(), uuid.New()
	stops := []domain.Stop{
		{ID: uuid.New(), Coordinate: belem, OrderIndex: 1},
		{ID: uuid.New(), Coordinate: alfama, OrderIndex: 0},
		{ID: uuid.New(), Coordinate: cascais, OrderIndex: 2},
	}
	var replaced []domain.Segment
	routes := &mockRouteRepo{
		getByID: func(_ context.Context, _, id uuid.UUID) (domain.Route, error) {
			return domain.Route{ID: id, TripID: tripID, Profile: domain.ProfileDrivingCar, Stops: stops}, nil
		},
		findSegmentByHash: func(_ context.Context, _ string) (domain.Segment, error) {
			t.Fatal("regenerate must not read the segment cache")
			return domain.Segment{}, nil
		},
		replaceSegments: func(_ context.Context, _ uuid.UUID, segs []domain.Segment) ([]domain.Segment, error) {
			replaced = segs
			return segs, nil
		},
	}
	router := wholeRoute()
	svc := service.NewRouteService(existingTrips(), routes, router, nil, discardLogger())

	got, err := svc.Regenerate(context.Background(), tripID, routeID)

	require.NoError(t, err)
	require.Len(t, router.directionsCalls, 1)
	assert.Equal(t, []domain.Coordinate{alfama, belem, cascais}, router.directionsCalls[0])
	require.Len(t, replaced, 2)
	assert.Equal(t, stops[1].ID, replaced[0].StartStopID)
	assert.Equal(t, stops[2].ID, replaced[1].EndStopID)
	assert.Equal(t, replaced, got.Segments)
}

func TestRouteService_Regenerate_NotFound(t *testing.T) {
	routes := &mockRouteRepo{
		getByID: func(_ context.Context, _, _ uuid.UUID) (domain.Route, error) {
			return domain.Route{}, domain.ErrNotFound
		},
	}
	svc := service.NewRouteService(existingTrips(), routes, &mockRouter{}, nil, discardLogger())

	_, err := svc.Regenerate(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Path ------------------------------------------------------------------

func TestRouteService_Path(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	route := domain.Route{
		ID: uuid.New(),
		Stops: []domain.Stop{
			{ID: a, OrderIndex: 0}, {ID: b, OrderIndex: 1}, {ID: c, OrderIndex: 2},
		},
		Segments: []domain.Segment{
			{StartStopID: b, EndStopID: c, Distance: 15000, Geometry: routepath.EncodeGeometry([]domain.Coordinate{belem, midB, cascais}, 5)},
			{StartStopID: a, EndStopID: b, Distance: 6000, Geometry: routepath.EncodeGeometry([]domain.Coordinate{alfama, midA, belem}, 5)},
		},
	}
	routes := &mockRouteRepo{
		getByID: func(_ context.Context, _, _ uuid.UUID) (domain.Route, error) { return route, nil },
	}
	svc := service.NewRouteService(existingTrips(), routes, &mockRouter{}, nil, discardLogger())

	got, err := svc.Path(context.Background(), uuid.New(), route.ID, routepath.Options{NoSmoothing: true})

	require.NoError(t, err)
	require.Len(t, got.Points, 5)
	assert.InDelta(t, alfama.Lat, got.Points[0].Lat, 1e-9)
	assert.InDelta(t, cascais.Lon, got.Points[4].Lon, 1e-9)
	assert.InDelta(t, 21000, got.Distance, 1e-9)
	require.NotNil(t, got.Bounds)
}

// ---- previews --------------------------------------------------------------

func TestRouteService_PreviewIsochrones_PassesThrough(t *testing.T) {
	want := []ors.Isochrone{{Value: 600}}
	router := &mockRouter{
		isochrones: func(_ context.Context, profile domain.TransportProfile, req ors.IsochroneRequest) ([]ors.Isochrone, error) {
			assert.Equal(t, domain.ProfileFootWalking, profile)
			assert.Equal(t, []float64{600}, req.Range)
			return want, nil
		},
	}
	svc := service.NewRouteService(existingTrips(), &mockRouteRepo{}, router, nil, discardLogger())

	got, err := svc.PreviewIsochrones(context.Background(), domain.ProfileFootWalking,
		ors.IsochroneRequest{Locations: []domain.Coordinate{alfama}, Range: []float64{600}})

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRouteService_PreviewMatrix_WrapsError(t *testing.T) {
	router := &mockRouter{
		matrix: func(_ context.Context, _ domain.TransportProfile, _ ors.MatrixRequest) (ors.Matrix, error) {
			return ors.Matrix{}, ors.ErrMissingAPIKey
		},
	}
	svc := service.NewRouteService(existingTrips(), &mockRouteRepo{}, router, nil, discardLogger())

	_, err := svc.PreviewMatrix(context.Background(), domain.ProfileDrivingCar, ors.MatrixRequest{})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
