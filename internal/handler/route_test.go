package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/handler"
	"github.com/pkordes/vacation-gallery/internal/ors"
	"github.com/pkordes/vacation-gallery/internal/routepath"
)

// mockRouteServicer is a test double for handler.RouteServicer.
type mockRouteServicer struct {
	create            func(ctx context.Context, route domain.Route) (domain.Route, error)
	getByID           func(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error)
	listByTrip        func(ctx context.Context, tripID uuid.UUID) ([]domain.Route, error)
	delete            func(ctx context.Context, tripID, routeID uuid.UUID) error
	regenerate        func(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error)
	path              func(ctx context.Context, tripID, routeID uuid.UUID, opts routepath.Options) (domain.Path, error)
	previewDirections func(ctx context.Context, profile domain.TransportProfile, coords []domain.Coordinate) (ors.Directions, error)
	previewIsochrones func(ctx context.Context, profile domain.TransportProfile, req ors.IsochroneRequest) ([]ors.Isochrone, error)
	previewMatrix     func(ctx context.Context, profile domain.TransportProfile, req ors.MatrixRequest) (ors.Matrix, error)
}

func (m *mockRouteServicer) Create(ctx context.Context, r domain.Route) (domain.Route, error) {
	return m.create(ctx, r)
}
func (m *mockRouteServicer) GetByID(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error) {
	return m.getByID(ctx, tripID, routeID)
}
func (m *mockRouteServicer) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Route, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockRouteServicer) Delete(ctx context.Context, tripID, routeID uuid.UUID) error {
	return m.delete(ctx, tripID, routeID)
}
func (m *mockRouteServicer) Regenerate(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error) {
	return m.regenerate(ctx, tripID, routeID)
}
func (m *mockRouteServicer) Path(ctx context.Context, tripID, routeID uuid.UUID, opts routepath.Options) (domain.Path, error) {
	return m.path(ctx, tripID, routeID, opts)
}
func (m *mockRouteServicer) PreviewDirections(ctx context.Context, profile domain.TransportProfile, coords []domain.Coordinate) (ors.Directions, error) {
	return m.previewDirections(ctx, profile, coords)
}
func (m *mockRouteServicer) PreviewIsochrones(ctx context.Context, profile domain.TransportProfile, req ors.IsochroneRequest) ([]ors.Isochrone, error) {
	return m.previewIsochrones(ctx, profile, req)
}
func (m *mockRouteServicer) PreviewMatrix(ctx context.Context, profile domain.TransportProfile, req ors.MatrixRequest) (ors.Matrix, error) {
	return m.previewMatrix(ctx, profile, req)
}

var _ handler.RouteServicer = (*mockRouteServicer)(nil)

func routeHandler(svc handler.RouteServicer) http.Handler {
	return newHTTPHandler(handler.Services{Trips: &mockTripServicer{}, Routes: svc})
}

func routeURL(tripID, routeID uuid.UUID) string {
	return "/trips/" + tripID.String() + "/routes/" + routeID.String()
}

func routeFixture(tripID uuid.UUID) domain.Route {
	a, b := uuid.New(), uuid.New()
	return domain.Route{
		ID:      uuid.New(),
		TripID:  tripID,
		Title:   "Coast day",
		Profile: domain.ProfileCyclingRegular,
		Stops: []domain.Stop{
			{ID: a, OrderIndex: 0, Coordinate: domain.Coordinate{Lat: 38.71, Lon: -9.13}, Title: "Alfama", Place: domain.Place{City: "Lisbon"}},
			{ID: b, OrderIndex: 1, Coordinate: domain.Coordinate{Lat: 38.69, Lon: -9.42}, Title: "Cascais"},
		},
		Segments: []domain.Segment{
			{ID: uuid.New(), StartStopID: a, EndStopID: b, Distance: 27000, Duration: 5400, Geometry: "_p~iF~ps|U_ulLnnqC"},
		},
	}
}

// ---- POST /trips/{tripId}/routes -------------------------------------------

func TestCreateRoute_201_StopOrderDefaultsToPosition(t *testing.T) {
	tripID := uuid.New()
	var got domain.Route
	svc := &mockRouteServicer{
		create: func(_ context.Context, r domain.Route) (domain.Route, error) {
			got = r
			return routeFixture(tripID), nil
		},
	}

	rec := serve(routeHandler(svc), http.MethodPost, "/trips/"+tripID.String()+"/routes", jsonBody(t, map[string]any{
		"title": "Coast day",
		"stops": []map[string]any{
			{"lat": 38.71, "lon": -9.13, "title": "Alfama"},
			{"lat": 38.69, "lon": -9.42, "title": "Cascais", "order_index": 7},
			{"lat": 38.69, "lon": -9.20},
		},
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, tripID, got.TripID)
	assert.Equal(t, domain.ProfileDrivingCar, got.Profile)
	require.Len(t, got.Stops, 3)
	assert.Equal(t, 0, got.Stops[0].OrderIndex)
	assert.Equal(t, 7, got.Stops[1].OrderIndex)
	assert.Equal(t, 2, got.Stops[2].OrderIndex)

	var resp handler.Route
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Stops, 2)
	require.NotNil(t, resp.Stops[0].Place)
	assert.Nil(t, resp.Stops[1].Place)
	require.Len(t, resp.Segments, 1)
	assert.Equal(t, resp.Stops[0].ID, resp.Segments[0].StartStopID)
}

func TestCreateRoute_502_Upstream(t *testing.T) {
	svc := &mockRouteServicer{
		create: func(_ context.Context, _ domain.Route) (domain.Route, error) {
			return domain.Route{}, &ors.APIError{Endpoint: "directions", Status: 500, Body: "boom"}
		},
	}

	rec := serve(routeHandler(svc), http.MethodPost, "/trips/"+uuid.NewString()+"/routes", jsonBody(t, map[string]any{
		"title": "x", "stops": []map[string]any{{"lat": 1, "lon": 1}, {"lat": 2, "lon": 2}},
	}))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "openrouteservice directions returned status 500", decodeError(t, rec).Message)
}

func TestCreateRoute_503_NoAPIKey(t *testing.T) {
	svc := &mockRouteServicer{
		create: func(_ context.Context, _ domain.Route) (domain.Route, error) {
			return domain.Route{}, ors.ErrMissingAPIKey
		},
	}

	rec := serve(routeHandler(svc), http.MethodPost, "/trips/"+uuid.NewString()+"/routes", jsonBody(t, map[string]any{
		"title": "x", "stops": []map[string]any{{"lat": 1, "lon": 1}, {"lat": 2, "lon": 2}},
	}))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "openrouteservice API key is not set", decodeError(t, rec).Message)
}

// ---- GET /trips/{tripId}/routes --------------------------------------------

func TestListRoutes_200_NoSegments(t *testing.T) {
	tripID := uuid.New()
	listed := routeFixture(tripID)
	listed.Segments = nil
	svc := &mockRouteServicer{
		listByTrip: func(_ context.Context, _ uuid.UUID) ([]domain.Route, error) { return []domain.Route{listed}, nil },
	}

	rec := serve(routeHandler(svc), http.MethodGet, "/trips/"+tripID.String()+"/routes", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var raw []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	require.Len(t, raw, 1)
	assert.NotContains(t, raw[0], "segments")
	assert.Equal(t, "cycling-regular", raw[0]["profile"])
}

// ---- single route ----------------------------------------------------------

func TestGetRoute_404(t *testing.T) {
	svc := &mockRouteServicer{
		getByID: func(_ context.Context, _, _ uuid.UUID) (domain.Route, error) { return domain.Route{}, domain.ErrNotFound },
	}

	rec := serve(routeHandler(svc), http.MethodGet, routeURL(uuid.New(), uuid.New()), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", decodeError(t, rec).Message)
}

func TestDeleteRoute_204(t *testing.T) {
	svc := &mockRouteServicer{
		delete: func(_ context.Context, _, _ uuid.UUID) error { return nil },
	}

	rec := serve(routeHandler(svc), http.MethodDelete, routeURL(uuid.New(), uuid.New()), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRegenerateRoute_200(t *testing.T) {
	tripID := uuid.New()
	fixture := routeFixture(tripID)
	svc := &mockRouteServicer{
		regenerate: func(_ context.Context, gotTrip, gotRoute uuid.UUID) (domain.Route, error) {
			assert.Equal(t, tripID, gotTrip)
			assert.Equal(t, fixture.ID, gotRoute)
			return fixture, nil
		},
	}

	rec := serve(routeHandler(svc), http.MethodPost, routeURL(tripID, fixture.ID)+"/regenerate", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.Route
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Segments, 1)
}

// ---- GET .../path ----------------------------------------------------------

func TestGetRoutePath_DefaultOptions(t *testing.T) {
	var gotOpts routepath.Options
	bounds := domain.BBox{MinLat: 1, MinLon: 2, MaxLat: 3, MaxLon: 4}
	svc := &mockRouteServicer{
		path: func(_ context.Context, _, routeID uuid.UUID, opts routepath.Options) (domain.Path, error) {
			gotOpts = opts
			return domain.Path{
				RouteID:  routeID,
				Points:   []domain.Coordinate{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}},
				Smoothed: []domain.Coordinate{{Lat: 1, Lon: 2}, {Lat: 2, Lon: 3}, {Lat: 3, Lon: 4}},
				Bounds:   &bounds,
				Distance: 1234,
			}, nil
		},
	}

	rec := serve(routeHandler(svc), http.MethodGet, routeURL(uuid.New(), uuid.New())+"/path", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotOpts.NoSmoothing)
	assert.Equal(t, routepath.DefaultSmoothOptions(), gotOpts.Smooth)
	assert.Zero(t, gotOpts.Tolerance)

	var resp handler.Path
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Points, 2)
	assert.Len(t, resp.Smoothed, 3)
	require.NotNil(t, resp.Bounds)
	assert.Equal(t, bounds, *resp.Bounds)
}

func TestGetRoutePath_QueryOptions(t *testing.T) {
	var gotOpts routepath.Options
	svc := &mockRouteServicer{
		path: func(_ context.Context, _, _ uuid.UUID, opts routepath.Options) (domain.Path, error) {
			gotOpts = opts
			return domain.Path{}, nil
		},
	}

	rec := serve(routeHandler(svc), http.MethodGet, routeURL(uuid.New(), uuid.New())+"/path?smooth=false&tolerance=0.0005", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOpts.NoSmoothing)
	assert.InDelta(t, 0.0005, gotOpts.Tolerance, 1e-12)
	assert.False(t, gotOpts.AutoTolerance)

	rec = serve(routeHandler(svc), http.MethodGet, routeURL(uuid.New(), uuid.New())+"/path?simplify=true", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOpts.AutoTolerance)
	assert.False(t, gotOpts.NoSmoothing)
}

func TestGetRoutePath_BadQuery(t *testing.T) {
	h := routeHandler(&mockRouteServicer{})

	rec := serve(h, http.MethodGet, routeURL(uuid.New(), uuid.New())+"/path?smooth=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodGet, routeURL(uuid.New(), uuid.New())+"/path?tolerance=-1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- /planning -------------------------------------------------------------

func TestPlanDirections_200(t *testing.T) {
	svc := &mockRouteServicer{
		previewDirections: func(_ context.Context, profile domain.TransportProfile, coords []domain.Coordinate) (ors.Directions, error) {
			assert.Equal(t, domain.ProfileFootHiking, profile)
			assert.Len(t, coords, 2)
			return ors.Directions{Routes: []ors.DirectionsRoute{{Distance: 900, Geometry: "abc"}}}, nil
		},
	}

	rec := serve(routeHandler(svc), http.MethodPost, "/planning/directions", jsonBody(t, map[string]any{
		"profile":     "foot-hiking",
		"coordinates": []map[string]float64{{"lat": 1, "lon": 2}, {"lat": 3, "lon": 4}},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ors.Directions
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Routes, 1)
	assert.InDelta(t, 900, resp.Routes[0].Distance, 1e-9)
}

func TestPlanIsochrones_200_DefaultProfile(t *testing.T) {
	svc := &mockRouteServicer{
		previewIsochrones: func(_ context.Context, profile domain.TransportProfile, req ors.IsochroneRequest) ([]ors.Isochrone, error) {
			assert.Equal(t, domain.ProfileDrivingCar, profile)
			assert.Equal(t, []float64{300, 600}, req.Range)
			assert.Equal(t, ors.RangeTime, req.RangeType)
			return nil, nil
		},
	}

	rec := serve(routeHandler(svc), http.MethodPost, "/planning/isochrones", jsonBody(t, map[string]any{
		"locations":  []map[string]float64{{"lat": 38.7, "lon": -9.1}},
		"range":      []float64{300, 600},
		"range_type": "time",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isochrones":[]}`, rec.Body.String())
}

func TestPlanMatrix_422(t *testing.T) {
	svc := &mockRouteServicer{
		previewMatrix: func(_ context.Context, _ domain.TransportProfile, _ ors.MatrixRequest) (ors.Matrix, error) {
			return ors.Matrix{}, domain.ErrValidation
		},
	}

	rec := serve(routeHandler(svc), http.MethodPost, "/planning/matrix", jsonBody(t, map[string]any{
		"locations": []map[string]float64{{"lat": 1, "lon": 1}},
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
