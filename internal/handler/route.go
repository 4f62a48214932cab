package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/routepath"
)

// Route is the JSON representation of a route. Segments is omitted in
// list responses.
type Route struct {
	ID        uuid.UUID               `json:"id"`
	TripID    uuid.UUID               `json:"trip_id"`
	Title     string                  `json:"title"`
	Profile   domain.TransportProfile `json:"profile"`
	Stops     []Stop                  `json:"stops"`
	Segments  []Segment               `json:"segments,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Stop is one waypoint of a route.
type Stop struct {
	ID          uuid.UUID     `json:"id"`
	OrderIndex  int           `json:"order_index"`
	Lat         float64       `json:"lat"`
	Lon         float64       `json:"lon"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Place       *domain.Place `json:"place,omitempty"`
}

// Segment is the routed leg between two consecutive stops. Geometry is an
// encoded polyline.
type Segment struct {
	ID          uuid.UUID `json:"id"`
	StartStopID uuid.UUID `json:"start_stop_id"`
	EndStopID   uuid.UUID `json:"end_stop_id"`
	Distance    float64   `json:"distance"`
	Duration    float64   `json:"duration"`
	Geometry    string    `json:"geometry"`
}

// RouteRequest is the body of POST /trips/{tripId}/routes.
type RouteRequest struct {
	Title   string                  `json:"title"`
	Profile domain.TransportProfile `json:"profile"`
	Stops   []StopRequest           `json:"stops"`
}

// StopRequest is one stop of a RouteRequest. Without order_index the stop
// keeps its position in the list.
type StopRequest struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	OrderIndex  *int    `json:"order_index,omitempty"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Path is the JSON representation of an aggregated route path.
type Path struct {
	RouteID         uuid.UUID           `json:"route_id"`
	Points          []domain.Coordinate `json:"points"`
	Smoothed        []domain.Coordinate `json:"smoothed"`
	Bounds          *domain.BBox        `json:"bounds,omitempty"`
	Distance        float64             `json:"distance"`
	Duration        float64             `json:"duration"`
	SkippedSegments []uuid.UUID         `json:"skipped_segments,omitempty"`
}

// CreateRoute handles POST /trips/{tripId}/routes.
func (s *Server) CreateRoute(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body RouteRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Profile == "" {
		body.Profile = domain.ProfileDrivingCar
	}

	created, err := s.routes.Create(r.Context(), requestToRoute(tripID, body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, routeToResponse(created))
}

// ListRoutes handles GET /trips/{tripId}/routes.
func (s *Server) ListRoutes(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	routes, err := s.routes.ListByTrip(r.Context(), tripID)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	out := make([]Route, len(routes))
	for i, rt := range routes {
		out[i] = routeToResponse(rt)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRoute handles GET /trips/{tripId}/routes/{routeId}.
func (s *Server) GetRoute(w http.ResponseWriter, r *http.Request) {
	tripID, routeID, ok := routePath(w, r)
	if !ok {
		return
	}
	route, err := s.routes.GetByID(r.Context(), tripID, routeID)
	if err != nil {
		s.writeServiceError(w, r, err, "route not found")
		return
	}
	writeJSON(w, http.StatusOK, routeToResponse(route))
}

// DeleteRoute handles DELETE /trips/{tripId}/routes/{routeId}.
func (s *Server) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	tripID, routeID, ok := routePath(w, r)
	if !ok {
		return
	}
	if err := s.routes.Delete(r.Context(), tripID, routeID); err != nil {
		s.writeServiceError(w, r, err, "route not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegenerateRoute handles POST /trips/{tripId}/routes/{routeId}/regenerate.
func (s *Server) RegenerateRoute(w http.ResponseWriter, r *http.Request) {
	tripID, routeID, ok := routePath(w, r)
	if !ok {
		return
	}
	route, err := s.routes.Regenerate(r.Context(), tripID, routeID)
	if err != nil {
		s.writeServiceError(w, r, err, "route not found")
		return
	}
	writeJSON(w, http.StatusOK, routeToResponse(route))
}

// GetRoutePath handles GET /trips/{tripId}/routes/{routeId}/path.
// ?smooth=false skips the curve fitting. ?tolerance= (degrees) simplifies
// the merged line first; ?simplify=true picks a tolerance from the bounds.
func (s *Server) GetRoutePath(w http.ResponseWriter, r *http.Request) {
	tripID, routeID, ok := routePath(w, r)
	if !ok {
		return
	}
	var (
		smooth    *bool
		simplify  *bool
		tolerance *float64
	)
	if !queryParam(w, r, "smooth", &smooth) ||
		!queryParam(w, r, "simplify", &simplify) ||
		!queryParam(w, r, "tolerance", &tolerance) {
		return
	}
	opts := routepath.Options{Smooth: routepath.DefaultSmoothOptions()}
	if smooth != nil && !*smooth {
		opts.NoSmoothing = true
	}
	opts.AutoTolerance = simplify != nil && *simplify
	if tolerance != nil {
		if *tolerance < 0 {
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "tolerance must not be negative")
			return
		}
		opts.Tolerance = *tolerance
	}

	path, err := s.routes.Path(r.Context(), tripID, routeID, opts)
	if err != nil {
		s.writeServiceError(w, r, err, "route not found")
		return
	}
	writeJSON(w, http.StatusOK, Path{
		RouteID:         path.RouteID,
		Points:          path.Points,
		Smoothed:        path.Smoothed,
		Bounds:          path.Bounds,
		Distance:        path.Distance,
		Duration:        path.Duration,
		SkippedSegments: path.SkippedSegments,
	})
}

// --- mapping helpers --------------------------------------------------------

func routePath(w http.ResponseWriter, r *http.Request) (tripID, routeID uuid.UUID, ok bool) {
	if tripID, ok = pathUUID(w, r, "tripId"); !ok {
		return
	}
	routeID, ok = pathUUID(w, r, "routeId")
	return
}

func requestToRoute(tripID uuid.UUID, body RouteRequest) domain.Route {
	stops := make([]domain.Stop, len(body.Stops))
	for i, st := range body.Stops {
		order := i
		if st.OrderIndex != nil {
			order = *st.OrderIndex
		}
		stops[i] = domain.Stop{
			Coordinate:  domain.Coordinate{Lat: st.Lat, Lon: st.Lon},
			OrderIndex:  order,
			Title:       st.Title,
			Description: st.Description,
		}
	}
	return domain.Route{TripID: tripID, Title: body.Title, Profile: body.Profile, Stops: stops}
}

func routeToResponse(rt domain.Route) Route {
	resp := Route{
		ID:        rt.ID,
		TripID:    rt.TripID,
		Title:     rt.Title,
		Profile:   rt.Profile,
		Stops:     make([]Stop, len(rt.Stops)),
		CreatedAt: rt.CreatedAt,
		UpdatedAt: rt.UpdatedAt,
	}
	for i, st := range rt.Stops {
		resp.Stops[i] = Stop{
			ID:          st.ID,
			OrderIndex:  st.OrderIndex,
			Lat:         st.Coordinate.Lat,
			Lon:         st.Coordinate.Lon,
			Title:       st.Title,
			Description: st.Description,
		}
		if !st.Place.IsZero() {
			place := st.Place
			resp.Stops[i].Place = &place
		}
	}
	for _, seg := range rt.Segments {
		resp.Segments = append(resp.Segments, Segment{
			ID:          seg.ID,
			StartStopID: seg.StartStopID,
			EndStopID:   seg.EndStopID,
			Distance:    seg.Distance,
			Duration:    seg.Duration,
			Geometry:    seg.Geometry,
		})
	}
	return resp
}
