// Package handler implements the HTTP API of the gallery.
// Handlers are methods on Server and are split into one file per resource;
// Routes mounts them on a chi router.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/ors"
	"github.com/pkordes/vacation-gallery/internal/routepath"
	"github.com/pkordes/vacation-gallery/internal/service"
)

// TripServicer defines the trip operations the handlers depend on.
// Interfaces live here, in the consumer, so tests can inject mocks.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Trip], error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PhotoServicer defines the photo operations the handlers depend on.
type PhotoServicer interface {
	Create(ctx context.Context, photo domain.Photo) (domain.Photo, error)
	GetByID(ctx context.Context, tripID, photoID uuid.UUID) (domain.Photo, error)
	ListByTripPaged(ctx context.Context, tripID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Photo], error)
	Update(ctx context.Context, photo domain.Photo) (domain.Photo, error)
	Delete(ctx context.Context, tripID, photoID uuid.UUID) error
	EnrichTrip(ctx context.Context, tripID uuid.UUID) (service.EnrichResult, error)
}

// TagServicer defines the tag operations the handlers depend on.
type TagServicer interface {
	ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) (domain.Page[domain.Tag], error)
	AddToPhoto(ctx context.Context, tripID, photoID uuid.UUID, name string) (domain.Tag, error)
	RemoveFromPhoto(ctx context.Context, tripID, photoID uuid.UUID, slug string) error
	ListByPhoto(ctx context.Context, tripID, photoID uuid.UUID) ([]domain.Tag, error)
}

// RouteServicer defines the route and planning operations the handlers
// depend on.
type RouteServicer interface {
	Create(ctx context.Context, route domain.Route) (domain.Route, error)
	GetByID(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Route, error)
	Delete(ctx context.Context, tripID, routeID uuid.UUID) error
	Regenerate(ctx context.Context, tripID, routeID uuid.UUID) (domain.Route, error)
	Path(ctx context.Context, tripID, routeID uuid.UUID, opts routepath.Options) (domain.Path, error)
	PreviewDirections(ctx context.Context, profile domain.TransportProfile, coords []domain.Coordinate) (ors.Directions, error)
	PreviewIsochrones(ctx context.Context, profile domain.TransportProfile, req ors.IsochroneRequest) ([]ors.Isochrone, error)
	PreviewMatrix(ctx context.Context, profile domain.TransportProfile, req ors.MatrixRequest) (ors.Matrix, error)
}

// ExportServicer produces the flat export table.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Services bundles the dependencies of Server. A nil field disables the
// endpoints that need it; they answer 503.
type Services struct {
	Trips    TripServicer
	Photos   PhotoServicer
	Tags     TagServicer
	Routes   RouteServicer
	Export   ExportServicer
	Geocoder service.Geocoder
}

// Server holds the handler dependencies.
type Server struct {
	trips    TripServicer
	photos   PhotoServicer
	tags     TagServicer
	routes   RouteServicer
	export   ExportServicer
	geocoder service.Geocoder
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, log *slog.Logger) *Server {
	return &Server{
		trips:    svc.Trips,
		photos:   svc.Photos,
		tags:     svc.Tags,
		routes:   svc.Routes,
		export:   svc.Export,
		geocoder: svc.Geocoder,
		log:      log,
	}
}

// Routes returns the API as an http.Handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/trips", func(r chi.Router) {
		r.Use(s.require(s.trips != nil, "trips"))
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Route("/{tripId}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)

			r.Route("/photos", func(r chi.Router) {
				r.Use(s.require(s.photos != nil, "photos"))
				r.Get("/", s.ListPhotos)
				r.Post("/", s.CreatePhoto)
				r.Post("/geocode", s.GeocodePhotos)
				r.Route("/{photoId}", func(r chi.Router) {
					r.Get("/", s.GetPhoto)
					r.Put("/", s.UpdatePhoto)
					r.Delete("/", s.DeletePhoto)
					r.With(s.require(s.tags != nil, "tags")).Route("/tags", func(r chi.Router) {
						r.Get("/", s.ListPhotoTags)
						r.Post("/", s.AddPhotoTag)
						r.Delete("/{slug}", s.RemovePhotoTag)
					})
				})
			})

			r.Route("/routes", func(r chi.Router) {
				r.Use(s.require(s.routes != nil, "routes"))
				r.Get("/", s.ListRoutes)
				r.Post("/", s.CreateRoute)
				r.Route("/{routeId}", func(r chi.Router) {
					r.Get("/", s.GetRoute)
					r.Delete("/", s.DeleteRoute)
					r.Post("/regenerate", s.RegenerateRoute)
					r.Get("/path", s.GetRoutePath)
				})
			})
		})
	})

	r.With(s.require(s.tags != nil, "tags")).Get("/tags", s.ListTags)

	r.Route("/planning", func(r chi.Router) {
		r.Use(s.require(s.routes != nil, "routing"))
		r.Post("/directions", s.PlanDirections)
		r.Post("/isochrones", s.PlanIsochrones)
		r.Post("/matrix", s.PlanMatrix)
	})

	r.With(s.require(s.export != nil, "export")).Get("/export", s.GetExport)
	r.With(s.require(s.geocoder != nil, "geocoding")).Get("/geocode/reverse", s.ReverseGeocode)

	return r
}

// require short-circuits with 503 when a dependency was not wired.
func (s *Server) require(ok bool, what string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if ok {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusServiceUnavailable, "not_configured", what+" is not available")
		})
	}
}
