package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// Trip is the JSON representation of a trip.
type Trip struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	StartDate openapi_types.Date  `json:"start_date"`
	EndDate   *openapi_types.Date `json:"end_date,omitempty"`
	Notes     *string             `json:"notes,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// TripRequest is the body of POST /trips and PUT /trips/{tripId}.
type TripRequest struct {
	Name      string              `json:"name"`
	StartDate openapi_types.Date  `json:"start_date"`
	EndDate   *openapi_types.Date `json:"end_date,omitempty"`
	Notes     *string             `json:"notes,omitempty"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// List is the envelope of every paged list response.
type List[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.trips.Create(r.Context(), requestToTrip(uuid.Nil, body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := s.trips.ListPaged(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	data := make([]Trip, len(page.Items))
	for i, t := range page.Items {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, List[Trip]{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(page.Total)},
	})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripId}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.trips.Update(r.Context(), requestToTrip(id, body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func requestToTrip(id uuid.UUID, body TripRequest) domain.Trip {
	t := domain.Trip{
		ID:        id,
		Name:      body.Name,
		StartDate: body.StartDate.Time,
		Notes:     derefString(body.Notes),
	}
	if body.EndDate != nil {
		ed := body.EndDate.Time
		t.EndDate = &ed
	}
	return t
}

func tripToResponse(t domain.Trip) Trip {
	resp := Trip{
		ID:        t.ID,
		Name:      t.Name,
		StartDate: openapi_types.Date{Time: t.StartDate},
		Notes:     optionalString(t.Notes),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.EndDate != nil {
		resp.EndDate = &openapi_types.Date{Time: *t.EndDate}
	}
	return resp
}
