package handler

import (
	"net/http"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/ors"
)

// DirectionsRequest is the body of POST /planning/directions.
type DirectionsRequest struct {
	Profile     domain.TransportProfile `json:"profile"`
	Coordinates []domain.Coordinate     `json:"coordinates"`
}

// IsochronesRequest is the body of POST /planning/isochrones.
type IsochronesRequest struct {
	Profile domain.TransportProfile `json:"profile"`
	ors.IsochroneRequest
}

// IsochronesResponse wraps the polygons returned by /planning/isochrones.
type IsochronesResponse struct {
	Isochrones []ors.Isochrone `json:"isochrones"`
}

// MatrixRequest is the body of POST /planning/matrix.
type MatrixRequest struct {
	Profile domain.TransportProfile `json:"profile"`
	ors.MatrixRequest
}

// PlanDirections handles POST /planning/directions. Nothing is stored.
func (s *Server) PlanDirections(w http.ResponseWriter, r *http.Request) {
	var body DirectionsRequest
	if !decodeBody(w, r, &body) {
		return
	}
	d, err := s.routes.PreviewDirections(r.Context(), profileOrDefault(body.Profile), body.Coordinates)
	if err != nil {
		s.writeServiceError(w, r, err, "no route found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// PlanIsochrones handles POST /planning/isochrones.
func (s *Server) PlanIsochrones(w http.ResponseWriter, r *http.Request) {
	var body IsochronesRequest
	if !decodeBody(w, r, &body) {
		return
	}
	isos, err := s.routes.PreviewIsochrones(r.Context(), profileOrDefault(body.Profile), body.IsochroneRequest)
	if err != nil {
		s.writeServiceError(w, r, err, "no isochrone found")
		return
	}
	if isos == nil {
		isos = []ors.Isochrone{}
	}
	writeJSON(w, http.StatusOK, IsochronesResponse{Isochrones: isos})
}

// PlanMatrix handles POST /planning/matrix.
func (s *Server) PlanMatrix(w http.ResponseWriter, r *http.Request) {
	var body MatrixRequest
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.routes.PreviewMatrix(r.Context(), profileOrDefault(body.Profile), body.MatrixRequest)
	if err != nil {
		s.writeServiceError(w, r, err, "no matrix found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func profileOrDefault(p domain.TransportProfile) domain.TransportProfile {
	if p == "" {
		return domain.ProfileDrivingCar
	}
	return p
}
