package handler

import (
	"net/http"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// ReverseGeocode handles GET /geocode/reverse?lat=&lon=. It answers 404
// when the provider knows no place there.
func (s *Server) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	var lat, lon *float64
	if !queryParam(w, r, "lat", &lat) || !queryParam(w, r, "lon", &lon) {
		return
	}
	if lat == nil || lon == nil {
		writeError(w, http.StatusBadRequest, "bad_request", "lat and lon are required")
		return
	}
	at := domain.Coordinate{Lat: *lat, Lon: *lon}
	if !at.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "coordinate out of range")
		return
	}

	place := s.geocoder.Reverse(r.Context(), at)
	if place == nil {
		writeError(w, http.StatusNotFound, "not_found", "no place found")
		return
	}
	writeJSON(w, http.StatusOK, place)
}
