package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// Photo is the JSON representation of a photo. Place is omitted until the
// position has been geocoded.
type Photo struct {
	ID          uuid.UUID     `json:"id"`
	TripID      uuid.UUID     `json:"trip_id"`
	Filename    string        `json:"filename"`
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	TakenAt     *time.Time    `json:"taken_at,omitempty"`
	Latitude    *float64      `json:"latitude,omitempty"`
	Longitude   *float64      `json:"longitude,omitempty"`
	Place       *domain.Place `json:"place,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PhotoRequest is the body of POST and PUT on photos.
type PhotoRequest struct {
	Filename    string     `json:"filename"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	TakenAt     *time.Time `json:"taken_at,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
}

// CreatePhoto handles POST /trips/{tripId}/photos.
func (s *Server) CreatePhoto(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body PhotoRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.photos.Create(r.Context(), requestToPhoto(tripID, uuid.Nil, body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, photoToResponse(created))
}

// ListPhotos handles GET /trips/{tripId}/photos?page=&limit=.
func (s *Server) ListPhotos(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	params, ok := pagination(w, r)
	if !ok {
		return
	}

	page, err := s.photos.ListByTripPaged(r.Context(), tripID, params)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	data := make([]Photo, len(page.Items))
	for i, p := range page.Items {
		data[i] = photoToResponse(p)
	}
	writeJSON(w, http.StatusOK, List[Photo]{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(page.Total)},
	})
}

// GetPhoto handles GET /trips/{tripId}/photos/{photoId}.
func (s *Server) GetPhoto(w http.ResponseWriter, r *http.Request) {
	tripID, photoID, ok := photoPath(w, r)
	if !ok {
		return
	}
	photo, err := s.photos.GetByID(r.Context(), tripID, photoID)
	if err != nil {
		s.writeServiceError(w, r, err, "photo not found")
		return
	}
	writeJSON(w, http.StatusOK, photoToResponse(photo))
}

// UpdatePhoto handles PUT /trips/{tripId}/photos/{photoId}.
func (s *Server) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	tripID, photoID, ok := photoPath(w, r)
	if !ok {
		return
	}
	var body PhotoRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.photos.Update(r.Context(), requestToPhoto(tripID, photoID, body))
	if err != nil {
		s.writeServiceError(w, r, err, "photo not found")
		return
	}
	writeJSON(w, http.StatusOK, photoToResponse(updated))
}

// DeletePhoto handles DELETE /trips/{tripId}/photos/{photoId}.
func (s *Server) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	tripID, photoID, ok := photoPath(w, r)
	if !ok {
		return
	}
	if err := s.photos.Delete(r.Context(), tripID, photoID); err != nil {
		s.writeServiceError(w, r, err, "photo not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GeocodePhotos handles POST /trips/{tripId}/photos/geocode. It resolves
// the place of every positioned photo of the trip that has none yet.
func (s *Server) GeocodePhotos(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	result, err := s.photos.EnrichTrip(r.Context(), tripID)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- mapping helpers --------------------------------------------------------

func photoPath(w http.ResponseWriter, r *http.Request) (tripID, photoID uuid.UUID, ok bool) {
	if tripID, ok = pathUUID(w, r, "tripId"); !ok {
		return
	}
	photoID, ok = pathUUID(w, r, "photoId")
	return
}

func requestToPhoto(tripID, photoID uuid.UUID, body PhotoRequest) domain.Photo {
	return domain.Photo{
		ID:          photoID,
		TripID:      tripID,
		Filename:    body.Filename,
		Title:       derefString(body.Title),
		Description: derefString(body.Description),
		TakenAt:     body.TakenAt,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
	}
}

func photoToResponse(p domain.Photo) Photo {
	resp := Photo{
		ID:          p.ID,
		TripID:      p.TripID,
		Filename:    p.Filename,
		Title:       optionalString(p.Title),
		Description: optionalString(p.Description),
		TakenAt:     p.TakenAt,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if !p.Place.IsZero() {
		place := p.Place
		resp.Place = &place
	}
	return resp
}
