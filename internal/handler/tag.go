package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// Tag is the JSON representation of a tag.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// TagRequest is the body of POST .../tags.
type TagRequest struct {
	Name string `json:"name"`
}

// ListTags handles GET /tags.
// The optional ?q= parameter filters tags by slug prefix.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	var q *string
	if !queryParam(w, r, "q", &q) {
		return
	}
	params, ok := pagination(w, r)
	if !ok {
		return
	}

	page, err := s.tags.ListPaged(r.Context(), derefString(q), params)
	if err != nil {
		s.writeServiceError(w, r, err, "tag not found")
		return
	}
	writeJSON(w, http.StatusOK, List[Tag]{
		Data:       tagsToResponse(page.Items),
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(page.Total)},
	})
}

// ListPhotoTags handles GET /trips/{tripId}/photos/{photoId}/tags.
func (s *Server) ListPhotoTags(w http.ResponseWriter, r *http.Request) {
	tripID, photoID, ok := photoPath(w, r)
	if !ok {
		return
	}
	tags, err := s.tags.ListByPhoto(r.Context(), tripID, photoID)
	if err != nil {
		s.writeServiceError(w, r, err, "photo not found")
		return
	}
	writeJSON(w, http.StatusOK, tagsToResponse(tags))
}

// AddPhotoTag handles POST /trips/{tripId}/photos/{photoId}/tags.
func (s *Server) AddPhotoTag(w http.ResponseWriter, r *http.Request) {
	tripID, photoID, ok := photoPath(w, r)
	if !ok {
		return
	}
	var body TagRequest
	if !decodeBody(w, r, &body) {
		return
	}

	tag, err := s.tags.AddToPhoto(r.Context(), tripID, photoID, body.Name)
	if err != nil {
		s.writeServiceError(w, r, err, "photo not found")
		return
	}
	writeJSON(w, http.StatusCreated, tagToResponse(tag))
}

// RemovePhotoTag handles DELETE /trips/{tripId}/photos/{photoId}/tags/{slug}.
func (s *Server) RemovePhotoTag(w http.ResponseWriter, r *http.Request) {
	tripID, photoID, ok := photoPath(w, r)
	if !ok {
		return
	}
	if err := s.tags.RemoveFromPhoto(r.Context(), tripID, photoID, chi.URLParam(r, "slug")); err != nil {
		s.writeServiceError(w, r, err, "tag not linked to photo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func tagToResponse(t domain.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name, Slug: t.Slug, CreatedAt: t.CreatedAt}
}

func tagsToResponse(tags []domain.Tag) []Tag {
	out := make([]Tag, len(tags))
	for i, t := range tags {
		out[i] = tagToResponse(t)
	}
	return out
}
