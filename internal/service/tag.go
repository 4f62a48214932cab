package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/pkordes/vacation-gallery/internal/domain"
	"github.com/pkordes/vacation-gallery/internal/repo"
)

// TagService implements business logic for photo tags. Tag identity is the
// slug: lowercase letters and digits joined by single hyphens.
type TagService struct {
	tags   repo.TagRepo
	photos repo.PhotoRepo
}

// NewTagService constructs a TagService.
func NewTagService(tags repo.TagRepo, photos repo.PhotoRepo) *TagService {
	return &TagService{tags: tags, photos: photos}
}

// UpsertByName returns the tag for name, creating it on first use.
func (s *TagService) UpsertByName(ctx context.Context, name string) (domain.Tag, error) {
	name = strings.TrimSpace(name)
	slug := Slugify(name)
	if slug == "" {
		return domain.Tag{}, fmt.Errorf("%w: tag name must contain a letter or digit", domain.ErrValidation)
	}
	tag, err := s.tags.Upsert(ctx, name, slug)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.UpsertByName: %w", err)
	}
	return tag, nil
}

// List returns tags whose slug starts with the normalised prefix.
func (s *TagService) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx, Slugify(prefix))
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, nil
}

// ListPaged is List one page at a time.
func (s *TagService) ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) (domain.Page[domain.Tag], error) {
	tags, total, err := s.tags.ListPaged(ctx, Slugify(prefix), p)
	if err != nil {
		return domain.Page[domain.Tag]{}, fmt.Errorf("service.TagService.ListPaged: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return domain.Page[domain.Tag]{Items: tags, Total: total}, nil
}

// AddToPhoto tags a photo of tripID with name and returns the tag.
func (s *TagService) AddToPhoto(ctx context.Context, tripID, photoID uuid.UUID, name string) (domain.Tag, error) {
	if _, err := s.photos.GetByID(ctx, tripID, photoID); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.AddToPhoto: %w", err)
	}
	tag, err := s.UpsertByName(ctx, name)
	if err != nil {
		return domain.Tag{}, err
	}
	if err := s.tags.AddToPhoto(ctx, photoID, tag.ID); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.AddToPhoto: %w", err)
	}
	return tag, nil
}

// RemoveFromPhoto unlinks the tag with slug from a photo of tripID.
func (s *TagService) RemoveFromPhoto(ctx context.Context, tripID, photoID uuid.UUID, slug string) error {
	if _, err := s.photos.GetByID(ctx, tripID, photoID); err != nil {
		return fmt.Errorf("service.TagService.RemoveFromPhoto: %w", err)
	}
	if err := s.tags.RemoveFromPhoto(ctx, photoID, Slugify(slug)); err != nil {
		return fmt.Errorf("service.TagService.RemoveFromPhoto: %w", err)
	}
	return nil
}

// ListByPhoto returns the tags of a photo of tripID.
func (s *TagService) ListByPhoto(ctx context.Context, tripID, photoID uuid.UUID) ([]domain.Tag, error) {
	if _, err := s.photos.GetByID(ctx, tripID, photoID); err != nil {
		return nil, fmt.Errorf("service.TagService.ListByPhoto: %w", err)
	}
	tags, err := s.tags.ListByPhoto(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.ListByPhoto: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, nil
}

// Slugify lowercases s and joins its runs of letters and digits with
// single hyphens. "Rocky  Mountains!" becomes "rocky-mountains".
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
