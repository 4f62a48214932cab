package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// TagRepo defines the persistence operations for Tags and the photo_tags
// join table.
type TagRepo interface {
	// Upsert inserts a tag by slug or returns the existing one. The name of
	// the first creator is kept.
	Upsert(ctx context.Context, name, slug string) (domain.Tag, error)

	// List returns tags whose slug starts with prefix, ordered by slug.
	List(ctx context.Context, prefix string) ([]domain.Tag, error)

	// ListPaged returns one page of List and the total count.
	ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error)

	// AddToPhoto links a tag to a photo. Linking twice is not an error.
	AddToPhoto(ctx context.Context, photoID, tagID uuid.UUID) error

	// RemoveFromPhoto unlinks a tag by slug. Returns domain.ErrNotFound if
	// the tag was not linked.
	RemoveFromPhoto(ctx context.Context, photoID uuid.UUID, slug string) error

	// ListByPhoto returns the tags of a photo, ordered by slug.
	ListByPhoto(ctx context.Context, photoID uuid.UUID) ([]domain.Tag, error)
}

type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by db.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// Upsert uses DO UPDATE instead of DO NOTHING so RETURNING also yields the
// existing row on conflict.
func (r *pgTagRepo) Upsert(ctx context.Context, name, slug string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (name, slug)
		VALUES (@name, @slug)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, name, slug, created_at`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name, "slug": slug}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgTagRepo) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	const q = `
		SELECT id, name, slug, created_at
		FROM tags
		WHERE slug LIKE @prefix || '%'
		ORDER BY slug`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"prefix": prefix})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	tags, _, err := collectTags(rows, false)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	return tags, nil
}

func (r *pgTagRepo) ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	const q = `
		SELECT id, name, slug, created_at, count(*) OVER () AS total
		FROM tags
		WHERE slug LIKE @prefix || '%'
		ORDER BY slug
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"prefix": prefix, "limit": p.Limit, "offset": p.Offset()}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: %w", err)
	}
	tags, total, err := collectTags(rows, true)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: %w", err)
	}

	if len(tags) == 0 && p.Offset() > 0 {
		const countQ = `SELECT count(*) FROM tags WHERE slug LIKE @prefix || '%'`
		if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"prefix": prefix}).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: count: %w", err)
		}
	}
	return tags, total, nil
}

func (r *pgTagRepo) AddToPhoto(ctx context.Context, photoID, tagID uuid.UUID) error {
	const q = `
		INSERT INTO photo_tags (photo_id, tag_id)
		VALUES (@photo_id, @tag_id)
		ON CONFLICT (photo_id, tag_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"photo_id": photoID, "tag_id": tagID}); err != nil {
		return fmt.Errorf("repo.TagRepo.AddToPhoto: %w", err)
	}
	return nil
}

func (r *pgTagRepo) RemoveFromPhoto(ctx context.Context, photoID uuid.UUID, slug string) error {
	const q = `
		DELETE FROM photo_tags
		WHERE photo_id = @photo_id
		  AND tag_id = (SELECT id FROM tags WHERE slug = @slug)`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"photo_id": photoID, "slug": slug})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.RemoveFromPhoto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.RemoveFromPhoto: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTagRepo) ListByPhoto(ctx context.Context, photoID uuid.UUID) ([]domain.Tag, error) {
	const q = `
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN photo_tags pt ON pt.tag_id = t.id
		WHERE pt.photo_id = @photo_id
		ORDER BY t.slug`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"photo_id": photoID})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByPhoto: %w", err)
	}
	tags, _, err := collectTags(rows, false)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByPhoto: %w", err)
	}
	return tags, nil
}

func collectTags(rows pgx.Rows, withTotal bool) ([]domain.Tag, int64, error) {
	defer rows.Close()

	tags := []domain.Tag{}
	var total int64
	for rows.Next() {
		var (
			tag domain.Tag
			err error
		)
		if withTotal {
			tag, err = scanTagWithTotal(rows, &total)
		} else {
			tag, err = scanTag(rows)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}
	return tags, total, nil
}

func scanTag(s scanner) (domain.Tag, error) {
	return scanTagWithTotal(s, nil)
}

func scanTagWithTotal(s scanner, total *int64) (domain.Tag, error) {
	var (
		t  domain.Tag
		id pgtype.UUID
	)
	dest := []any{&id, &t.Name, &t.Slug, &t.CreatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
