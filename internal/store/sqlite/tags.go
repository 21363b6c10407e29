package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, created_at, updated_at, slug`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&createdAt,
		&updatedAt,
		&t.Slug,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// loadTagBookCount populates the denormalized book count for a tag.
func (s *Store) loadTagBookCount(ctx context.Context, t *domain.Tag) error {
	return s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM book_tags WHERE tag_id = ?`, t.ID).Scan(&t.BookCount)
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists on duplicate ID or slug.
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, created_at, updated_at, slug) VALUES (?, ?, ?, ?)`,
		tag.ID,
		formatTime(tag.CreatedAt),
		formatTime(tag.UpdatedAt),
		tag.Slug,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetTag retrieves a tag by ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadTagBookCount(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagBySlug retrieves a tag by its canonical slug.
// Returns store.ErrNotFound if no tag has that slug.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE slug = ?`, slug)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadTagBookCount(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all tags ordered by slug with book counts populated.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range tags {
		if err := s.loadTagBookCount(ctx, t); err != nil {
			return nil, err
		}
	}
	return tags, nil
}

// DeleteTag performs a hard delete on a tag.
// ON DELETE CASCADE removes its book attachments.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
