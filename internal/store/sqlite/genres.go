package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/store"
)

// genreColumns is the ordered list of columns selected in genre queries.
// Must match the scan order in scanGenre.
const genreColumns = `id, created_at, updated_at, name, slug, description`

// scanGenre scans a sql.Row (or sql.Rows via its Scan method) into a domain.Genre.
func scanGenre(scanner interface{ Scan(dest ...any) error }) (*domain.Genre, error) {
	var g domain.Genre

	var (
		createdAt   string
		updatedAt   string
		description sql.NullString
	)

	err := scanner.Scan(
		&g.ID,
		&createdAt,
		&updatedAt,
		&g.Name,
		&g.Slug,
		&description,
	)
	if err != nil {
		return nil, err
	}

	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		g.Description = description.String
	}

	return &g, nil
}

// loadGenreBookCount populates the denormalized book count for a genre.
func (s *Store) loadGenreBookCount(ctx context.Context, g *domain.Genre) error {
	return s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM book_genres WHERE genre_id = ?`, g.ID).Scan(&g.BookCount)
}

// CreateGenre inserts a new genre.
// Returns store.ErrAlreadyExists on duplicate ID or slug.
func (s *Store) CreateGenre(ctx context.Context, genre *domain.Genre) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO genres (
			id, created_at, updated_at, name, slug, description
		) VALUES (?, ?, ?, ?, ?, ?)`,
		genre.ID,
		formatTime(genre.CreatedAt),
		formatTime(genre.UpdatedAt),
		genre.Name,
		genre.Slug,
		nullString(genre.Description),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetGenre retrieves a genre by ID.
// Returns store.ErrNotFound if the genre does not exist.
func (s *Store) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE id = ?`, id)

	g, err := scanGenre(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadGenreBookCount(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// GetGenreBySlug retrieves a genre by its slug.
// Returns store.ErrNotFound if no genre has that slug.
func (s *Store) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE slug = ?`, slug)

	g, err := scanGenre(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadGenreBookCount(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateGenre updates a genre row.
// Returns store.ErrNotFound if the genre does not exist.
func (s *Store) UpdateGenre(ctx context.Context, genre *domain.Genre) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE genres SET
			updated_at = ?,
			name = ?,
			slug = ?,
			description = ?
		WHERE id = ?`,
		formatTime(genre.UpdatedAt),
		genre.Name,
		genre.Slug,
		nullString(genre.Description),
		genre.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
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

// DeleteGenre performs a hard delete on a genre.
// ON DELETE CASCADE removes its book attachments.
// Returns store.ErrNotFound if the genre does not exist.
func (s *Store) DeleteGenre(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, id)
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

// ListGenres returns all genres ordered by name with book counts populated.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+genreColumns+` FROM genres ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, g := range genres {
		if err := s.loadGenreBookCount(ctx, g); err != nil {
			return nil, err
		}
	}
	return genres, nil
}
