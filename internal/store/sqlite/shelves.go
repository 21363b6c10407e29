package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/store"
)

// shelfColumns is the ordered list of columns selected in shelf queries.
// Must match the scan order in scanShelf.
const shelfColumns = `id, created_at, updated_at, owner_id, name, description, is_default`

// scanShelf scans a sql.Row (or sql.Rows via its Scan method) into a domain.Shelf.
func scanShelf(scanner interface{ Scan(dest ...any) error }) (*domain.Shelf, error) {
	var sh domain.Shelf

	var (
		createdAt   string
		updatedAt   string
		description sql.NullString
		isDefault   int
	)

	err := scanner.Scan(
		&sh.ID,
		&createdAt,
		&updatedAt,
		&sh.OwnerID,
		&sh.Name,
		&description,
		&isDefault,
	)
	if err != nil {
		return nil, err
	}

	sh.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sh.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		sh.Description = description.String
	}
	sh.IsDefault = isDefault != 0

	return &sh, nil
}

// CreateShelf inserts a new shelf.
// Returns store.ErrAlreadyExists when the owner already has a shelf with the
// same name.
func (s *Store) CreateShelf(ctx context.Context, shelf *domain.Shelf) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shelves (
			id, created_at, updated_at, owner_id, name, description, is_default
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		shelf.ID,
		formatTime(shelf.CreatedAt),
		formatTime(shelf.UpdatedAt),
		shelf.OwnerID,
		shelf.Name,
		nullString(shelf.Description),
		boolToInt(shelf.IsDefault),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetShelf retrieves a shelf by ID.
// Returns store.ErrNotFound if the shelf does not exist.
func (s *Store) GetShelf(ctx context.Context, id string) (*domain.Shelf, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE id = ?`, id)

	sh, err := scanShelf(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sh.BookCount, err = s.CountMembershipsByShelf(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// GetShelfByName retrieves a shelf by owner and exact name.
// Returns store.ErrNotFound if the owner has no shelf with that name.
func (s *Store) GetShelfByName(ctx context.Context, ownerID, name string) (*domain.Shelf, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE owner_id = ? AND name = ?`, ownerID, name)

	sh, err := scanShelf(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sh.BookCount, err = s.CountMembershipsByShelf(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// UpdateShelf updates a shelf row.
// Returns store.ErrNotFound if the shelf does not exist, or
// store.ErrAlreadyExists when renaming collides with an existing shelf.
func (s *Store) UpdateShelf(ctx context.Context, shelf *domain.Shelf) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shelves SET
			updated_at = ?,
			name = ?,
			description = ?,
			is_default = ?
		WHERE id = ?`,
		formatTime(shelf.UpdatedAt),
		shelf.Name,
		nullString(shelf.Description),
		boolToInt(shelf.IsDefault),
		shelf.ID,
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

// DeleteShelf removes a shelf and settles its memberships in one
// transaction: they move to the fallback shelf when one is given, and are
// deleted outright otherwise. Returns store.ErrNotFound if the shelf does
// not exist.
func (s *Store) DeleteShelf(ctx context.Context, id, fallbackShelfID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if fallbackShelfID != "" {
		_, err = tx.ExecContext(ctx,
			`UPDATE memberships SET shelf_id = ?, updated_at = ? WHERE shelf_id = ?`,
			fallbackShelfID, formatTime(nowUTC()), id)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM memberships WHERE shelf_id = ?`, id)
	}
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM shelves WHERE id = ?`, id)
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

	return tx.Commit()
}

// ListShelvesByOwner returns all shelves owned by a user with book counts
// populated. Default shelves come first in their seeded order; the rest are
// sorted by name using Polish collation.
func (s *Store) ListShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shelves []*domain.Shelf
	for rows.Next() {
		sh, err := scanShelf(rows)
		if err != nil {
			return nil, err
		}
		shelves = append(shelves, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sh := range shelves {
		sh.BookCount, err = s.CountMembershipsByShelf(ctx, sh.ID)
		if err != nil {
			return nil, err
		}
	}

	sortShelves(shelves)
	return shelves, nil
}

// sortShelves orders default shelves first (in seeded order), then the rest
// by name under Polish collation.
func sortShelves(shelves []*domain.Shelf) {
	seededOrder := make(map[string]int)
	for i, seeded := range domain.SeededShelves() {
		seededOrder[seeded.Name] = i
	}

	coll := collate.New(language.Polish)
	sort.SliceStable(shelves, func(i, j int) bool {
		a, b := shelves[i], shelves[j]
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		if a.IsDefault {
			return seededOrder[a.Name] < seededOrder[b.Name]
		}
		return coll.CompareString(a.Name, b.Name) < 0
	})
}
