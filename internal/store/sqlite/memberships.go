package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/store"
)

// membershipColumns is the ordered list of columns selected in membership
// queries. Must match the scan order in scanMembership.
const membershipColumns = `m.id, m.created_at, m.updated_at, m.user_id, m.book_id, m.shelf_id`

// scanMembership scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Membership.
func scanMembership(scanner interface{ Scan(dest ...any) error }) (*domain.Membership, error) {
	var m domain.Membership

	var (
		createdAt string
		updatedAt string
		shelfID   sql.NullString
	)

	err := scanner.Scan(
		&m.ID,
		&createdAt,
		&updatedAt,
		&m.UserID,
		&m.BookID,
		&shelfID,
	)
	if err != nil {
		return nil, err
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if shelfID.Valid {
		m.ShelfID = shelfID.String
	}

	return &m, nil
}

// CreateMembership inserts a new library membership.
// Returns store.ErrAlreadyExists when the user already has the book in their
// library.
func (s *Store) CreateMembership(ctx context.Context, membership *domain.Membership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memberships (
			id, created_at, updated_at, user_id, book_id, shelf_id
		) VALUES (?, ?, ?, ?, ?, ?)`,
		membership.ID,
		formatTime(membership.CreatedAt),
		formatTime(membership.UpdatedAt),
		membership.UserID,
		membership.BookID,
		nullString(membership.ShelfID),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetMembership retrieves a membership by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetMembership(ctx context.Context, id string) (*domain.Membership, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships m WHERE m.id = ?`, id)

	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetMembershipByUserAndBook retrieves the user's membership for a book.
// Returns store.ErrNotFound if the book is not in the user's library.
func (s *Store) GetMembershipByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Membership, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships m WHERE m.user_id = ? AND m.book_id = ?`,
		userID, bookID)

	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMembership updates a membership row.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdateMembership(ctx context.Context, membership *domain.Membership) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE memberships SET
			updated_at = ?,
			shelf_id = ?
		WHERE id = ?`,
		formatTime(membership.UpdatedAt),
		nullString(membership.ShelfID),
		membership.ID,
	)
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

// DeleteMembership removes a membership by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteMembership(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = ?`, id)
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

// ListMemberships returns a page of the user's library with joined books,
// applying the filter's shelf restriction, title/author substring search and
// ordering.
func (s *Store) ListMemberships(ctx context.Context, userID string, filter domain.MembershipFilter) (*store.PaginatedResult[*domain.Membership], error) {
	params := store.PaginationParams{Limit: filter.Limit, Offset: filter.Offset}
	params.Validate()

	where := `m.user_id = ?`
	args := []any{userID}

	if filter.ShelfID != "" {
		where += ` AND m.shelf_id = ?`
		args = append(args, filter.ShelfID)
	}

	if filter.Query != "" {
		pattern := "%" + escapeLike(filter.Query) + "%"
		where += ` AND (b.title LIKE ? ESCAPE '\' OR b.author LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships m JOIN books b ON b.id = m.book_id WHERE `+where,
		args...).Scan(&total)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + membershipColumns + `
		FROM memberships m
		JOIN books b ON b.id = m.book_id
		WHERE ` + where + `
		ORDER BY ` + membershipOrderClause(filter) + `
		LIMIT ? OFFSET ?`
	args = append(args, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Join the catalog entries.
	for _, m := range memberships {
		m.Book, err = s.GetBook(ctx, m.BookID)
		if err != nil {
			return nil, err
		}
	}

	return &store.PaginatedResult[*domain.Membership]{
		Items:   memberships,
		Total:   total,
		HasMore: params.Offset+len(memberships) < total,
	}, nil
}

// membershipOrderClause builds the ORDER BY expression for a listing.
// The membership ID is a stable tiebreaker.
func membershipOrderClause(filter domain.MembershipFilter) string {
	var key string
	switch filter.Sort {
	case domain.MembershipSortTitle:
		key = `b.title COLLATE NOCASE`
	case domain.MembershipSortAuthor:
		key = `b.author COLLATE NOCASE`
	default:
		key = `m.created_at`
	}

	dir := ` ASC`
	if filter.Descending {
		dir = ` DESC`
	}
	return key + dir + `, m.id` + dir
}

// CountMembershipsByShelf returns the number of books placed on a shelf.
func (s *Store) CountMembershipsByShelf(ctx context.Context, shelfID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE shelf_id = ?`, shelfID).Scan(&count)
	return count, err
}

// escapeLike escapes LIKE wildcards in user-supplied search input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
