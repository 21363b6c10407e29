package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at, title, author, description, isbn,
	publisher, publish_year, language, page_count, cover_path, created_by`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt   string
		updatedAt   string
		description sql.NullString
		isbn        sql.NullString
		publisher   sql.NullString
		publishYear sql.NullInt64
		language    sql.NullString
		pageCount   sql.NullInt64
		coverPath   sql.NullString
		createdBy   sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&b.Author,
		&description,
		&isbn,
		&publisher,
		&publishYear,
		&language,
		&pageCount,
		&coverPath,
		&createdBy,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		b.Description = description.String
	}
	if isbn.Valid {
		b.ISBN = isbn.String
	}
	if publisher.Valid {
		b.Publisher = publisher.String
	}
	if publishYear.Valid {
		b.PublishYear = int(publishYear.Int64)
	}
	if language.Valid {
		b.Language = language.String
	}
	if pageCount.Valid {
		b.PageCount = int(pageCount.Int64)
	}
	if coverPath.Valid {
		b.CoverPath = coverPath.String
	}
	if createdBy.Valid {
		b.CreatedBy = createdBy.String
	}

	return &b, nil
}

// loadBookGenreIDs loads the genre IDs attached to a book.
func (s *Store) loadBookGenreIDs(ctx context.Context, bookID string) ([]string, error) {
	return s.loadLinkedIDs(ctx,
		`SELECT genre_id FROM book_genres WHERE book_id = ? ORDER BY genre_id`, bookID)
}

// loadBookTagIDs loads the tag IDs attached to a book.
func (s *Store) loadBookTagIDs(ctx context.Context, bookID string) ([]string, error) {
	return s.loadLinkedIDs(ctx,
		`SELECT tag_id FROM book_tags WHERE book_id = ? ORDER BY tag_id`, bookID)
}

func (s *Store) loadLinkedIDs(ctx context.Context, query, bookID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// loadBookRating populates the denormalized review fields on a book.
func (s *Store) loadBookRating(ctx context.Context, b *domain.Book) error {
	avg, count, err := s.AverageRatingForBook(ctx, b.ID)
	if err != nil {
		return err
	}
	b.AverageRating = avg
	b.ReviewCount = count
	return nil
}

// enrichBook loads genre, tag and rating data onto a book row.
func (s *Store) enrichBook(ctx context.Context, b *domain.Book) error {
	var err error
	b.GenreIDs, err = s.loadBookGenreIDs(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("load book genres: %w", err)
	}
	b.TagIDs, err = s.loadBookTagIDs(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("load book tags: %w", err)
	}
	return s.loadBookRating(ctx, b)
}

// CreateBook inserts a new book and its genre and tag attachments.
// Returns store.ErrAlreadyExists on duplicate ID or ISBN.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (
			id, created_at, updated_at, title, author, description, isbn,
			publisher, publish_year, language, page_count, cover_path, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		book.Author,
		nullString(book.Description),
		nullString(book.ISBN),
		nullString(book.Publisher),
		nullInt(book.PublishYear),
		nullString(book.Language),
		nullInt(book.PageCount),
		nullString(book.CoverPath),
		nullString(book.CreatedBy),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := replaceBookLinks(ctx, tx, "book_genres", "genre_id", book.ID, book.GenreIDs); err != nil {
		return err
	}
	if err := replaceBookLinks(ctx, tx, "book_tags", "tag_id", book.ID, book.TagIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// GetBook retrieves a book by ID with genres, tags and rating populated.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.enrichBook(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookByISBN retrieves a book by its ISBN.
// Returns store.ErrNotFound if no book has that ISBN.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.enrichBook(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook updates a book row and replaces its genre and tag attachments
// in a transaction. Returns store.ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE books SET
			updated_at = ?,
			title = ?,
			author = ?,
			description = ?,
			isbn = ?,
			publisher = ?,
			publish_year = ?,
			language = ?,
			page_count = ?,
			cover_path = ?
		WHERE id = ?`,
		formatTime(book.UpdatedAt),
		book.Title,
		book.Author,
		nullString(book.Description),
		nullString(book.ISBN),
		nullString(book.Publisher),
		nullInt(book.PublishYear),
		nullString(book.Language),
		nullInt(book.PageCount),
		nullString(book.CoverPath),
		book.ID,
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

	if err := replaceBookLinks(ctx, tx, "book_genres", "genre_id", book.ID, book.GenreIDs); err != nil {
		return err
	}
	if err := replaceBookLinks(ctx, tx, "book_tags", "tag_id", book.ID, book.TagIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteBook performs a hard delete on a book.
// ON DELETE CASCADE removes memberships, reviews and attachments.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
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

// ListBooks returns a page of books matching the filter.
func (s *Store) ListBooks(ctx context.Context, filter domain.BookFilter) (*store.PaginatedResult[*domain.Book], error) {
	params := store.PaginationParams{Limit: filter.Limit, Offset: filter.Offset}
	params.Validate()

	where := `1 = 1`
	var args []any

	if filter.Query != "" {
		pattern := "%" + escapeLike(filter.Query) + "%"
		where += ` AND (title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE ` + where +
		` ORDER BY ` + bookOrderClause(filter) + ` LIMIT ? OFFSET ?`
	args = append(args, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range books {
		if err := s.enrichBook(ctx, b); err != nil {
			return nil, err
		}
	}

	return &store.PaginatedResult[*domain.Book]{
		Items:   books,
		Total:   total,
		HasMore: params.Offset+len(books) < total,
	}, nil
}

func bookOrderClause(filter domain.BookFilter) string {
	var key string
	switch filter.Sort {
	case domain.BookSortAuthor:
		key = `author COLLATE NOCASE`
	case domain.BookSortAdded:
		key = `created_at`
	default:
		key = `title COLLATE NOCASE`
	}

	dir := ` ASC`
	if filter.Descending {
		dir = ` DESC`
	}
	return key + dir + `, id` + dir
}

// CountBooks returns the total number of books in the catalog.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count)
	return count, err
}

// SetBookGenres replaces the genre attachments for a book.
func (s *Store) SetBookGenres(ctx context.Context, bookID string, genreIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := replaceBookLinks(ctx, tx, "book_genres", "genre_id", bookID, genreIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// SetBookTags replaces the tag attachments for a book.
func (s *Store) SetBookTags(ctx context.Context, bookID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := replaceBookLinks(ctx, tx, "book_tags", "tag_id", bookID, tagIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// SetBookCover updates only the cover path for a book.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) SetBookCover(ctx context.Context, bookID, coverPath string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE books SET cover_path = ?, updated_at = ? WHERE id = ?`,
		nullString(coverPath), formatTime(nowUTC()), bookID)
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

// replaceBookLinks deletes and re-inserts rows in a book link table.
func replaceBookLinks(ctx context.Context, tx *sql.Tx, table, column, bookID string, ids []string) error {
	//nolint:gosec // table and column are compile-time constants, not user input
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE book_id = ?`, table), bookID); err != nil {
		return err
	}

	for _, id := range ids {
		//nolint:gosec // table and column are compile-time constants, not user input
		_, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT OR IGNORE INTO %s (book_id, %s) VALUES (?, ?)`, table, column),
			bookID, id)
		if err != nil {
			return fmt.Errorf("insert %s link %s: %w", table, id, err)
		}
	}
	return nil
}
