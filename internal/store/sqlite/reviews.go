package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/store"
)

// reviewColumns is the ordered list of columns selected in review queries.
// Must match the scan order in scanReview.
const reviewColumns = `r.id, r.created_at, r.updated_at, r.user_id, r.book_id, r.rating, r.text`

// scanReview scans a sql.Row (or sql.Rows via its Scan method) into a domain.Review.
func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var r domain.Review

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&r.ID,
		&createdAt,
		&updatedAt,
		&r.UserID,
		&r.BookID,
		&r.Rating,
		&r.Text,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// CreateReview inserts a new review.
// Returns store.ErrAlreadyExists when the user has already reviewed the book.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (
			id, created_at, updated_at, user_id, book_id, rating, text
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID,
		formatTime(review.CreatedAt),
		formatTime(review.UpdatedAt),
		review.UserID,
		review.BookID,
		review.Rating,
		review.Text,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetReviewByUserAndBook retrieves the user's review of a book.
// Returns store.ErrNotFound if the user has not reviewed the book.
func (s *Store) GetReviewByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews r WHERE r.user_id = ? AND r.book_id = ?`,
		userID, bookID)

	r, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListReviewsForBook returns all reviews of a book, newest first, with the
// author's display name joined in.
func (s *Store) ListReviewsForBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewColumns+`, COALESCE(u.display_name, u.email)
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = ?
		ORDER BY r.created_at DESC, r.id DESC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		var r domain.Review
		var (
			createdAt  string
			updatedAt  string
			authorName string
		)
		err := rows.Scan(
			&r.ID,
			&createdAt,
			&updatedAt,
			&r.UserID,
			&r.BookID,
			&r.Rating,
			&r.Text,
			&authorName,
		)
		if err != nil {
			return nil, err
		}
		r.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		r.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, err
		}
		r.AuthorName = authorName
		reviews = append(reviews, &r)
	}
	return reviews, rows.Err()
}

// AverageRatingForBook returns the average rating rounded to one decimal
// place and the review count. The average is 0 when there are no reviews.
func (s *Store) AverageRatingForBook(ctx context.Context, bookID string) (float64, int, error) {
	var (
		sum   sql.NullInt64
		count int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(rating), COUNT(*) FROM reviews WHERE book_id = ?`, bookID).Scan(&sum, &count)
	if err != nil {
		return 0, 0, err
	}
	if count == 0 || !sum.Valid {
		return 0, 0, nil
	}
	return domain.RoundRating(int(sum.Int64), count), count, nil
}
