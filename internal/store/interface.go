// Package store defines the persistence interface for the ReadRoom server.
package store

import (
	"context"

	"github.com/readroomapp/readroom-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CountUsers(ctx context.Context) (int, error)

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, filter domain.BookFilter) (*PaginatedResult[*domain.Book], error)
	CountBooks(ctx context.Context) (int, error)
	SetBookGenres(ctx context.Context, bookID string, genreIDs []string) error
	SetBookTags(ctx context.Context, bookID string, tagIDs []string) error
	SetBookCover(ctx context.Context, bookID, coverPath string) error

	// Shelves
	CreateShelf(ctx context.Context, shelf *domain.Shelf) error
	GetShelf(ctx context.Context, id string) (*domain.Shelf, error)
	GetShelfByName(ctx context.Context, ownerID, name string) (*domain.Shelf, error)
	UpdateShelf(ctx context.Context, shelf *domain.Shelf) error
	DeleteShelf(ctx context.Context, id, fallbackShelfID string) error
	ListShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error)

	// Memberships
	CreateMembership(ctx context.Context, membership *domain.Membership) error
	GetMembership(ctx context.Context, id string) (*domain.Membership, error)
	GetMembershipByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Membership, error)
	UpdateMembership(ctx context.Context, membership *domain.Membership) error
	DeleteMembership(ctx context.Context, id string) error
	ListMemberships(ctx context.Context, userID string, filter domain.MembershipFilter) (*PaginatedResult[*domain.Membership], error)
	CountMembershipsByShelf(ctx context.Context, shelfID string) (int, error)

	// Reviews
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReviewByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Review, error)
	ListReviewsForBook(ctx context.Context, bookID string) ([]*domain.Review, error)
	AverageRatingForBook(ctx context.Context, bookID string) (float64, int, error)

	// Genres
	CreateGenre(ctx context.Context, genre *domain.Genre) error
	GetGenre(ctx context.Context, id string) (*domain.Genre, error)
	GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	UpdateGenre(ctx context.Context, genre *domain.Genre) error
	DeleteGenre(ctx context.Context, id string) error
	ListGenres(ctx context.Context) ([]*domain.Genre, error)

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}
