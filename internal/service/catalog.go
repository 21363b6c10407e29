package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/readroomapp/readroom-server/internal/domain"
	domainerrors "github.com/readroomapp/readroom-server/internal/errors"
	"github.com/readroomapp/readroom-server/internal/id"
	"github.com/readroomapp/readroom-server/internal/media/images"
	"github.com/readroomapp/readroom-server/internal/store"
)

// CatalogService manages the shared book catalog.
// Mutations require the moderator role; reads are open to all users.
type CatalogService struct {
	store  store.Store
	covers *images.Storage
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, covers *images.Storage, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		covers: covers,
		logger: logger,
	}
}

// CreateBookRequest contains the data for a new catalog entry.
type CreateBookRequest struct {
	Title       string   `json:"title" validate:"required,max=500"`
	Author      string   `json:"author" validate:"required,max=500"`
	Description string   `json:"description" validate:"max=5000"`
	ISBN        string   `json:"isbn" validate:"omitempty,isbn"`
	Publisher   string   `json:"publisher" validate:"max=200"`
	PublishYear int      `json:"publish_year" validate:"omitempty,min=1,max=2100"`
	Language    string   `json:"language" validate:"max=20"`
	PageCount   int      `json:"page_count" validate:"min=0"`
	GenreIDs    []string `json:"genre_ids"`
	TagIDs      []string `json:"tag_ids"`
}

// UpdateBookRequest contains catalog entry updates.
// The field set mirrors CreateBookRequest.
type UpdateBookRequest = CreateBookRequest

// ListBooksRequest describes a catalog listing.
type ListBooksRequest struct {
	Query      string
	Sort       string
	Descending bool
	Offset     int
	Limit      int
}

// CreateBook adds a book to the catalog.
func (s *CatalogService) CreateBook(ctx context.Context, actor *domain.User, req CreateBookRequest) (*domain.Book, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if err := s.checkLinkedIDs(ctx, req.GenreIDs, req.TagIDs); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Entity:      domain.Entity{ID: bookID},
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		ISBN:        req.ISBN,
		Publisher:   req.Publisher,
		PublishYear: req.PublishYear,
		Language:    req.Language,
		PageCount:   req.PageCount,
		GenreIDs:    req.GenreIDs,
		TagIDs:      req.TagIDs,
		CreatedBy:   actor.ID,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrAlreadyExists.Code {
			return nil, domainerrors.Conflict("a book with this ISBN already exists")
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book created",
		"book_id", bookID,
		"title", req.Title,
		"created_by", actor.ID,
	)

	return book, nil
}

// GetBook retrieves a catalog entry with genres, tags and rating.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("lookup book: %w", err)
	}
	return book, nil
}

// ListBooks returns a page of the catalog, optionally searched by title or
// author.
func (s *CatalogService) ListBooks(ctx context.Context, req ListBooksRequest) (*store.PaginatedResult[*domain.Book], error) {
	sort := domain.BookSort(req.Sort)
	if req.Sort != "" && !sort.IsValid() {
		return nil, domainerrors.Validationf("unknown sort %q", req.Sort)
	}

	result, err := s.store.ListBooks(ctx, domain.BookFilter{
		Query:      req.Query,
		Sort:       sort,
		Descending: req.Descending,
		Offset:     req.Offset,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return result, nil
}

// UpdateBook replaces a catalog entry's metadata and attachments.
func (s *CatalogService) UpdateBook(ctx context.Context, actor *domain.User, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := s.checkLinkedIDs(ctx, req.GenreIDs, req.TagIDs); err != nil {
		return nil, err
	}

	book.Title = req.Title
	book.Author = req.Author
	book.Description = req.Description
	book.ISBN = req.ISBN
	book.Publisher = req.Publisher
	book.PublishYear = req.PublishYear
	book.Language = req.Language
	book.PageCount = req.PageCount
	book.GenreIDs = req.GenreIDs
	book.TagIDs = req.TagIDs
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrAlreadyExists.Code {
			return nil, domainerrors.Conflict("a book with this ISBN already exists")
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.logger.Info("book updated",
		"book_id", bookID,
		"updated_by", actor.ID,
	)

	return book, nil
}

// DeleteBook removes a book from the catalog along with its cover.
// Library memberships and reviews of the book are removed with it.
func (s *CatalogService) DeleteBook(ctx context.Context, actor *domain.User, bookID string) error {
	if err := requireModerator(actor); err != nil {
		return err
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("delete book: %w", err)
	}

	if err := s.covers.Delete(bookID); err != nil {
		s.logger.Warn("failed to delete book cover",
			"book_id", bookID,
			"error", err,
		)
	}

	s.logger.Info("book deleted",
		"book_id", bookID,
		"deleted_by", actor.ID,
	)

	return nil
}

// SetCover validates and stores a cover upload for a book.
func (s *CatalogService) SetCover(ctx context.Context, actor *domain.User, bookID string, data []byte) (*domain.Book, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	filename, err := s.covers.Save(bookID, data)
	if err != nil {
		return nil, domainerrors.Validation("invalid cover image").WithCause(err)
	}

	if err := s.store.SetBookCover(ctx, bookID, filename); err != nil {
		return nil, fmt.Errorf("set book cover: %w", err)
	}
	book.CoverPath = filename

	s.logger.Info("book cover updated",
		"book_id", bookID,
		"file", filename,
	)

	return book, nil
}

// GetCover returns a book's cover image data and its hash for caching.
func (s *CatalogService) GetCover(ctx context.Context, bookID string) ([]byte, string, error) {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, "", err
	}

	if !s.covers.Exists(bookID) {
		return nil, "", domainerrors.NotFound("book has no cover")
	}

	data, err := s.covers.Get(bookID)
	if err != nil {
		return nil, "", fmt.Errorf("read cover: %w", err)
	}

	hash, err := s.covers.Hash(bookID)
	if err != nil {
		return nil, "", fmt.Errorf("hash cover: %w", err)
	}

	return data, hash, nil
}

// checkLinkedIDs verifies every referenced genre and tag exists.
func (s *CatalogService) checkLinkedIDs(ctx context.Context, genreIDs, tagIDs []string) error {
	for _, genreID := range genreIDs {
		if _, err := s.store.GetGenre(ctx, genreID); err != nil {
			return domainerrors.Validationf("unknown genre %q", genreID)
		}
	}
	for _, tagID := range tagIDs {
		if _, err := s.store.GetTag(ctx, tagID); err != nil {
			return domainerrors.Validationf("unknown tag %q", tagID)
		}
	}
	return nil
}

// requireModerator rejects catalog mutations from non-moderators.
func requireModerator(actor *domain.User) error {
	if actor == nil || !actor.IsModerator() {
		return domainerrors.Forbidden("moderator role required")
	}
	return nil
}
