package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/readroomapp/readroom-server/internal/domain"
	domainerrors "github.com/readroomapp/readroom-server/internal/errors"
	"github.com/readroomapp/readroom-server/internal/id"
	"github.com/readroomapp/readroom-server/internal/store"
)

// LibraryService manages each user's personal library: which catalog books
// they have added and where those books sit on their shelves.
type LibraryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(store store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:  store,
		logger: logger,
	}
}

// AddBookRequest adds a catalog book to the user's library.
type AddBookRequest struct {
	BookID  string `json:"book_id" validate:"required"`
	ShelfID string `json:"shelf_id"` // Optional initial shelf
}

// ShelveBookRequest places a library book on a shelf, or removes it from
// its shelf when ShelfID is empty.
type ShelveBookRequest struct {
	ShelfID string `json:"shelf_id"`
}

// ListLibraryRequest describes a library listing.
type ListLibraryRequest struct {
	ShelfID    string
	Query      string
	Sort       string
	Descending bool
	Offset     int
	Limit      int
}

// AddBook adds a catalog book to the user's library, optionally on a shelf.
// A book can be in a library only once.
func (s *LibraryService) AddBook(ctx context.Context, userID string, req AddBookRequest) (*domain.Membership, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, req.BookID)
	if err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("lookup book: %w", err)
	}

	if req.ShelfID != "" {
		if err := s.checkShelfOwnership(ctx, userID, req.ShelfID); err != nil {
			return nil, err
		}
	}

	membershipID, err := id.Generate("mem")
	if err != nil {
		return nil, fmt.Errorf("generate membership ID: %w", err)
	}

	membership := &domain.Membership{
		Entity:  domain.Entity{ID: membershipID},
		UserID:  userID,
		BookID:  req.BookID,
		ShelfID: req.ShelfID,
	}
	membership.InitTimestamps()

	if err := s.store.CreateMembership(ctx, membership); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrAlreadyExists.Code {
			return nil, domainerrors.Conflict("book is already in your library")
		}
		return nil, fmt.Errorf("create membership: %w", err)
	}

	s.logger.Info("book added to library",
		"user_id", userID,
		"book_id", req.BookID,
		"shelf_id", req.ShelfID,
	)

	membership.Book = book
	return membership, nil
}

// ShelveBook moves a library book onto a shelf, or unshelves it when the
// requested shelf ID is empty. Shelving a book that is not yet in the
// library adds it to the library on that shelf.
func (s *LibraryService) ShelveBook(ctx context.Context, userID, bookID string, req ShelveBookRequest) (*domain.Membership, error) {
	membership, err := s.getMembership(ctx, userID, bookID)
	if err != nil {
		var domainErr *domainerrors.Error
		if req.ShelfID != "" && errors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeNotFound {
			return s.AddBook(ctx, userID, AddBookRequest{BookID: bookID, ShelfID: req.ShelfID})
		}
		return nil, err
	}

	if req.ShelfID != "" {
		if err := s.checkShelfOwnership(ctx, userID, req.ShelfID); err != nil {
			return nil, err
		}
	}

	membership.ShelfID = req.ShelfID
	membership.Touch()

	if err := s.store.UpdateMembership(ctx, membership); err != nil {
		return nil, fmt.Errorf("update membership: %w", err)
	}

	s.logger.Info("book shelved",
		"user_id", userID,
		"book_id", bookID,
		"shelf_id", req.ShelfID,
	)

	return membership, nil
}

// RemoveBook removes a book from the user's library entirely.
func (s *LibraryService) RemoveBook(ctx context.Context, userID, bookID string) error {
	membership, err := s.getMembership(ctx, userID, bookID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteMembership(ctx, membership.ID); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}

	s.logger.Info("book removed from library",
		"user_id", userID,
		"book_id", bookID,
	)

	return nil
}

// GetBook returns the user's library entry for a book.
func (s *LibraryService) GetBook(ctx context.Context, userID, bookID string) (*domain.Membership, error) {
	membership, err := s.getMembership(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("lookup book: %w", err)
	}
	membership.Book = book
	return membership, nil
}

// ListBooks returns a page of the user's library, optionally filtered to one
// shelf and searched by title or author. Without an explicit sort the most
// recently added books come first.
func (s *LibraryService) ListBooks(ctx context.Context, userID string, req ListLibraryRequest) (*store.PaginatedResult[*domain.Membership], error) {
	sort := domain.MembershipSort(req.Sort)
	desc := req.Descending
	if req.Sort == "" {
		sort = domain.MembershipSortAdded
		desc = true
	} else if !sort.IsValid() {
		return nil, domainerrors.Validationf("unknown sort %q", req.Sort)
	}

	if req.ShelfID != "" {
		if err := s.checkShelfOwnership(ctx, userID, req.ShelfID); err != nil {
			return nil, err
		}
	}

	filter := domain.MembershipFilter{
		ShelfID:    req.ShelfID,
		Query:      req.Query,
		Sort:       sort,
		Descending: desc,
		Offset:     req.Offset,
		Limit:      req.Limit,
	}

	result, err := s.store.ListMemberships(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return result, nil
}

// getMembership loads the user's membership for a book.
func (s *LibraryService) getMembership(ctx context.Context, userID, bookID string) (*domain.Membership, error) {
	membership, err := s.store.GetMembershipByUserAndBook(ctx, userID, bookID)
	if err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return nil, domainerrors.NotFound("book is not in your library")
		}
		return nil, fmt.Errorf("lookup membership: %w", err)
	}
	return membership, nil
}

// checkShelfOwnership verifies the shelf exists and belongs to the user.
func (s *LibraryService) checkShelfOwnership(ctx context.Context, userID, shelfID string) error {
	shelf, err := s.store.GetShelf(ctx, shelfID)
	if err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return domainerrors.NotFound("shelf not found")
		}
		return fmt.Errorf("lookup shelf: %w", err)
	}
	if shelf.OwnerID != userID {
		return domainerrors.Forbidden("you do not own this shelf")
	}
	return nil
}
