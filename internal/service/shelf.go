package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/readroomapp/readroom-server/internal/domain"
	domainerrors "github.com/readroomapp/readroom-server/internal/errors"
	"github.com/readroomapp/readroom-server/internal/id"
	"github.com/readroomapp/readroom-server/internal/store"
)

// ShelfService orchestrates shelf operations with ownership enforcement.
type ShelfService struct {
	store  store.Store
	logger *slog.Logger
}

// NewShelfService creates a new shelf service.
func NewShelfService(store store.Store, logger *slog.Logger) *ShelfService {
	return &ShelfService{
		store:  store,
		logger: logger,
	}
}

// CreateShelfRequest contains the data for a new shelf.
type CreateShelfRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=50"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdateShelfRequest contains shelf metadata updates.
type UpdateShelfRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=50"`
	Description string `json:"description" validate:"max=1000"`
}

// CreateShelf creates a new shelf for the user.
// The name must be unique among the user's shelves.
func (s *ShelfService) CreateShelf(ctx context.Context, ownerID string, req CreateShelfRequest) (*domain.Shelf, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	shelfID, err := id.Generate("shelf")
	if err != nil {
		return nil, fmt.Errorf("generate shelf ID: %w", err)
	}

	shelf := &domain.Shelf{
		Entity:      domain.Entity{ID: shelfID},
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
	}
	shelf.InitTimestamps()

	if err := s.store.CreateShelf(ctx, shelf); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrAlreadyExists.Code {
			return nil, domainerrors.Conflictf("you already have a shelf named %q", req.Name)
		}
		return nil, fmt.Errorf("create shelf: %w", err)
	}

	s.logger.Info("shelf created",
		"shelf_id", shelfID,
		"owner_id", ownerID,
		"name", req.Name,
	)

	return shelf, nil
}

// GetShelf retrieves a shelf, enforcing ownership.
func (s *ShelfService) GetShelf(ctx context.Context, userID, shelfID string) (*domain.Shelf, error) {
	shelf, err := s.store.GetShelf(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if shelf.OwnerID != userID {
		return nil, domainerrors.Forbidden("you do not own this shelf")
	}
	return shelf, nil
}

// UpdateShelf updates shelf metadata.
// Requires ownership; default shelves cannot be renamed.
func (s *ShelfService) UpdateShelf(ctx context.Context, userID, shelfID string, req UpdateShelfRequest) (*domain.Shelf, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	shelf, err := s.GetShelf(ctx, userID, shelfID)
	if err != nil {
		return nil, err
	}

	if shelf.IsDefault && req.Name != shelf.Name {
		return nil, domainerrors.Validation("default shelves cannot be renamed")
	}

	shelf.Name = req.Name
	shelf.Description = req.Description
	shelf.Touch()

	if err := s.store.UpdateShelf(ctx, shelf); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrAlreadyExists.Code {
			return nil, domainerrors.Conflictf("you already have a shelf named %q", req.Name)
		}
		return nil, fmt.Errorf("update shelf: %w", err)
	}

	s.logger.Info("shelf updated",
		"shelf_id", shelfID,
		"user_id", userID,
	)

	return shelf, nil
}

// DeleteShelf removes a shelf the user owns. Books on the shelf are moved to
// the user's to-read shelf; when that shelf is the one being deleted, or is
// gone, their memberships are removed with it.
func (s *ShelfService) DeleteShelf(ctx context.Context, userID, shelfID string) error {
	if _, err := s.GetShelf(ctx, userID, shelfID); err != nil {
		return err
	}

	fallbackID := ""
	if fallback, err := s.store.GetShelfByName(ctx, userID, domain.ShelfNameToRead); err == nil && fallback.ID != shelfID {
		fallbackID = fallback.ID
	}

	if err := s.store.DeleteShelf(ctx, shelfID, fallbackID); err != nil {
		return fmt.Errorf("delete shelf: %w", err)
	}

	s.logger.Info("shelf deleted",
		"shelf_id", shelfID,
		"user_id", userID,
	)

	return nil
}

// ListShelves returns the user's shelves in display order with book counts.
// Accounts that predate shelf seeding get their default shelves created here.
func (s *ShelfService) ListShelves(ctx context.Context, userID string) ([]*domain.Shelf, error) {
	shelves, err := s.store.ListShelvesByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shelves: %w", err)
	}

	if len(shelves) == 0 {
		if err := s.BootstrapDefaultShelves(ctx, userID); err != nil {
			return nil, err
		}
		shelves, err = s.store.ListShelvesByOwner(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list shelves: %w", err)
		}
	}

	return shelves, nil
}

// BootstrapDefaultShelves creates any of the canonical shelves the user is
// missing. Safe to call repeatedly.
func (s *ShelfService) BootstrapDefaultShelves(ctx context.Context, ownerID string) error {
	existing, err := s.store.ListShelvesByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list shelves: %w", err)
	}

	have := make(map[string]bool, len(existing))
	for _, shelf := range existing {
		have[shelf.Name] = true
	}

	for _, seed := range domain.SeededShelves() {
		if have[seed.Name] {
			continue
		}

		shelfID, err := id.Generate("shelf")
		if err != nil {
			return fmt.Errorf("generate shelf ID: %w", err)
		}

		shelf := &domain.Shelf{
			Entity:    domain.Entity{ID: shelfID},
			OwnerID:   ownerID,
			Name:      seed.Name,
			IsDefault: seed.IsDefault,
		}
		shelf.InitTimestamps()

		if err := s.store.CreateShelf(ctx, shelf); err != nil {
			var storeErr *store.Error
			if errors.As(err, &storeErr) && storeErr.Code == store.ErrAlreadyExists.Code {
				continue
			}
			return fmt.Errorf("create shelf %q: %w", seed.Name, err)
		}
	}

	return nil
}
