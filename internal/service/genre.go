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
	"github.com/readroomapp/readroom-server/internal/util"
)

// GenreService manages the curated genre list.
type GenreService struct {
	store  store.Store
	logger *slog.Logger
}

// NewGenreService creates a new genre service.
func NewGenreService(store store.Store, logger *slog.Logger) *GenreService {
	return &GenreService{
		store:  store,
		logger: logger,
	}
}

// CreateGenreRequest contains the data for a new genre.
type CreateGenreRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// CreateGenre adds a genre. The slug is derived from the name.
func (s *GenreService) CreateGenre(ctx context.Context, actor *domain.User, req CreateGenreRequest) (*domain.Genre, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	slug := util.NormalizeSlug(req.Name)
	if slug == "" {
		return nil, domainerrors.Validation("genre name yields an empty slug")
	}

	genreID, err := id.Generate("genre")
	if err != nil {
		return nil, fmt.Errorf("generate genre ID: %w", err)
	}

	genre := &domain.Genre{
		Entity:      domain.Entity{ID: genreID},
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
	}
	genre.InitTimestamps()

	if err := s.store.CreateGenre(ctx, genre); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrAlreadyExists.Code {
			return nil, domainerrors.Conflictf("genre %q already exists", slug)
		}
		return nil, fmt.Errorf("create genre: %w", err)
	}

	s.logger.Info("genre created",
		"genre_id", genreID,
		"slug", slug,
	)

	return genre, nil
}

// GetGenre retrieves a genre by ID.
func (s *GenreService) GetGenre(ctx context.Context, genreID string) (*domain.Genre, error) {
	genre, err := s.store.GetGenre(ctx, genreID)
	if err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return nil, domainerrors.NotFound("genre not found")
		}
		return nil, fmt.Errorf("lookup genre: %w", err)
	}
	return genre, nil
}

// ListGenres returns all genres with book counts.
func (s *GenreService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

// DeleteGenre removes a genre. Books keep their other genres.
func (s *GenreService) DeleteGenre(ctx context.Context, actor *domain.User, genreID string) error {
	if err := requireModerator(actor); err != nil {
		return err
	}

	if err := s.store.DeleteGenre(ctx, genreID); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return domainerrors.NotFound("genre not found")
		}
		return fmt.Errorf("delete genre: %w", err)
	}

	s.logger.Info("genre deleted", "genre_id", genreID)
	return nil
}
