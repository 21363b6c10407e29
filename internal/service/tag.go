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

// TagService manages free-form book tags.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// CreateTagRequest contains the data for a new tag.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreateTag adds a tag, normalizing the name into a slug.
// Creating an existing tag returns the stored one.
func (s *TagService) CreateTag(ctx context.Context, req CreateTagRequest) (*domain.Tag, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	slug := util.NormalizeSlug(req.Name)
	if slug == "" {
		return nil, domainerrors.Validation("tag name yields an empty slug")
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	tag := &domain.Tag{
		Entity: domain.Entity{ID: tagID},
		Slug:   slug,
	}
	tag.InitTimestamps()

	if err := s.store.CreateTag(ctx, tag); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrAlreadyExists.Code {
			return s.store.GetTagBySlug(ctx, slug)
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("tag created",
		"tag_id", tagID,
		"slug", slug,
	)

	return tag, nil
}

// GetTag retrieves a tag by ID.
func (s *TagService) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("lookup tag: %w", err)
	}
	return tag, nil
}

// ListTags returns all tags with book counts.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// DeleteTag removes a tag. Moderator only.
func (s *TagService) DeleteTag(ctx context.Context, actor *domain.User, tagID string) error {
	if err := requireModerator(actor); err != nil {
		return err
	}

	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return domainerrors.NotFound("tag not found")
		}
		return fmt.Errorf("delete tag: %w", err)
	}

	s.logger.Info("tag deleted", "tag_id", tagID)
	return nil
}
