package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all community tags ordered by slug",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Description: "Creates a tag from a free-form name. Creating an existing tag returns the stored one.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Description: "Deletes a tag and unlinks it from books (moderator only)",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)
}

// === DTOs ===

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name" doc:"Free-form tag name, normalized into a slug"`
}

// CreateTagInput wraps the create request for Huma.
type CreateTagInput struct {
	Body CreateTagRequest
}

// GetTagInput identifies a tag by ID.
type GetTagInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string `json:"id" doc:"Tag ID"`
	Slug      string `json:"slug" doc:"Canonical slug"`
	BookCount int    `json:"book_count" doc:"Number of books with this tag"`
}

// TagOutput wraps a tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// ListTagsResponse contains all tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"Tags ordered by slug"`
}

// ListTagsOutput wraps the list response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		out = append(out, mapTagResponse(tag))
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: out}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.CreateTag(ctx, service.CreateTagRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: mapTagResponse(tag)}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.GetTag(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: mapTagResponse(tag)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *GetTagInput) (*MessageOutput, error) {
	actor, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tag.DeleteTag(ctx, actor, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}

// === Mappers ===

func mapTagResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		Slug:      tag.Slug,
		BookCount: tag.BookCount,
	}
}
