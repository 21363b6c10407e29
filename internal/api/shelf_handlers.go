package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/service"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listShelves",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves",
		Summary:     "List my shelves",
		Description: "Returns all shelves owned by the current user, defaults first",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListShelves)

	huma.Register(s.api, huma.Operation{
		OperationID: "createShelf",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelves",
		Summary:     "Create shelf",
		Description: "Creates a new shelf for organizing books",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "getShelf",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelves/{id}",
		Summary:     "Get shelf",
		Description: "Returns a shelf by ID (owner only)",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateShelf",
		Method:      http.MethodPut,
		Path:        "/api/v1/shelves/{id}",
		Summary:     "Update shelf",
		Description: "Updates shelf metadata (owner only). Default shelves cannot be renamed.",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteShelf",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shelves/{id}",
		Summary:     "Delete shelf",
		Description: "Deletes a custom shelf (owner only). Its books move to the to-read shelf.",
		Tags:        []string{"Shelves"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteShelf)
}

// === DTOs ===

// ShelfRequest is the request body for creating or updating a shelf.
type ShelfRequest struct {
	Name        string `json:"name" doc:"Shelf name, unique per user"`
	Description string `json:"description,omitempty" doc:"Shelf description"`
}

// CreateShelfInput wraps the create request for Huma.
type CreateShelfInput struct {
	Body ShelfRequest
}

// UpdateShelfInput wraps the update request for Huma.
type UpdateShelfInput struct {
	ID   string `path:"id" doc:"Shelf ID"`
	Body ShelfRequest
}

// GetShelfInput identifies a shelf by ID.
type GetShelfInput struct {
	ID string `path:"id" doc:"Shelf ID"`
}

// ShelfResponse contains shelf data in API responses.
type ShelfResponse struct {
	ID          string    `json:"id" doc:"Shelf ID"`
	Name        string    `json:"name" doc:"Shelf name"`
	Description string    `json:"description,omitempty" doc:"Shelf description"`
	IsDefault   bool      `json:"is_default" doc:"Whether this is a seeded reading-status shelf"`
	BookCount   int       `json:"book_count" doc:"Number of books on this shelf"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// ShelfOutput wraps a shelf response for Huma.
type ShelfOutput struct {
	Body ShelfResponse
}

// ListShelvesResponse contains the user's shelves.
type ListShelvesResponse struct {
	Shelves []ShelfResponse `json:"shelves" doc:"Shelves in display order"`
}

// ListShelvesOutput wraps the list response for Huma.
type ListShelvesOutput struct {
	Body ListShelvesResponse
}

// === Handlers ===

func (s *Server) handleListShelves(ctx context.Context, _ *struct{}) (*ListShelvesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shelves, err := s.services.Shelf.ListShelves(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ShelfResponse, 0, len(shelves))
	for _, shelf := range shelves {
		out = append(out, mapShelfResponse(shelf))
	}

	return &ListShelvesOutput{Body: ListShelvesResponse{Shelves: out}}, nil
}

func (s *Server) handleCreateShelf(ctx context.Context, input *CreateShelfInput) (*ShelfOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shelf, err := s.services.Shelf.CreateShelf(ctx, userID, service.CreateShelfRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &ShelfOutput{Body: mapShelfResponse(shelf)}, nil
}

func (s *Server) handleGetShelf(ctx context.Context, input *GetShelfInput) (*ShelfOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shelf, err := s.services.Shelf.GetShelf(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ShelfOutput{Body: mapShelfResponse(shelf)}, nil
}

func (s *Server) handleUpdateShelf(ctx context.Context, input *UpdateShelfInput) (*ShelfOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shelf, err := s.services.Shelf.UpdateShelf(ctx, userID, input.ID, service.UpdateShelfRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &ShelfOutput{Body: mapShelfResponse(shelf)}, nil
}

func (s *Server) handleDeleteShelf(ctx context.Context, input *GetShelfInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shelf.DeleteShelf(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Shelf deleted"}}, nil
}

// === Mappers ===

func mapShelfResponse(shelf *domain.Shelf) ShelfResponse {
	return ShelfResponse{
		ID:          shelf.ID,
		Name:        shelf.Name,
		Description: shelf.Description,
		IsDefault:   shelf.IsDefault,
		BookCount:   shelf.BookCount,
		CreatedAt:   shelf.CreatedAt,
		UpdatedAt:   shelf.UpdatedAt,
	}
}
