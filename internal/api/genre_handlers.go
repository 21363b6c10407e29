package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/service"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns all genres ordered by name",
		Tags:        []string{"Genres"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "createGenre",
		Method:      http.MethodPost,
		Path:        "/api/v1/genres",
		Summary:     "Create genre",
		Description: "Creates a new genre (moderator only)",
		Tags:        []string{"Genres"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenre",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/{id}",
		Summary:     "Get genre",
		Description: "Returns a genre by ID",
		Tags:        []string{"Genres"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteGenre",
		Method:      http.MethodDelete,
		Path:        "/api/v1/genres/{id}",
		Summary:     "Delete genre",
		Description: "Deletes a genre and unlinks it from books (moderator only)",
		Tags:        []string{"Genres"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteGenre)
}

// === DTOs ===

// CreateGenreRequest is the request body for creating a genre.
type CreateGenreRequest struct {
	Name        string `json:"name" doc:"Genre display name"`
	Description string `json:"description,omitempty" doc:"Genre description"`
}

// CreateGenreInput wraps the create request for Huma.
type CreateGenreInput struct {
	Body CreateGenreRequest
}

// GetGenreInput identifies a genre by ID.
type GetGenreInput struct {
	ID string `path:"id" doc:"Genre ID"`
}

// GenreResponse contains genre data in API responses.
type GenreResponse struct {
	ID          string `json:"id" doc:"Genre ID"`
	Name        string `json:"name" doc:"Genre display name"`
	Slug        string `json:"slug" doc:"URL-safe slug"`
	Description string `json:"description,omitempty" doc:"Genre description"`
	BookCount   int    `json:"book_count" doc:"Number of books in this genre"`
}

// GenreOutput wraps a genre response for Huma.
type GenreOutput struct {
	Body GenreResponse
}

// ListGenresResponse contains all genres.
type ListGenresResponse struct {
	Genres []GenreResponse `json:"genres" doc:"Genres ordered by name"`
}

// ListGenresOutput wraps the list response for Huma.
type ListGenresOutput struct {
	Body ListGenresResponse
}

// === Handlers ===

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*ListGenresOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	genres, err := s.services.Genre.ListGenres(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]GenreResponse, 0, len(genres))
	for _, genre := range genres {
		out = append(out, mapGenreResponse(genre))
	}

	return &ListGenresOutput{Body: ListGenresResponse{Genres: out}}, nil
}

func (s *Server) handleCreateGenre(ctx context.Context, input *CreateGenreInput) (*GenreOutput, error) {
	actor, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	genre, err := s.services.Genre.CreateGenre(ctx, actor, service.CreateGenreRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &GenreOutput{Body: mapGenreResponse(genre)}, nil
}

func (s *Server) handleGetGenre(ctx context.Context, input *GetGenreInput) (*GenreOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	genre, err := s.services.Genre.GetGenre(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &GenreOutput{Body: mapGenreResponse(genre)}, nil
}

func (s *Server) handleDeleteGenre(ctx context.Context, input *GetGenreInput) (*MessageOutput, error) {
	actor, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Genre.DeleteGenre(ctx, actor, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Genre deleted"}}, nil
}

// === Mappers ===

func mapGenreResponse(genre *domain.Genre) GenreResponse {
	return GenreResponse{
		ID:          genre.ID,
		Name:        genre.Name,
		Slug:        genre.Slug,
		Description: genre.Description,
		BookCount:   genre.BookCount,
	}
}
