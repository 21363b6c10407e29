package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library",
		Summary:     "List my library",
		Description: "Returns the current user's library with optional shelf filter, search and sorting",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBookToLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/books",
		Summary:     "Add book to library",
		Description: "Adds a catalog book to the user's library, optionally on a shelf",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddBookToLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLibraryBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/books/{bookId}",
		Summary:     "Get library book",
		Description: "Returns the user's library entry for a book",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetLibraryBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "shelveLibraryBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/library/books/{bookId}/shelf",
		Summary:     "Shelve library book",
		Description: "Moves a library book onto a shelf, adding it to the library first if needed; an empty shelf_id takes it off its shelf",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleShelveLibraryBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookFromLibrary",
		Method:      http.MethodDelete,
		Path:        "/api/v1/library/books/{bookId}",
		Summary:     "Remove book from library",
		Description: "Removes a book from the user's library",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveBookFromLibrary)
}

// === DTOs ===

// AddLibraryBookRequest is the request body for adding a book to a library.
type AddLibraryBookRequest struct {
	BookID  string `json:"book_id" doc:"Catalog book ID"`
	ShelfID string `json:"shelf_id,omitempty" doc:"Optional initial shelf"`
}

// AddLibraryBookInput wraps the add request for Huma.
type AddLibraryBookInput struct {
	Body AddLibraryBookRequest
}

// ShelveBookRequest is the request body for shelving a library book.
type ShelveBookRequest struct {
	ShelfID string `json:"shelf_id" doc:"Target shelf ID, empty to unshelve"`
}

// ShelveBookInput wraps the shelve request for Huma.
type ShelveBookInput struct {
	BookID string `path:"bookId" doc:"Catalog book ID"`
	Body   ShelveBookRequest
}

// LibraryBookInput identifies a library entry by book ID.
type LibraryBookInput struct {
	BookID string `path:"bookId" doc:"Catalog book ID"`
}

// ListLibraryInput contains filter, sort and pagination parameters.
type ListLibraryInput struct {
	ShelfID string `query:"shelf_id" doc:"Filter by shelf"`
	Query   string `query:"q" doc:"Search in title and author"`
	Sort    string `query:"sort" doc:"Sort key: title, author or added (default added, newest first)"`
	Desc    bool   `query:"desc" doc:"Sort descending"`
	Limit   int    `query:"limit" doc:"Maximum number of results (default 50, max 200)"`
	Offset  int    `query:"offset" doc:"Number of results to skip"`
}

// MembershipResponse contains a library entry in API responses.
type MembershipResponse struct {
	ID      string        `json:"id" doc:"Membership ID"`
	BookID  string        `json:"book_id" doc:"Catalog book ID"`
	ShelfID string        `json:"shelf_id,omitempty" doc:"Shelf ID, empty when unshelved"`
	Book    *BookResponse `json:"book,omitempty" doc:"Joined catalog entry"`
	AddedAt time.Time     `json:"added_at" doc:"When the book was added to the library"`
}

// MembershipOutput wraps a membership response for Huma.
type MembershipOutput struct {
	Body MembershipResponse
}

// ListLibraryResponse contains a page of library entries.
type ListLibraryResponse struct {
	Books   []MembershipResponse `json:"books" doc:"Library entries in this page"`
	Total   int                  `json:"total" doc:"Total number of matching entries"`
	HasMore bool                 `json:"has_more" doc:"Whether more pages exist"`
}

// ListLibraryOutput wraps the list response for Huma.
type ListLibraryOutput struct {
	Body ListLibraryResponse
}

// === Handlers ===

func (s *Server) handleListLibrary(ctx context.Context, input *ListLibraryInput) (*ListLibraryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Library.ListBooks(ctx, userID, service.ListLibraryRequest{
		ShelfID:    input.ShelfID,
		Query:      input.Query,
		Sort:       input.Sort,
		Descending: input.Desc,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, err
	}

	books := make([]MembershipResponse, 0, len(result.Items))
	for _, m := range result.Items {
		books = append(books, mapMembershipResponse(m))
	}

	return &ListLibraryOutput{Body: ListLibraryResponse{
		Books:   books,
		Total:   result.Total,
		HasMore: result.HasMore,
	}}, nil
}

func (s *Server) handleAddBookToLibrary(ctx context.Context, input *AddLibraryBookInput) (*MembershipOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	membership, err := s.services.Library.AddBook(ctx, userID, service.AddBookRequest{
		BookID:  input.Body.BookID,
		ShelfID: input.Body.ShelfID,
	})
	if err != nil {
		return nil, err
	}

	return &MembershipOutput{Body: mapMembershipResponse(membership)}, nil
}

func (s *Server) handleGetLibraryBook(ctx context.Context, input *LibraryBookInput) (*MembershipOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	membership, err := s.services.Library.GetBook(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &MembershipOutput{Body: mapMembershipResponse(membership)}, nil
}

func (s *Server) handleShelveLibraryBook(ctx context.Context, input *ShelveBookInput) (*MembershipOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	membership, err := s.services.Library.ShelveBook(ctx, userID, input.BookID, service.ShelveBookRequest{
		ShelfID: input.Body.ShelfID,
	})
	if err != nil {
		return nil, err
	}

	return &MembershipOutput{Body: mapMembershipResponse(membership)}, nil
}

func (s *Server) handleRemoveBookFromLibrary(ctx context.Context, input *LibraryBookInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Library.RemoveBook(ctx, userID, input.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book removed from library"}}, nil
}

// === Mappers ===

func mapMembershipResponse(m *domain.Membership) MembershipResponse {
	resp := MembershipResponse{
		ID:      m.ID,
		BookID:  m.BookID,
		ShelfID: m.ShelfID,
		AddedAt: m.CreatedAt,
	}
	if m.Book != nil {
		book := mapBookResponse(m.Book)
		resp.Book = &book
	}
	return resp
}
