package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a paginated list of catalog books ordered by title",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a book to the shared catalog (moderator only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a catalog book with its rating aggregates",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates catalog book metadata (moderator only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book from the catalog along with its memberships and reviews (moderator only)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookRequest is the request body for creating or updating a book.
type BookRequest struct {
	Title       string   `json:"title" doc:"Book title"`
	Author      string   `json:"author" doc:"Author name"`
	Description string   `json:"description,omitempty" doc:"Book description"`
	ISBN        string   `json:"isbn,omitempty" doc:"ISBN-10 or ISBN-13"`
	Publisher   string   `json:"publisher,omitempty" doc:"Publisher name"`
	PublishYear int      `json:"publish_year,omitempty" doc:"Year of publication"`
	Language    string   `json:"language,omitempty" doc:"Language code"`
	PageCount   int      `json:"page_count,omitempty" doc:"Number of pages"`
	GenreIDs    []string `json:"genre_ids,omitempty" doc:"Linked genre IDs"`
	TagIDs      []string `json:"tag_ids,omitempty" doc:"Linked tag IDs"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body BookRequest
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body BookRequest
}

// GetBookInput identifies a book by ID.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// ListBooksInput contains search and pagination parameters for book listings.
type ListBooksInput struct {
	Query  string `query:"q" doc:"Case-insensitive substring match on title or author"`
	Sort   string `query:"sort" doc:"Sort key: title, author or added (default title)"`
	Desc   bool   `query:"desc" doc:"Sort in descending order"`
	Limit  int    `query:"limit" doc:"Maximum number of results (default 50, max 200)"`
	Offset int    `query:"offset" doc:"Number of results to skip"`
}

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID            string    `json:"id" doc:"Book ID"`
	Title         string    `json:"title" doc:"Book title"`
	Author        string    `json:"author" doc:"Author name"`
	Description   string    `json:"description,omitempty" doc:"Book description"`
	ISBN          string    `json:"isbn,omitempty" doc:"ISBN"`
	Publisher     string    `json:"publisher,omitempty" doc:"Publisher name"`
	PublishYear   int       `json:"publish_year,omitempty" doc:"Year of publication"`
	Language      string    `json:"language,omitempty" doc:"Language code"`
	PageCount     int       `json:"page_count,omitempty" doc:"Number of pages"`
	HasCover      bool      `json:"has_cover" doc:"Whether a cover image is available"`
	GenreIDs      []string  `json:"genre_ids,omitempty" doc:"Linked genre IDs"`
	TagIDs        []string  `json:"tag_ids,omitempty" doc:"Linked tag IDs"`
	ReviewCount   int       `json:"review_count" doc:"Number of reviews"`
	AverageRating float64   `json:"average_rating" doc:"Average rating rounded to one decimal"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last update time"`
}

// BookOutput wraps a book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// ListBooksResponse contains a page of books.
type ListBooksResponse struct {
	Books   []BookResponse `json:"books" doc:"Books in this page"`
	Total   int            `json:"total" doc:"Total number of books"`
	HasMore bool           `json:"has_more" doc:"Whether more pages exist"`
}

// ListBooksOutput wraps the list response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	result, err := s.services.Catalog.ListBooks(ctx, service.ListBooksRequest{
		Query:      input.Query,
		Sort:       input.Sort,
		Descending: input.Desc,
		Offset:     input.Offset,
		Limit:      input.Limit,
	})
	if err != nil {
		return nil, err
	}

	books := make([]BookResponse, 0, len(result.Items))
	for _, book := range result.Items {
		books = append(books, mapBookResponse(book))
	}

	return &ListBooksOutput{Body: ListBooksResponse{
		Books:   books,
		Total:   result.Total,
		HasMore: result.HasMore,
	}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	actor, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.CreateBook(ctx, actor, bookRequestToService(input.Body))
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	actor, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.UpdateBook(ctx, actor, input.ID, bookRequestToService(input.Body))
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *GetBookInput) (*MessageOutput, error) {
	actor, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteBook(ctx, actor, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

// === Mappers ===

func bookRequestToService(req BookRequest) service.CreateBookRequest {
	return service.CreateBookRequest{
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
	}
}

func mapBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		ISBN:          book.ISBN,
		Publisher:     book.Publisher,
		PublishYear:   book.PublishYear,
		Language:      book.Language,
		PageCount:     book.PageCount,
		HasCover:      book.HasCover(),
		GenreIDs:      book.GenreIDs,
		TagIDs:        book.TagIDs,
		ReviewCount:   book.ReviewCount,
		AverageRating: book.AverageRating,
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
	}
}
