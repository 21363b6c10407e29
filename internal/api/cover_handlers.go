package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readroomapp/readroom-server/internal/media/images"
)

func (s *Server) registerCoverRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "uploadBookCover",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/cover",
		Summary:     "Upload book cover",
		Description: "Uploads a cover image for a book (moderator only). Accepts JPEG, PNG and WebP.",
		Tags:        []string{"Covers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadBookCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookCover",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/cover",
		Summary:     "Get book cover",
		Description: "Returns the cover image for a book",
		Tags:        []string{"Covers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBookCover)
}

// === DTOs ===

// UploadBookCoverInput carries the raw image bytes for a cover upload.
type UploadBookCoverInput struct {
	ID      string `path:"id" doc:"Book ID"`
	RawBody []byte `contentType:"application/octet-stream"`
}

// CoverImageInput identifies a book cover by book ID. A matching
// If-None-Match header short-circuits to 304.
type CoverImageInput struct {
	ID          string `path:"id" doc:"Book ID"`
	IfNoneMatch string `header:"If-None-Match"`
}

// CoverImageOutput streams cover image bytes with caching headers.
type CoverImageOutput struct {
	Status       int
	ContentType  string `header:"Content-Type"`
	ETag         string `header:"ETag"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

// StatusCode implements huma's status override.
func (o *CoverImageOutput) StatusCode() int {
	return o.Status
}

// === Handlers ===

func (s *Server) handleUploadBookCover(ctx context.Context, input *UploadBookCoverInput) (*BookOutput, error) {
	actor, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if len(input.RawBody) > images.MaxUploadSize {
		return nil, huma.NewError(http.StatusRequestEntityTooLarge, "Cover image too large")
	}

	book, err := s.services.Catalog.SetCover(ctx, actor, input.ID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleGetBookCover(ctx context.Context, input *CoverImageInput) (*CoverImageOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	data, hash, err := s.services.Catalog.GetCover(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	etag := `"` + hash + `"`
	if input.IfNoneMatch == etag {
		return &CoverImageOutput{
			Status:       http.StatusNotModified,
			ETag:         etag,
			CacheControl: CacheOneWeek,
		}, nil
	}

	return &CoverImageOutput{
		Status:       http.StatusOK,
		ContentType:  http.DetectContentType(data),
		ETag:         etag,
		CacheControl: CacheOneWeek,
		Body:         data,
	}, nil
}
