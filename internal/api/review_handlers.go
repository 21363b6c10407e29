package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "Add review",
		Description: "Records the user's review of a book. Reviews are immutable: one per user per book, no edits.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "List reviews",
		Description: "Returns all reviews of a book, newest first",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOwnReview",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews/me",
		Summary:     "Get my review",
		Description: "Returns the current user's review of a book",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetOwnReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookRating",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/rating",
		Summary:     "Get book rating",
		Description: "Returns the book's average rating and review count",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBookRating)
}

// === DTOs ===

// AddReviewRequest is the request body for adding a review.
type AddReviewRequest struct {
	Rating int    `json:"rating" doc:"Whole-star rating from 1 to 5"`
	Text   string `json:"text" doc:"Optional review text, 10 to 1000 characters after trimming when present"`
}

// AddReviewInput wraps the review request for Huma.
type AddReviewInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body AddReviewRequest
}

// ReviewResponse contains review data in API responses.
type ReviewResponse struct {
	ID         string    `json:"id" doc:"Review ID"`
	BookID     string    `json:"book_id" doc:"Reviewed book ID"`
	UserID     string    `json:"user_id" doc:"Reviewer user ID"`
	AuthorName string    `json:"author_name,omitempty" doc:"Reviewer display name"`
	Rating     int       `json:"rating" doc:"Whole-star rating"`
	Text       string    `json:"text" doc:"Review text"`
	CreatedAt  time.Time `json:"created_at" doc:"When the review was written"`
}

// ReviewOutput wraps a review response for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// ListReviewsResponse contains a book's reviews.
type ListReviewsResponse struct {
	Reviews []ReviewResponse `json:"reviews" doc:"Reviews, newest first"`
}

// ListReviewsOutput wraps the list response for Huma.
type ListReviewsOutput struct {
	Body ListReviewsResponse
}

// RatingSummaryResponse contains a book's rating aggregates.
type RatingSummaryResponse struct {
	AverageRating float64 `json:"average_rating" doc:"Average rating rounded to one decimal, 0 with no reviews"`
	ReviewCount   int     `json:"review_count" doc:"Number of reviews"`
}

// RatingSummaryOutput wraps the summary response for Huma.
type RatingSummaryOutput struct {
	Body RatingSummaryResponse
}

// === Handlers ===

func (s *Server) handleAddReview(ctx context.Context, input *AddReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.AddReview(ctx, userID, input.ID, service.AddReviewRequest{
		Rating: input.Body.Rating,
		Text:   input.Body.Text,
	})
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: mapReviewResponse(review)}, nil
}

func (s *Server) handleListReviews(ctx context.Context, input *GetBookInput) (*ListReviewsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	reviews, err := s.services.Review.ListReviews(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, mapReviewResponse(review))
	}

	return &ListReviewsOutput{Body: ListReviewsResponse{Reviews: out}}, nil
}

func (s *Server) handleGetOwnReview(ctx context.Context, input *GetBookInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.GetOwnReview(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: mapReviewResponse(review)}, nil
}

func (s *Server) handleGetBookRating(ctx context.Context, input *GetBookInput) (*RatingSummaryOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	summary, err := s.services.Review.GetRatingSummary(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &RatingSummaryOutput{Body: RatingSummaryResponse{
		AverageRating: summary.AverageRating,
		ReviewCount:   summary.ReviewCount,
	}}, nil
}

// === Mappers ===

func mapReviewResponse(review *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:         review.ID,
		BookID:     review.BookID,
		UserID:     review.UserID,
		AuthorName: review.AuthorName,
		Rating:     review.Rating,
		Text:       review.Text,
		CreatedAt:  review.CreatedAt,
	}
}
