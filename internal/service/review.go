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

// ReviewService manages book reviews. Each user may review a book once and
// reviews are immutable after submission.
type ReviewService struct {
	store  store.Store
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store store.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: logger,
	}
}

// AddReviewRequest contains a new review submission.
type AddReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text"`
}

// RatingSummary aggregates a book's reviews.
type RatingSummary struct {
	AverageRating float64 `json:"average_rating"` // Rounded to one decimal place
	ReviewCount   int     `json:"review_count"`
}

// AddReview records the user's review of a book. The text is optional; when
// present its length is checked after trimming surrounding whitespace.
func (s *ReviewService) AddReview(ctx context.Context, userID, bookID string, req AddReviewRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text != "" {
		if len([]rune(text)) < domain.MinReviewTextLength {
			return nil, domainerrors.Validationf("review text must be at least %d characters", domain.MinReviewTextLength)
		}
		if len([]rune(text)) > domain.MaxReviewTextLength {
			return nil, domainerrors.Validationf("review text must be at most %d characters", domain.MaxReviewTextLength)
		}
	}

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("lookup book: %w", err)
	}

	reviewID, err := id.Generate("review")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Entity: domain.Entity{ID: reviewID},
		UserID: userID,
		BookID: bookID,
		Rating: req.Rating,
		Text:   text,
	}
	review.InitTimestamps()

	if err := s.store.CreateReview(ctx, review); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrAlreadyExists.Code {
			return nil, domainerrors.Conflict("you have already reviewed this book")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("review added",
		"review_id", reviewID,
		"user_id", userID,
		"book_id", bookID,
		"rating", req.Rating,
	)

	return review, nil
}

// GetOwnReview returns the user's review of a book, if any.
func (s *ReviewService) GetOwnReview(ctx context.Context, userID, bookID string) (*domain.Review, error) {
	review, err := s.store.GetReviewByUserAndBook(ctx, userID, bookID)
	if err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return nil, domainerrors.NotFound("you have not reviewed this book")
		}
		return nil, fmt.Errorf("lookup review: %w", err)
	}
	return review, nil
}

// ListReviews returns a book's reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, bookID string) ([]*domain.Review, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Code == store.ErrNotFound.Code {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("lookup book: %w", err)
	}

	reviews, err := s.store.ListReviewsForBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// GetRatingSummary returns a book's average rating and review count.
func (s *ReviewService) GetRatingSummary(ctx context.Context, bookID string) (*RatingSummary, error) {
	avg, count, err := s.store.AverageRatingForBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	return &RatingSummary{
		AverageRating: avg,
		ReviewCount:   count,
	}, nil
}
