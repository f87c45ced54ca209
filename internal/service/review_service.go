package service

import (
	"context"
	"strings"

	"wanderlust/internal/domain"
	"wanderlust/internal/repository"
)

// ReviewService coordinates reviews scoped to a listing.
type ReviewService interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	Get(ctx context.Context, id int64) (*domain.Review, error)
	Delete(ctx context.Context, id int64) error
}

type reviewService struct {
	reviews  repository.ReviewRepository
	listings repository.ListingRepository
}

func NewReviewService(reviews repository.ReviewRepository, listings repository.ListingRepository) ReviewService {
	return &reviewService{
		reviews:  reviews,
		listings: listings,
	}
}

func (s *reviewService) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, NewValidationError("rating must be between 1 and 5")
	}
	if strings.TrimSpace(review.Comment) == "" {
		return nil, NewValidationError("comment is required")
	}

	// fails with not-found before inserting a review for a missing listing
	if _, err := s.listings.Get(ctx, review.ListingID); err != nil {
		return nil, err
	}

	if _, err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Get(ctx context.Context, id int64) (*domain.Review, error) {
	return s.reviews.Get(ctx, id)
}

func (s *reviewService) Delete(ctx context.Context, id int64) error {
	return s.reviews.Delete(ctx, id)
}
