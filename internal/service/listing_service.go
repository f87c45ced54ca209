package service

import (
	"context"
	"strings"

	"wanderlust/internal/domain"
	"wanderlust/internal/repository"
)

// ListingService coordinates listing CRUD backed by repositories.
type ListingService interface {
	Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	Get(ctx context.Context, id int64) (*domain.Listing, error)
	List(ctx context.Context) ([]domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, id int64) error
}

type listingService struct {
	listings repository.ListingRepository
	reviews  repository.ReviewRepository
}

func NewListingService(listings repository.ListingRepository, reviews repository.ReviewRepository) ListingService {
	return &listingService{
		listings: listings,
		reviews:  reviews,
	}
}

func (s *listingService) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	if err := validateListing(listing); err != nil {
		return nil, err
	}
	if _, err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Get returns the listing with its reviews attached.
func (s *listingService) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	listing, err := s.listings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByListing(ctx, id)
	if err != nil {
		return nil, err
	}
	listing.Reviews = reviews
	return listing, nil
}

func (s *listingService) List(ctx context.Context) ([]domain.Listing, error) {
	return s.listings.List(ctx)
}

func (s *listingService) Update(ctx context.Context, listing *domain.Listing) error {
	if err := validateListing(listing); err != nil {
		return err
	}
	return s.listings.Update(ctx, listing)
}

func (s *listingService) Delete(ctx context.Context, id int64) error {
	return s.listings.Delete(ctx, id)
}

func validateListing(listing *domain.Listing) error {
	if strings.TrimSpace(listing.Title) == "" {
		return NewValidationError("title is required")
	}
	if listing.Price < 0 {
		return NewValidationError("price cannot be negative")
	}
	if listing.OwnerID == 0 {
		return NewValidationError("listing owner is required")
	}
	return nil
}
