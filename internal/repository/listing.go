package repository

import (
	"context"

	"wanderlust/internal/domain"
)

// ListingRepository exposes persistence operations for Listing aggregates.
type ListingRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, listing *domain.Listing) (int64, error)
	Update(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Listing, error)
	List(ctx context.Context) ([]domain.Listing, error)
}

// ReviewRepository manages reviews attached to listings.
type ReviewRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, review *domain.Review) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Review, error)
	Delete(ctx context.Context, id int64) error
	ListByListing(ctx context.Context, listingID int64) ([]domain.Review, error)
}
