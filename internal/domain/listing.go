package domain

import "time"

// Listing is a property listing published by a user.
type Listing struct {
	ID          int64
	Title       string
	Description string
	ImageURL    string
	ImageKey    string
	Price       int64
	Location    string
	Country     string
	OwnerID     int64
	OwnerName   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Reviews     []Review
}

// Review is a rating and comment left on a listing.
type Review struct {
	ID         int64
	ListingID  int64
	AuthorID   int64
	AuthorName string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}
