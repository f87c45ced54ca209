package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wanderlust/internal/domain"
	"wanderlust/internal/repository"
)

const createListingsTable = `
CREATE TABLE IF NOT EXISTS listings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	image_key TEXT NOT NULL DEFAULT '',
	price INTEGER NOT NULL DEFAULT 0,
	location TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	owner_id INTEGER NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const listingColumns = `
l.id, l.title, l.description, l.image_url, l.image_key, l.price,
l.location, l.country, l.owner_id, u.username, l.created_at, l.updated_at`

type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createListingsTable); err != nil {
		return fmt.Errorf("create listings table: %w", err)
	}
	return nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) (int64, error) {
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO listings (title, description, image_url, image_key, price, location, country, owner_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.Title,
		listing.Description,
		listing.ImageURL,
		listing.ImageKey,
		listing.Price,
		listing.Location,
		listing.Country,
		listing.OwnerID,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert listing: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("listing last insert id: %w", err)
	}
	listing.ID = id
	return id, nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	listing.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE listings
SET title = ?, description = ?, image_url = ?, image_key = ?, price = ?, location = ?, country = ?, updated_at = ?
WHERE id = ?`,
		listing.Title,
		listing.Description,
		listing.ImageURL,
		listing.ImageKey,
		listing.Price,
		listing.Location,
		listing.Country,
		listing.UpdatedAt,
		listing.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update listing rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("listing %d: %w", listing.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("listing %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *ListingRepository) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+listingColumns+`
FROM listings l
JOIN users u ON u.id = l.owner_id
WHERE l.id = ?`,
		id,
	)

	var listing domain.Listing
	if err := scanListing(row.Scan, &listing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("listing %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	return &listing, nil
}

func (r *ListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+listingColumns+`
FROM listings l
JOIN users u ON u.id = l.owner_id
ORDER BY l.created_at DESC, l.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var listing domain.Listing
		if err := scanListing(rows.Scan, &listing); err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

func scanListing(scan func(dest ...any) error, listing *domain.Listing) error {
	return scan(
		&listing.ID,
		&listing.Title,
		&listing.Description,
		&listing.ImageURL,
		&listing.ImageKey,
		&listing.Price,
		&listing.Location,
		&listing.Country,
		&listing.OwnerID,
		&listing.OwnerName,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
}
