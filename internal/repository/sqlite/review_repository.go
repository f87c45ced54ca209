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

const createReviewsTable = `
CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	listing_id INTEGER NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
	author_id INTEGER NOT NULL REFERENCES users(id),
	rating INTEGER NOT NULL,
	comment TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReviewsTable); err != nil {
		return fmt.Errorf("create reviews table: %w", err)
	}
	return nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (int64, error) {
	review.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO reviews (listing_id, author_id, rating, comment, created_at)
VALUES (?, ?, ?, ?, ?)`,
		review.ListingID,
		review.AuthorID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("review last insert id: %w", err)
	}
	review.ID = id
	return id, nil
}

func (r *ReviewRepository) Get(ctx context.Context, id int64) (*domain.Review, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT r.id, r.listing_id, r.author_id, u.username, r.rating, r.comment, r.created_at
FROM reviews r
JOIN users u ON u.id = r.author_id
WHERE r.id = ?`,
		id,
	)

	var review domain.Review
	if err := row.Scan(
		&review.ID,
		&review.ListingID,
		&review.AuthorID,
		&review.AuthorName,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("review %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return &review, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("review %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID int64) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT r.id, r.listing_id, r.author_id, u.username, r.rating, r.comment, r.created_at
FROM reviews r
JOIN users u ON u.id = r.author_id
WHERE r.listing_id = ?
ORDER BY r.created_at DESC, r.id DESC`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.ListingID,
			&review.AuthorID,
			&review.AuthorName,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}
