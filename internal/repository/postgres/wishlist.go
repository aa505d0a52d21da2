package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

const wishlistColumns = `id, kid_id, owner_id, url, title, description, image_url, price, currency,
	retailer, platform_id, affiliate_url, notes, status, quantity, quantity_claimed,
	created_at, updated_at`

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new wishlist item repository
func NewWishlistRepository(db *sql.DB) repository.WishlistRepository {
	return &wishlistRepository{db: db}
}

func scanWishlistItem(row rowScanner) (*models.WishlistItem, error) {
	item := &models.WishlistItem{}
	err := row.Scan(
		&item.ID,
		&item.KidID,
		&item.OwnerID,
		&item.URL,
		&item.Title,
		&item.Description,
		&item.ImageURL,
		&item.Price,
		&item.Currency,
		&item.Retailer,
		&item.PlatformID,
		&item.AffiliateURL,
		&item.Notes,
		&item.Status,
		&item.Quantity,
		&item.QuantityClaimed,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *wishlistRepository) Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	query := `
		INSERT INTO wishlists (kid_id, owner_id, url, title, description, image_url, price, currency,
			retailer, platform_id, affiliate_url, notes, status, quantity, quantity_claimed,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = models.ItemStatusAvailable
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	err := r.db.QueryRowContext(ctx, query,
		item.KidID,
		item.OwnerID,
		item.URL,
		item.Title,
		item.Description,
		item.ImageURL,
		item.Price,
		item.Currency,
		item.Retailer,
		item.PlatformID,
		item.AffiliateURL,
		item.Notes,
		item.Status,
		item.Quantity,
		item.QuantityClaimed,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return nil, wrapErr(err, "create wishlist item")
	}

	return item, nil
}

func (r *wishlistRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlists WHERE id = $1`

	item, err := scanWishlistItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wishlist item by ID: %w", err)
	}

	return item, nil
}

func (r *wishlistRepository) ListByKid(ctx context.Context, kidID uuid.UUID) ([]*models.WishlistItem, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlists WHERE kid_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist items: %w", err)
	}
	defer rows.Close()

	var items []*models.WishlistItem
	for rows.Next() {
		item, err := scanWishlistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Update rewrites the scraped metadata and notes. Claim state is only changed
// through ClaimRepository.
func (r *wishlistRepository) Update(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	query := `
		UPDATE wishlists
		SET url = $2, title = $3, description = $4, image_url = $5, price = $6, currency = $7,
		    retailer = $8, platform_id = $9, affiliate_url = $10, notes = $11, quantity = $12,
		    updated_at = $13
		WHERE id = $1`

	item.UpdatedAt = time.Now()
	if err := execOne(ctx, r.db, "update wishlist item", query,
		item.ID,
		item.URL,
		item.Title,
		item.Description,
		item.ImageURL,
		item.Price,
		item.Currency,
		item.Retailer,
		item.PlatformID,
		item.AffiliateURL,
		item.Notes,
		item.Quantity,
		item.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return item, nil
}

func (r *wishlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "delete wishlist item", `DELETE FROM wishlists WHERE id = $1`, id)
}
