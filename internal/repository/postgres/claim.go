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

type claimRepository struct {
	db *sql.DB
}

// NewClaimRepository creates a new gift claim repository
func NewClaimRepository(db *sql.DB) repository.ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) Claim(ctx context.Context, claim *models.GiftClaim) (*models.GiftClaim, *models.WishlistItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := scanWishlistItem(tx.QueryRowContext(ctx,
		`SELECT `+wishlistColumns+` FROM wishlists WHERE id = $1 FOR UPDATE`,
		claim.WishlistItemID,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock wishlist item: %w", err)
	}

	if item.Status != models.ItemStatusAvailable || item.Remaining() < claim.Quantity {
		return nil, nil, repository.ErrItemUnavailable
	}

	now := time.Now()
	claim.CreatedAt = now
	if claim.ClaimType == models.ClaimPurchase {
		claim.PurchasedAt = &now
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO gift_claims (registry_id, wishlist_item_id, claimer_name, claimer_email, message,
			is_anonymous, claim_type, quantity, purchased_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		claim.RegistryID,
		claim.WishlistItemID,
		claim.ClaimerName,
		claim.ClaimerEmail,
		claim.Message,
		claim.IsAnonymous,
		claim.ClaimType,
		claim.Quantity,
		claim.PurchasedAt,
		claim.CreatedAt,
	).Scan(&claim.ID, &claim.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert gift claim: %w", err)
	}

	item.QuantityClaimed += claim.Quantity
	if item.Remaining() == 0 {
		types, err := claimTypes(ctx, tx, item.ID)
		if err != nil {
			return nil, nil, err
		}
		item.Status = models.SettledStatus(types)
	}
	item.UpdatedAt = now

	if _, err := tx.ExecContext(ctx, `
		UPDATE wishlists
		SET quantity_claimed = $2, status = $3, updated_at = $4
		WHERE id = $1`,
		item.ID, item.QuantityClaimed, item.Status, item.UpdatedAt,
	); err != nil {
		return nil, nil, fmt.Errorf("failed to update wishlist item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	return claim, item, nil
}

// claimTypes lists the type of every claim on a wishlist item, including
// ones inserted earlier in tx.
func claimTypes(ctx context.Context, tx *sql.Tx, itemID uuid.UUID) ([]models.ClaimType, error) {
	rows, err := tx.QueryContext(ctx, `SELECT claim_type FROM gift_claims WHERE wishlist_item_id = $1`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query claim types: %w", err)
	}
	defer rows.Close()

	var types []models.ClaimType
	for rows.Next() {
		var t models.ClaimType
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan claim type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *claimRepository) ListByRegistry(ctx context.Context, registryID uuid.UUID) ([]*models.GiftClaim, error) {
	query := `
		SELECT id, registry_id, wishlist_item_id, claimer_name, claimer_email, message,
		       is_anonymous, claim_type, quantity, purchased_at, created_at
		FROM gift_claims
		WHERE registry_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, registryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query gift claims: %w", err)
	}
	defer rows.Close()

	var claims []*models.GiftClaim
	for rows.Next() {
		c := &models.GiftClaim{}
		if err := rows.Scan(
			&c.ID,
			&c.RegistryID,
			&c.WishlistItemID,
			&c.ClaimerName,
			&c.ClaimerEmail,
			&c.Message,
			&c.IsAnonymous,
			&c.ClaimType,
			&c.Quantity,
			&c.PurchasedAt,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan gift claim: %w", err)
		}
		claims = append(claims, c)
	}

	return claims, rows.Err()
}
