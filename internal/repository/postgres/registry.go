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

const registryColumns = `id, owner_id, kid_id, title, slug, description, occasion, event_date,
	is_public, show_prices, show_claimed, created_at, updated_at`

type registryRepository struct {
	db *sql.DB
}

// NewRegistryRepository creates a new registry repository
func NewRegistryRepository(db *sql.DB) repository.RegistryRepository {
	return &registryRepository{db: db}
}

func scanRegistry(row rowScanner) (*models.Registry, error) {
	reg := &models.Registry{}
	err := row.Scan(
		&reg.ID,
		&reg.OwnerID,
		&reg.KidID,
		&reg.Title,
		&reg.Slug,
		&reg.Description,
		&reg.Occasion,
		&reg.EventDate,
		&reg.IsPublic,
		&reg.ShowPrices,
		&reg.ShowClaimed,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registryRepository) Create(ctx context.Context, reg *models.Registry) (*models.Registry, error) {
	query := `
		INSERT INTO registries (owner_id, kid_id, title, slug, description, occasion, event_date,
			is_public, show_prices, show_claimed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		reg.OwnerID,
		reg.KidID,
		reg.Title,
		reg.Slug,
		reg.Description,
		reg.Occasion,
		reg.EventDate,
		reg.IsPublic,
		reg.ShowPrices,
		reg.ShowClaimed,
		reg.CreatedAt,
		reg.UpdatedAt,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)

	if err != nil {
		return nil, wrapErr(err, "create registry")
	}

	return reg, nil
}

func (r *registryRepository) getOne(ctx context.Context, where string, arg any) (*models.Registry, error) {
	query := `SELECT ` + registryColumns + ` FROM registries WHERE ` + where

	reg, err := scanRegistry(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get registry: %w", err)
	}
	return reg, nil
}

func (r *registryRepository) GetBySlug(ctx context.Context, slug string) (*models.Registry, error) {
	return r.getOne(ctx, "slug = $1", slug)
}

func (r *registryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registry, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *registryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Registry, error) {
	query := `SELECT ` + registryColumns + ` FROM registries WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registries: %w", err)
	}
	defer rows.Close()

	var regs []*models.Registry
	for rows.Next() {
		reg, err := scanRegistry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registry: %w", err)
		}
		regs = append(regs, reg)
	}

	return regs, rows.Err()
}

func (r *registryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM registries WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check registry slug: %w", err)
	}
	return exists, nil
}

func (r *registryRepository) AddItem(ctx context.Context, item *models.RegistryItem) (*models.RegistryItem, error) {
	query := `
		INSERT INTO registry_items (registry_id, wishlist_item_id, position, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	item.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query,
		item.RegistryID,
		item.WishlistItemID,
		item.Position,
		item.CreatedAt,
	).Scan(&item.ID, &item.CreatedAt)

	if err != nil {
		return nil, wrapErr(err, "add registry item")
	}

	return item, nil
}

func (r *registryRepository) Items(ctx context.Context, registryID uuid.UUID) ([]*models.RegistryItem, error) {
	query := `
		SELECT ri.id, ri.registry_id, ri.wishlist_item_id, ri.position, ri.created_at,
		       w.id, w.kid_id, w.owner_id, w.url, w.title, w.description, w.image_url, w.price, w.currency,
		       w.retailer, w.platform_id, w.affiliate_url, w.notes, w.status, w.quantity, w.quantity_claimed,
		       w.created_at, w.updated_at
		FROM registry_items ri
		JOIN wishlists w ON w.id = ri.wishlist_item_id
		WHERE ri.registry_id = $1
		ORDER BY ri.position ASC, ri.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, registryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registry items: %w", err)
	}
	defer rows.Close()

	var items []*models.RegistryItem
	for rows.Next() {
		ri := &models.RegistryItem{Item: &models.WishlistItem{}}
		w := ri.Item
		if err := rows.Scan(
			&ri.ID,
			&ri.RegistryID,
			&ri.WishlistItemID,
			&ri.Position,
			&ri.CreatedAt,
			&w.ID,
			&w.KidID,
			&w.OwnerID,
			&w.URL,
			&w.Title,
			&w.Description,
			&w.ImageURL,
			&w.Price,
			&w.Currency,
			&w.Retailer,
			&w.PlatformID,
			&w.AffiliateURL,
			&w.Notes,
			&w.Status,
			&w.Quantity,
			&w.QuantityClaimed,
			&w.CreatedAt,
			&w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registry item: %w", err)
		}
		items = append(items, ri)
	}

	return items, rows.Err()
}

func (r *registryRepository) HasItem(ctx context.Context, registryID, wishlistItemID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM registry_items WHERE registry_id = $1 AND wishlist_item_id = $2)`,
		registryID, wishlistItemID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check registry item: %w", err)
	}
	return exists, nil
}
