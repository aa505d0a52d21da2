package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

const collectionColumns = `id, owner_id, title, description, cover_image_url, age_tags, category_tags,
	is_public, view_count, created_at, updated_at`

type collectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *sql.DB) repository.CollectionRepository {
	return &collectionRepository{db: db}
}

func scanCollection(row rowScanner) (*models.Collection, error) {
	c := &models.Collection{}
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Title,
		&c.Description,
		&c.CoverImageURL,
		pq.Array(&c.AgeTags),
		pq.Array(&c.CategoryTags),
		&c.IsPublic,
		&c.ViewCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *collectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE id = $1`

	c, err := scanCollection(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get collection by ID: %w", err)
	}

	return c, nil
}

func (r *collectionRepository) ListPublicByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Collection, error) {
	query := `SELECT ` + collectionColumns + `
		FROM collections
		WHERE owner_id = $1 AND is_public = TRUE
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var collections []*models.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}

	return collections, rows.Err()
}

func (r *collectionRepository) Items(ctx context.Context, collectionID uuid.UUID) ([]*models.CollectionItem, error) {
	query := `
		SELECT id, collection_id, wishlist_item_id, title, url, image_url, price, affiliate_url,
		       note, position, created_at
		FROM collection_items
		WHERE collection_id = $1
		ORDER BY position ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection items: %w", err)
	}
	defer rows.Close()

	var items []*models.CollectionItem
	for rows.Next() {
		it := &models.CollectionItem{}
		if err := rows.Scan(
			&it.ID,
			&it.CollectionID,
			&it.WishlistItemID,
			&it.Title,
			&it.URL,
			&it.ImageURL,
			&it.Price,
			&it.AffiliateURL,
			&it.Note,
			&it.Position,
			&it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collection item: %w", err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

func (r *collectionRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "increment collection views",
		`UPDATE collections SET view_count = view_count + 1 WHERE id = $1`, id)
}
