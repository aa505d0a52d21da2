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

const productColumns = `id, title, description, image_url, price, currency, retailer, asin, url,
	affiliate_url, category, age_min, age_max, is_active, created_at, updated_at`

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func productDest(p *models.Product) []any {
	return []any{
		&p.ID,
		&p.Title,
		&p.Description,
		&p.ImageURL,
		&p.Price,
		&p.Currency,
		&p.Retailer,
		&p.ASIN,
		&p.URL,
		&p.AffiliateURL,
		&p.Category,
		&p.AgeMin,
		&p.AgeMax,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (title, description, image_url, price, currency, retailer, asin, url,
			affiliate_url, category, age_min, age_max, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		p.Title,
		p.Description,
		p.ImageURL,
		p.Price,
		p.Currency,
		p.Retailer,
		p.ASIN,
		p.URL,
		p.AffiliateURL,
		p.Category,
		p.AgeMin,
		p.AgeMax,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return nil, wrapErr(err, "create product")
	}

	return p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p := &models.Product{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(productDest(p)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}

	return p, nil
}

// List returns active products matching filters, newest first.
func (r *productRepository) List(ctx context.Context, filters repository.ProductFilters) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = TRUE`
	args := []interface{}{}
	argIdx := 1

	if filters.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, *filters.Category)
		argIdx++
	}
	if filters.Retailer != nil {
		query += fmt.Sprintf(" AND retailer = $%d", argIdx)
		args = append(args, *filters.Retailer)
		argIdx++
	}
	if filters.Age != nil {
		query += fmt.Sprintf(" AND (age_min IS NULL OR age_min <= $%d) AND (age_max IS NULL OR age_max >= $%d)", argIdx, argIdx)
		args = append(args, *filters.Age)
		argIdx++
	}

	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		argIdx++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(productDest(p)...); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}
