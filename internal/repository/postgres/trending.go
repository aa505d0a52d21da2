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

const trendingColumns = `id, title, description, image_url, price, affiliate_url, retailer, age_range,
	category, rank, is_active, created_at, updated_at`

type trendingRepository struct {
	db *sql.DB
}

// NewTrendingRepository creates a new trending gift repository
func NewTrendingRepository(db *sql.DB) repository.TrendingRepository {
	return &trendingRepository{db: db}
}

func scanTrending(row rowScanner) (*models.TrendingGift, error) {
	g := &models.TrendingGift{}
	err := row.Scan(
		&g.ID,
		&g.Title,
		&g.Description,
		&g.ImageURL,
		&g.Price,
		&g.AffiliateURL,
		&g.Retailer,
		&g.AgeRange,
		&g.Category,
		&g.Rank,
		&g.IsActive,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *trendingRepository) List(ctx context.Context, filters repository.TrendingFilters) ([]*models.TrendingGift, error) {
	query := `SELECT ` + trendingColumns + ` FROM trending_gifts WHERE is_active = TRUE`
	args := []interface{}{}
	argIdx := 1

	if filters.AgeRange != nil {
		query += fmt.Sprintf(" AND age_range = $%d", argIdx)
		args = append(args, *filters.AgeRange)
		argIdx++
	}
	if filters.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, *filters.Category)
		argIdx++
	}

	query += " ORDER BY rank ASC, created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trending gifts: %w", err)
	}
	defer rows.Close()

	var gifts []*models.TrendingGift
	for rows.Next() {
		g, err := scanTrending(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trending gift: %w", err)
		}
		gifts = append(gifts, g)
	}

	return gifts, rows.Err()
}

func (r *trendingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrendingGift, error) {
	query := `SELECT ` + trendingColumns + ` FROM trending_gifts WHERE id = $1`

	g, err := scanTrending(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trending gift by ID: %w", err)
	}

	return g, nil
}

func (r *trendingRepository) Create(ctx context.Context, g *models.TrendingGift) (*models.TrendingGift, error) {
	query := `
		INSERT INTO trending_gifts (title, description, image_url, price, affiliate_url, retailer,
			age_range, category, rank, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		g.Title,
		g.Description,
		g.ImageURL,
		g.Price,
		g.AffiliateURL,
		g.Retailer,
		g.AgeRange,
		g.Category,
		g.Rank,
		g.IsActive,
		g.CreatedAt,
		g.UpdatedAt,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)

	if err != nil {
		return nil, wrapErr(err, "create trending gift")
	}

	return g, nil
}

func (r *trendingRepository) Update(ctx context.Context, g *models.TrendingGift) (*models.TrendingGift, error) {
	query := `
		UPDATE trending_gifts
		SET title = $2, description = $3, image_url = $4, price = $5, affiliate_url = $6, retailer = $7,
		    age_range = $8, category = $9, rank = $10, is_active = $11, updated_at = $12
		WHERE id = $1`

	g.UpdatedAt = time.Now()
	if err := execOne(ctx, r.db, "update trending gift", query,
		g.ID,
		g.Title,
		g.Description,
		g.ImageURL,
		g.Price,
		g.AffiliateURL,
		g.Retailer,
		g.AgeRange,
		g.Category,
		g.Rank,
		g.IsActive,
		g.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return g, nil
}
