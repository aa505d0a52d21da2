package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

const guideColumns = `id, slug, title, description, content, age_range, category, keywords,
	meta_title, meta_description, status, published_at, created_at, updated_at`

type guideRepository struct {
	db *sql.DB
}

// NewGuideRepository creates a new gift guide repository
func NewGuideRepository(db *sql.DB) repository.GuideRepository {
	return &guideRepository{db: db}
}

func (r *guideRepository) Create(ctx context.Context, guide *models.GiftGuide) (*models.GiftGuide, error) {
	query := `
		INSERT INTO gift_guides (slug, title, description, content, age_range, category, keywords,
			meta_title, meta_description, status, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	guide.CreatedAt = now
	guide.UpdatedAt = now
	if guide.Status == "" {
		guide.Status = models.GuideStatusDraft
	}

	err := r.db.QueryRowContext(ctx, query,
		guide.Slug,
		guide.Title,
		guide.Description,
		guide.Content,
		guide.AgeRange,
		guide.Category,
		textArray(guide.Keywords),
		guide.MetaTitle,
		guide.MetaDescription,
		guide.Status,
		guide.PublishedAt,
		guide.CreatedAt,
		guide.UpdatedAt,
	).Scan(&guide.ID, &guide.CreatedAt, &guide.UpdatedAt)

	if err != nil {
		return nil, wrapErr(err, "create gift guide")
	}

	return guide, nil
}

func (r *guideRepository) GetBySlug(ctx context.Context, slug string) (*models.GiftGuide, error) {
	query := `SELECT ` + guideColumns + ` FROM gift_guides WHERE slug = $1`

	g := &models.GiftGuide{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&g.ID,
		&g.Slug,
		&g.Title,
		&g.Description,
		&g.Content,
		&g.AgeRange,
		&g.Category,
		pq.Array(&g.Keywords),
		&g.MetaTitle,
		&g.MetaDescription,
		&g.Status,
		&g.PublishedAt,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gift guide by slug: %w", err)
	}

	return g, nil
}

func (r *guideRepository) Update(ctx context.Context, guide *models.GiftGuide) (*models.GiftGuide, error) {
	query := `
		UPDATE gift_guides
		SET slug = $2, title = $3, description = $4, content = $5, age_range = $6, category = $7,
		    keywords = $8, meta_title = $9, meta_description = $10, status = $11, published_at = $12,
		    updated_at = $13
		WHERE id = $1`

	guide.UpdatedAt = time.Now()
	if err := execOne(ctx, r.db, "update gift guide", query,
		guide.ID,
		guide.Slug,
		guide.Title,
		guide.Description,
		guide.Content,
		guide.AgeRange,
		guide.Category,
		textArray(guide.Keywords),
		guide.MetaTitle,
		guide.MetaDescription,
		guide.Status,
		guide.PublishedAt,
		guide.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return guide, nil
}

func (r *guideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "delete gift guide", `DELETE FROM gift_guides WHERE id = $1`, id)
}

func (r *guideRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM gift_guides WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check guide slug: %w", err)
	}
	return exists, nil
}

// SetProducts replaces the guide's product placements.
func (r *guideRepository) SetProducts(ctx context.Context, guideID uuid.UUID, products []*models.GuideProduct) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM gift_guide_products WHERE guide_id = $1`, guideID); err != nil {
		return fmt.Errorf("failed to clear guide products: %w", err)
	}

	for _, gp := range products {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO gift_guide_products (guide_id, product_id, position, note)
			VALUES ($1, $2, $3, $4)`,
			guideID, gp.ProductID, gp.Position, gp.Note,
		); err != nil {
			return fmt.Errorf("failed to insert guide product: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit guide products: %w", err)
	}
	return nil
}

func (r *guideRepository) Products(ctx context.Context, guideID uuid.UUID) ([]*models.GuideProduct, error) {
	query := `
		SELECT gp.guide_id, gp.product_id, gp.position, gp.note,
		       ` + prefixed("p", productColumns) + `
		FROM gift_guide_products gp
		JOIN products p ON p.id = gp.product_id
		WHERE gp.guide_id = $1
		ORDER BY gp.position ASC`

	rows, err := r.db.QueryContext(ctx, query, guideID)
	if err != nil {
		return nil, fmt.Errorf("failed to query guide products: %w", err)
	}
	defer rows.Close()

	var out []*models.GuideProduct
	for rows.Next() {
		gp := &models.GuideProduct{Product: &models.Product{}}
		dest := append([]any{&gp.GuideID, &gp.ProductID, &gp.Position, &gp.Note}, productDest(gp.Product)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan guide product: %w", err)
		}
		out = append(out, gp)
	}

	return out, rows.Err()
}

func (r *guideRepository) LogGeneration(ctx context.Context, log *models.GuideGenerationLog) error {
	query := `
		INSERT INTO guide_generation_logs (guide_id, requested_by, model, prompt, request, success,
			error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	log.CreatedAt = time.Now()
	request := "{}"
	if len(log.Request) > 0 {
		request = string(log.Request)
	}

	err := r.db.QueryRowContext(ctx, query,
		log.GuideID,
		log.RequestedBy,
		log.Model,
		log.Prompt,
		request,
		log.Success,
		log.Error,
		log.DurationMS,
		log.CreatedAt,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to log guide generation: %w", err)
	}

	return nil
}
