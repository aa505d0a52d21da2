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

type kidRepository struct {
	db *sql.DB
}

// NewKidRepository creates a new kid repository
func NewKidRepository(db *sql.DB) repository.KidRepository {
	return &kidRepository{db: db}
}

func (r *kidRepository) Create(ctx context.Context, kid *models.Kid) (*models.Kid, error) {
	query := `
		INSERT INTO kids (owner_id, name, birthdate, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	kid.CreatedAt = now
	kid.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		kid.OwnerID,
		kid.Name,
		kid.Birthdate,
		kid.AvatarURL,
		kid.CreatedAt,
		kid.UpdatedAt,
	).Scan(&kid.ID, &kid.CreatedAt, &kid.UpdatedAt)

	if err != nil {
		return nil, wrapErr(err, "create kid")
	}

	return kid, nil
}

// GetByID loads the kid together with its sizes and preferences.
func (r *kidRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Kid, error) {
	query := `
		SELECT k.id, k.owner_id, k.name, k.birthdate, k.avatar_url, k.created_at, k.updated_at,
		       s.kid_id, s.shirt, s.pants, s.shoe, s.dress, s.updated_at,
		       p.kid_id, p.favorite_colors, p.interests, p.dislikes, p.notes, p.updated_at
		FROM kids k
		LEFT JOIN kid_sizes s ON s.kid_id = k.id
		LEFT JOIN kid_preferences p ON p.kid_id = k.id
		WHERE k.id = $1`

	kid := &models.Kid{}
	var (
		sizesKid, prefsKid         *uuid.UUID
		sizesUpdated, prefsUpdated *time.Time
		sizes                      models.KidSizes
		prefs                      models.KidPreferences
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&kid.ID,
		&kid.OwnerID,
		&kid.Name,
		&kid.Birthdate,
		&kid.AvatarURL,
		&kid.CreatedAt,
		&kid.UpdatedAt,
		&sizesKid,
		&sizes.Shirt,
		&sizes.Pants,
		&sizes.Shoe,
		&sizes.Dress,
		&sizesUpdated,
		&prefsKid,
		pq.Array(&prefs.FavoriteColors),
		pq.Array(&prefs.Interests),
		pq.Array(&prefs.Dislikes),
		&prefs.Notes,
		&prefsUpdated,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get kid by ID: %w", err)
	}

	if sizesKid != nil {
		sizes.KidID = *sizesKid
		sizes.UpdatedAt = *sizesUpdated
		kid.Sizes = &sizes
	}
	if prefsKid != nil {
		prefs.KidID = *prefsKid
		prefs.UpdatedAt = *prefsUpdated
		kid.Preferences = &prefs
	}

	return kid, nil
}

func (r *kidRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Kid, error) {
	query := `
		SELECT id, owner_id, name, birthdate, avatar_url, created_at, updated_at
		FROM kids
		WHERE owner_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query kids: %w", err)
	}
	defer rows.Close()

	var kids []*models.Kid
	for rows.Next() {
		kid := &models.Kid{}
		if err := rows.Scan(
			&kid.ID,
			&kid.OwnerID,
			&kid.Name,
			&kid.Birthdate,
			&kid.AvatarURL,
			&kid.CreatedAt,
			&kid.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan kid: %w", err)
		}
		kids = append(kids, kid)
	}

	return kids, rows.Err()
}

func (r *kidRepository) Update(ctx context.Context, kid *models.Kid) (*models.Kid, error) {
	query := `
		UPDATE kids
		SET name = $2, birthdate = $3, avatar_url = $4, updated_at = $5
		WHERE id = $1`

	kid.UpdatedAt = time.Now()
	if err := execOne(ctx, r.db, "update kid", query,
		kid.ID,
		kid.Name,
		kid.Birthdate,
		kid.AvatarURL,
		kid.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return kid, nil
}

func (r *kidRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "delete kid", `DELETE FROM kids WHERE id = $1`, id)
}

func (r *kidRepository) UpsertSizes(ctx context.Context, sizes *models.KidSizes) error {
	query := `
		INSERT INTO kid_sizes (kid_id, shirt, pants, shoe, dress, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kid_id) DO UPDATE
		SET shirt = EXCLUDED.shirt, pants = EXCLUDED.pants, shoe = EXCLUDED.shoe,
		    dress = EXCLUDED.dress, updated_at = EXCLUDED.updated_at`

	sizes.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		sizes.KidID,
		sizes.Shirt,
		sizes.Pants,
		sizes.Shoe,
		sizes.Dress,
		sizes.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert kid sizes: %w", err)
	}

	return nil
}

func (r *kidRepository) UpsertPreferences(ctx context.Context, prefs *models.KidPreferences) error {
	query := `
		INSERT INTO kid_preferences (kid_id, favorite_colors, interests, dislikes, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kid_id) DO UPDATE
		SET favorite_colors = EXCLUDED.favorite_colors, interests = EXCLUDED.interests,
		    dislikes = EXCLUDED.dislikes, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`

	prefs.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		prefs.KidID,
		textArray(prefs.FavoriteColors),
		textArray(prefs.Interests),
		textArray(prefs.Dislikes),
		prefs.Notes,
		prefs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert kid preferences: %w", err)
	}

	return nil
}
