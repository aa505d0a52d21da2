package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/giddylist/internal/repository"
)

type followRepository struct {
	db *sql.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *sql.DB) repository.FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	query := `
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`

	return r.changeEdge(ctx, followerID, followingID, 1, query, followerID, followingID, time.Now())
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`

	return r.changeEdge(ctx, followerID, followingID, -1, query, followerID, followingID)
}

// changeEdge applies the edge statement and, when it changed a row, moves the
// denormalized counters on both profiles by delta.
func (r *followRepository) changeEdge(ctx context.Context, followerID, followingID uuid.UUID, delta int, stmt string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return wrapErr(err, "change follow")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE creator_profiles SET following_count = GREATEST(following_count + $2, 0) WHERE id = $1`,
		followerID, delta,
	); err != nil {
		return fmt.Errorf("failed to update following count: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE creator_profiles SET follower_count = GREATEST(follower_count + $2, 0) WHERE id = $1`,
		followingID, delta,
	); err != nil {
		return fmt.Errorf("failed to update follower count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit follow: %w", err)
	}
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, id uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM follows WHERE following_id = $1`, id)
}

func (r *followRepository) CountFollowing(ctx context.Context, id uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM follows WHERE follower_id = $1`, id)
}

func (r *followRepository) count(ctx context.Context, query string, id uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count follows: %w", err)
	}
	return n, nil
}
