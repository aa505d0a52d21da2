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

const profileColumns = `id, username, display_name, email, bio, avatar_url, is_public, is_admin,
	follower_count, following_count, guide_enabled, guide_tier, guide_bio,
	instagram_handle, tiktok_handle, youtube_handle, total_earnings, pending_earnings,
	telegram_chat_id, telegram_link_code, created_at, updated_at`

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new creator profile repository
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func scanProfile(row rowScanner) (*models.CreatorProfile, error) {
	p := &models.CreatorProfile{}
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.DisplayName,
		&p.Email,
		&p.Bio,
		&p.AvatarURL,
		&p.IsPublic,
		&p.IsAdmin,
		&p.FollowerCount,
		&p.FollowingCount,
		&p.GuideEnabled,
		&p.GuideTier,
		&p.GuideBio,
		&p.InstagramHandle,
		&p.TikTokHandle,
		&p.YouTubeHandle,
		&p.TotalEarnings,
		&p.PendingEarnings,
		&p.TelegramChatID,
		&p.TelegramLinkCode,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) getOne(ctx context.Context, where string, arg any) (*models.CreatorProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM creator_profiles WHERE ` + where

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CreatorProfile, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.CreatorProfile, error) {
	return r.getOne(ctx, "lower(username) = lower($1)", username)
}

func (r *profileRepository) GetByTelegramLinkCode(ctx context.Context, code string) (*models.CreatorProfile, error) {
	return r.getOne(ctx, "telegram_link_code = $1", code)
}

func (r *profileRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*models.CreatorProfile, error) {
	return r.getOne(ctx, "telegram_chat_id = $1", chatID)
}

func (r *profileRepository) SetTelegramLinkCode(ctx context.Context, id uuid.UUID, code string) error {
	query := `
		UPDATE creator_profiles
		SET telegram_link_code = $2, updated_at = $3
		WHERE id = $1`

	return execOne(ctx, r.db, "set telegram link code", query, id, code, time.Now())
}

// SetTelegramChat stores chatID (nil unlinks) and consumes the link code.
func (r *profileRepository) SetTelegramChat(ctx context.Context, id uuid.UUID, chatID *int64) error {
	query := `
		UPDATE creator_profiles
		SET telegram_chat_id = $2, telegram_link_code = NULL, updated_at = $3
		WHERE id = $1`

	return execOne(ctx, r.db, "set telegram chat", query, id, chatID, time.Now())
}

func (r *profileRepository) AddEarnings(ctx context.Context, id uuid.UUID, amount float64) error {
	query := `
		UPDATE creator_profiles
		SET pending_earnings = pending_earnings + $2,
		    total_earnings = total_earnings + $2,
		    updated_at = $3
		WHERE id = $1`

	return execOne(ctx, r.db, "add earnings", query, id, amount, time.Now())
}
