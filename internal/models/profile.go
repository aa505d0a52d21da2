package models

import (
	"time"

	"github.com/google/uuid"
)

// CreatorProfile is the public-facing profile of a signed-in user. Its ID is
// the identity-service user ID.
type CreatorProfile struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Username         string    `json:"username" db:"username"`
	DisplayName      *string   `json:"display_name" db:"display_name"`
	Email            *string   `json:"-" db:"email"`
	Bio              *string   `json:"bio" db:"bio"`
	AvatarURL        *string   `json:"avatar_url" db:"avatar_url"`
	IsPublic         bool      `json:"is_public" db:"is_public"`
	IsAdmin          bool      `json:"-" db:"is_admin"`
	FollowerCount    int       `json:"follower_count" db:"follower_count"`
	FollowingCount   int       `json:"following_count" db:"following_count"`
	GuideEnabled     bool      `json:"guide_enabled" db:"guide_enabled"`
	GuideTier        string    `json:"guide_tier" db:"guide_tier"`
	GuideBio         *string   `json:"guide_bio" db:"guide_bio"`
	InstagramHandle  *string   `json:"instagram_handle" db:"instagram_handle"`
	TikTokHandle     *string   `json:"tiktok_handle" db:"tiktok_handle"`
	YouTubeHandle    *string   `json:"youtube_handle" db:"youtube_handle"`
	TotalEarnings    float64   `json:"-" db:"total_earnings"`
	PendingEarnings  float64   `json:"-" db:"pending_earnings"`
	TelegramChatID   *int64    `json:"-" db:"telegram_chat_id"`
	TelegramLinkCode *string   `json:"-" db:"telegram_link_code"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Name returns the best display name for the profile
func (p *CreatorProfile) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	return "@" + p.Username
}

// Follow is a directed edge from follower to following.
type Follow struct {
	FollowerID  uuid.UUID `json:"follower_id" db:"follower_id"`
	FollowingID uuid.UUID `json:"following_id" db:"following_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// PublicProfile is what anyone allowed to see a profile gets back.
type PublicProfile struct {
	Profile     *CreatorProfile `json:"profile"`
	Collections []*Collection   `json:"collections"`
	IsOwner     bool            `json:"is_owner"`
	IsFollowing bool            `json:"is_following"`
}

// Earnings is a guide's own view of their balances.
type Earnings struct {
	Tier            string  `json:"tier"`
	TotalEarnings   float64 `json:"total_earnings"`
	PendingEarnings float64 `json:"pending_earnings"`
}
