package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what happened.
type NotificationType string

const (
	NotificationGiftClaimed NotificationType = "gift_claimed"
	NotificationNewFollower NotificationType = "new_follower"
)

// Notification is an in-app message for a user.
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	Link      *string          `json:"link" db:"link"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// AffiliateClick is one outbound click on a monetized link.
type AffiliateClick struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	URL          string     `json:"url" db:"url"`
	Retailer     string     `json:"retailer" db:"retailer"`
	Source       string     `json:"source" db:"source"`
	ProductID    *uuid.UUID `json:"product_id" db:"product_id"`
	CollectionID *uuid.UUID `json:"collection_id" db:"collection_id"`
	GuideID      *uuid.UUID `json:"guide_id" db:"guide_id"`
	CreatorID    *uuid.UUID `json:"creator_id" db:"creator_id"`
	UserID       *uuid.UUID `json:"user_id" db:"user_id"`
	Referrer     *string    `json:"referrer" db:"referrer"`
	UserAgent    *string    `json:"user_agent" db:"user_agent"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// GuideGenerationLog records one LLM guide-generation attempt.
type GuideGenerationLog struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	GuideID     *uuid.UUID      `json:"guide_id" db:"guide_id"`
	RequestedBy uuid.UUID       `json:"requested_by" db:"requested_by"`
	Model       string          `json:"model" db:"model"`
	Prompt      string          `json:"prompt" db:"prompt"`
	Request     json.RawMessage `json:"request" db:"request"`
	Success     bool            `json:"success" db:"success"`
	Error       *string         `json:"error" db:"error"`
	DurationMS  int64           `json:"duration_ms" db:"duration_ms"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
