package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus is where a wishlist item is in its claim lifecycle.
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusReserved  ItemStatus = "reserved"
	ItemStatusPurchased ItemStatus = "purchased"
)

// WishlistItem is a product a kid would like, created from a pasted URL.
type WishlistItem struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	KidID           uuid.UUID  `json:"kid_id" db:"kid_id"`
	OwnerID         uuid.UUID  `json:"owner_id" db:"owner_id"`
	URL             string     `json:"url" db:"url"`
	Title           *string    `json:"title" db:"title"`
	Description     *string    `json:"description" db:"description"`
	ImageURL        *string    `json:"image_url" db:"image_url"`
	Price           *float64   `json:"price" db:"price"`
	Currency        *string    `json:"currency" db:"currency"`
	Retailer        string     `json:"retailer" db:"retailer"`
	PlatformID      *string    `json:"platform_id" db:"platform_id"`
	AffiliateURL    *string    `json:"affiliate_url" db:"affiliate_url"`
	Notes           *string    `json:"notes" db:"notes"`
	Status          ItemStatus `json:"status" db:"status"`
	Quantity        int        `json:"quantity" db:"quantity"`
	QuantityClaimed int        `json:"quantity_claimed" db:"quantity_claimed"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// IsClaimed reports whether the item is no longer available to guests.
func (w *WishlistItem) IsClaimed() bool {
	return w.Status != ItemStatusAvailable
}

// Remaining is how many units can still be claimed.
func (w *WishlistItem) Remaining() int {
	if r := w.Quantity - w.QuantityClaimed; r > 0 {
		return r
	}
	return 0
}
