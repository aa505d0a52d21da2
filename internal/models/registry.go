package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Registry is a shareable, sluggable list of wishlist items for an occasion.
// The front end also calls it a shortlist.
type Registry struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OwnerID     uuid.UUID  `json:"owner_id" db:"owner_id"`
	KidID       *uuid.UUID `json:"kid_id" db:"kid_id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	Description *string    `json:"description" db:"description"`
	Occasion    *string    `json:"occasion" db:"occasion"`
	EventDate   *time.Time `json:"event_date" db:"event_date"`
	IsPublic    bool       `json:"is_public" db:"is_public"`
	ShowPrices  bool       `json:"show_prices" db:"show_prices"`
	ShowClaimed bool       `json:"show_claimed" db:"show_claimed"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// RegistryItem attaches a wishlist item to a registry at a display position.
type RegistryItem struct {
	ID             uuid.UUID `json:"id" db:"id"`
	RegistryID     uuid.UUID `json:"registry_id" db:"registry_id"`
	WishlistItemID uuid.UUID `json:"wishlist_item_id" db:"wishlist_item_id"`
	Position       int       `json:"position" db:"position"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Item *WishlistItem `json:"item,omitempty"`
}

// ClaimType is what a guest intends to do with an item.
type ClaimType string

const (
	ClaimReserve  ClaimType = "reserve"
	ClaimPurchase ClaimType = "purchase"
)

// Valid reports whether c is a known claim type.
func (c ClaimType) Valid() bool {
	return c == ClaimReserve || c == ClaimPurchase
}

// SettledStatus is the status of a fully claimed item given every claim
// made on it: purchased only when all of them were purchases.
func SettledStatus(claims []ClaimType) ItemStatus {
	if len(claims) == 0 {
		return ItemStatusReserved
	}
	for _, c := range claims {
		if c != ClaimPurchase {
			return ItemStatusReserved
		}
	}
	return ItemStatusPurchased
}

// GiftClaim records a guest reserving or buying a registry item. Rows are
// only ever touched afterwards to set PurchasedAt.
type GiftClaim struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	RegistryID     uuid.UUID  `json:"registry_id" db:"registry_id"`
	WishlistItemID uuid.UUID  `json:"wishlist_item_id" db:"wishlist_item_id"`
	ClaimerName    string     `json:"claimer_name" db:"claimer_name"`
	ClaimerEmail   *string    `json:"-" db:"claimer_email"`
	Message        *string    `json:"message" db:"message"`
	IsAnonymous    bool       `json:"is_anonymous" db:"is_anonymous"`
	ClaimType      ClaimType  `json:"claim_type" db:"claim_type"`
	Quantity       int        `json:"quantity" db:"quantity"`
	PurchasedAt    *time.Time `json:"purchased_at" db:"purchased_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// DisplayName is the claimer name shown to the registry owner.
func (c *GiftClaim) DisplayName() string {
	if c.IsAnonymous || c.ClaimerName == "" {
		return "Someone"
	}
	return c.ClaimerName
}

// RegistryView is the guest-facing registry page.
type RegistryView struct {
	Registry        *Registry       `json:"registry"`
	Owner           *CreatorProfile `json:"owner,omitempty"`
	Items           []*RegistryItem `json:"items"`
	ClaimedCount    int             `json:"claimedCount"`
	TotalCount      int             `json:"totalCount"`
	ProgressPercent int             `json:"progressPercent"`
}

// NewRegistryView computes claim progress over items.
func NewRegistryView(reg *Registry, owner *CreatorProfile, items []*RegistryItem) *RegistryView {
	if items == nil {
		items = []*RegistryItem{}
	}
	v := &RegistryView{Registry: reg, Owner: owner, Items: items, TotalCount: len(items)}
	for _, it := range items {
		if it.Item != nil && it.Item.IsClaimed() {
			v.ClaimedCount++
		}
	}
	v.ProgressPercent = ProgressPercent(v.ClaimedCount, v.TotalCount)
	return v
}

// ProgressPercent is claimed/total as a rounded percentage; 0 when empty.
func ProgressPercent(claimed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(claimed) / float64(total) * 100))
}
