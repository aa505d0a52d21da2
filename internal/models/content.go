package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection is a creator's public curated gift guide page.
type Collection struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OwnerID       uuid.UUID `json:"owner_id" db:"owner_id"`
	Title         string    `json:"title" db:"title"`
	Description   *string   `json:"description" db:"description"`
	CoverImageURL *string   `json:"cover_image_url" db:"cover_image_url"`
	AgeTags       []string  `json:"age_tags" db:"age_tags"`
	CategoryTags  []string  `json:"category_tags" db:"category_tags"`
	IsPublic      bool      `json:"is_public" db:"is_public"`
	ViewCount     int       `json:"view_count" db:"view_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	Items []*CollectionItem `json:"items,omitempty"`
}

// CollectionItem is either a reference to a wishlist item or a freeform
// product entry.
type CollectionItem struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	CollectionID   uuid.UUID  `json:"collection_id" db:"collection_id"`
	WishlistItemID *uuid.UUID `json:"wishlist_item_id" db:"wishlist_item_id"`
	Title          *string    `json:"title" db:"title"`
	URL            *string    `json:"url" db:"url"`
	ImageURL       *string    `json:"image_url" db:"image_url"`
	Price          *float64   `json:"price" db:"price"`
	AffiliateURL   *string    `json:"affiliate_url" db:"affiliate_url"`
	Note           *string    `json:"note" db:"note"`
	Position       int        `json:"position" db:"position"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// GuideStatus is the publication state of a gift guide.
type GuideStatus string

const (
	GuideStatusDraft     GuideStatus = "draft"
	GuideStatusPublished GuideStatus = "published"
	GuideStatusArchived  GuideStatus = "archived"
)

// Valid reports whether s is a known guide status.
func (s GuideStatus) Valid() bool {
	switch s {
	case GuideStatusDraft, GuideStatusPublished, GuideStatusArchived:
		return true
	}
	return false
}

// GiftGuide is an SEO article built around a curated product set.
type GiftGuide struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	Slug            string      `json:"slug" db:"slug"`
	Title           string      `json:"title" db:"title"`
	Description     *string     `json:"description" db:"description"`
	Content         *string     `json:"content" db:"content"`
	AgeRange        *string     `json:"age_range" db:"age_range"`
	Category        *string     `json:"category" db:"category"`
	Keywords        []string    `json:"keywords" db:"keywords"`
	MetaTitle       *string     `json:"meta_title" db:"meta_title"`
	MetaDescription *string     `json:"meta_description" db:"meta_description"`
	Status          GuideStatus `json:"status" db:"status"`
	PublishedAt     *time.Time  `json:"published_at" db:"published_at"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`

	Products []*GuideProduct `json:"products,omitempty"`
}

// GuideProduct is a product placed in a guide.
type GuideProduct struct {
	GuideID   uuid.UUID `json:"guide_id" db:"guide_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Position  int       `json:"position" db:"position"`
	Note      *string   `json:"note" db:"note"`

	Product *Product `json:"product,omitempty"`
}

// Product is a curated catalogue entry.
type Product struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  *string   `json:"description" db:"description"`
	ImageURL     *string   `json:"image_url" db:"image_url"`
	Price        *float64  `json:"price" db:"price"`
	Currency     *string   `json:"currency" db:"currency"`
	Retailer     string    `json:"retailer" db:"retailer"`
	ASIN         *string   `json:"asin" db:"asin"`
	URL          string    `json:"url" db:"url"`
	AffiliateURL *string   `json:"affiliate_url" db:"affiliate_url"`
	Category     *string   `json:"category" db:"category"`
	AgeMin       *int      `json:"age_min" db:"age_min"`
	AgeMax       *int      `json:"age_max" db:"age_max"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// FitsAge reports whether age falls in the product's range. Open ends match.
func (p *Product) FitsAge(age int) bool {
	if p.AgeMin != nil && age < *p.AgeMin {
		return false
	}
	if p.AgeMax != nil && age > *p.AgeMax {
		return false
	}
	return true
}

// TrendingGift is a popular product for an age bucket and category.
type TrendingGift struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  *string   `json:"description" db:"description"`
	ImageURL     *string   `json:"image_url" db:"image_url"`
	Price        *float64  `json:"price" db:"price"`
	AffiliateURL string    `json:"affiliate_url" db:"affiliate_url"`
	Retailer     string    `json:"retailer" db:"retailer"`
	AgeRange     string    `json:"age_range" db:"age_range"`
	Category     string    `json:"category" db:"category"`
	Rank         int       `json:"rank" db:"rank"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
