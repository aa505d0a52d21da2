package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Kerhoff/giddylist/internal/models"
)

var (
	// ErrConflict is returned when a unique column (slug, username) is taken.
	ErrConflict = errors.New("record already exists")
	// ErrItemUnavailable is returned when a claim targets an item that is no
	// longer available.
	ErrItemUnavailable = errors.New("item is no longer available")
	// ErrNotFound is returned by mutations whose target row does not exist.
	ErrNotFound = errors.New("record not found")
)

// ProfileRepository defines the interface for creator profile operations
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.CreatorProfile, error)
	GetByUsername(ctx context.Context, username string) (*models.CreatorProfile, error)
	GetByTelegramLinkCode(ctx context.Context, code string) (*models.CreatorProfile, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*models.CreatorProfile, error)
	SetTelegramLinkCode(ctx context.Context, id uuid.UUID, code string) error
	SetTelegramChat(ctx context.Context, id uuid.UUID, chatID *int64) error
	AddEarnings(ctx context.Context, id uuid.UUID, amount float64) error
}

// FollowRepository defines the interface for follow edges. Follower counts on
// profiles are maintained alongside the edge.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, id uuid.UUID) (int, error)
	CountFollowing(ctx context.Context, id uuid.UUID) (int, error)
}

// KidRepository defines the interface for kid profile operations
type KidRepository interface {
	Create(ctx context.Context, kid *models.Kid) (*models.Kid, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Kid, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Kid, error)
	Update(ctx context.Context, kid *models.Kid) (*models.Kid, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertSizes(ctx context.Context, sizes *models.KidSizes) error
	UpsertPreferences(ctx context.Context, prefs *models.KidPreferences) error
}

// WishlistRepository defines the interface for wishlist item operations
type WishlistRepository interface {
	Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error)
	ListByKid(ctx context.Context, kidID uuid.UUID) ([]*models.WishlistItem, error)
	Update(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegistryRepository defines the interface for registry operations
type RegistryRepository interface {
	Create(ctx context.Context, reg *models.Registry) (*models.Registry, error)
	GetBySlug(ctx context.Context, slug string) (*models.Registry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registry, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Registry, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	AddItem(ctx context.Context, item *models.RegistryItem) (*models.RegistryItem, error)
	// Items returns the registry's items in display order with their
	// wishlist rows loaded.
	Items(ctx context.Context, registryID uuid.UUID) ([]*models.RegistryItem, error)
	HasItem(ctx context.Context, registryID, wishlistItemID uuid.UUID) (bool, error)
}

// ClaimRepository defines the interface for gift claim operations
type ClaimRepository interface {
	// Claim records claim and updates the claimed wishlist item atomically.
	// It returns ErrItemUnavailable when the item is not available or has
	// fewer units left than requested.
	Claim(ctx context.Context, claim *models.GiftClaim) (*models.GiftClaim, *models.WishlistItem, error)
	ListByRegistry(ctx context.Context, registryID uuid.UUID) ([]*models.GiftClaim, error)
}

// CollectionRepository defines the interface for collection operations
type CollectionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	ListPublicByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Collection, error)
	Items(ctx context.Context, collectionID uuid.UUID) ([]*models.CollectionItem, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// GuideRepository defines the interface for gift guide operations
type GuideRepository interface {
	Create(ctx context.Context, guide *models.GiftGuide) (*models.GiftGuide, error)
	GetBySlug(ctx context.Context, slug string) (*models.GiftGuide, error)
	Update(ctx context.Context, guide *models.GiftGuide) (*models.GiftGuide, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	SetProducts(ctx context.Context, guideID uuid.UUID, products []*models.GuideProduct) error
	Products(ctx context.Context, guideID uuid.UUID) ([]*models.GuideProduct, error)
	LogGeneration(ctx context.Context, log *models.GuideGenerationLog) error
}

// ProductRepository defines the interface for curated product operations
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters ProductFilters) ([]*models.Product, error)
}

// TrendingRepository defines the interface for trending gift operations
type TrendingRepository interface {
	List(ctx context.Context, filters TrendingFilters) ([]*models.TrendingGift, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrendingGift, error)
	Create(ctx context.Context, g *models.TrendingGift) (*models.TrendingGift, error)
	Update(ctx context.Context, g *models.TrendingGift) (*models.TrendingGift, error)
}

// NotificationRepository defines the interface for in-app notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
}

// ClickRepository defines the interface for affiliate click tracking
type ClickRepository interface {
	Create(ctx context.Context, c *models.AffiliateClick) error
}

// ProductFilters represents filters for querying products
type ProductFilters struct {
	Category *string
	Age      *int
	Retailer *string
	Limit    int
	Offset   int
}

// TrendingFilters represents filters for querying trending gifts
type TrendingFilters struct {
	AgeRange *string
	Category *string
	Limit    int
}

// Repositories bundles every repository the service layer needs.
type Repositories struct {
	Profiles      ProfileRepository
	Follows       FollowRepository
	Kids          KidRepository
	Wishlist      WishlistRepository
	Registries    RegistryRepository
	Claims        ClaimRepository
	Collections   CollectionRepository
	Guides        GuideRepository
	Products      ProductRepository
	Trending      TrendingRepository
	Notifications NotificationRepository
	Clicks        ClickRepository
}
