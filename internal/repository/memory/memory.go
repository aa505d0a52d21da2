// Package memory implements the repository interfaces in process memory. It
// backs the service and API tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

// Store holds every table. The zero value is not usable; call New.
type Store struct {
	mu sync.Mutex

	profiles      map[uuid.UUID]models.CreatorProfile
	follows       map[[2]uuid.UUID]time.Time
	kids          map[uuid.UUID]models.Kid
	sizes         map[uuid.UUID]models.KidSizes
	prefs         map[uuid.UUID]models.KidPreferences
	wishlist      map[uuid.UUID]models.WishlistItem
	registries    map[uuid.UUID]models.Registry
	registryItems []models.RegistryItem
	claims        []models.GiftClaim
	collections   map[uuid.UUID]models.Collection
	collItems     []models.CollectionItem
	guides        map[uuid.UUID]models.GiftGuide
	guideProducts map[uuid.UUID][]models.GuideProduct
	genLogs       []models.GuideGenerationLog
	products      map[uuid.UUID]models.Product
	trending      map[uuid.UUID]models.TrendingGift
	notifications []models.Notification
	clicks        []models.AffiliateClick
}

// New creates an empty store.
func New() *Store {
	return &Store{
		profiles:      make(map[uuid.UUID]models.CreatorProfile),
		follows:       make(map[[2]uuid.UUID]time.Time),
		kids:          make(map[uuid.UUID]models.Kid),
		sizes:         make(map[uuid.UUID]models.KidSizes),
		prefs:         make(map[uuid.UUID]models.KidPreferences),
		wishlist:      make(map[uuid.UUID]models.WishlistItem),
		registries:    make(map[uuid.UUID]models.Registry),
		collections:   make(map[uuid.UUID]models.Collection),
		guides:        make(map[uuid.UUID]models.GiftGuide),
		guideProducts: make(map[uuid.UUID][]models.GuideProduct),
		products:      make(map[uuid.UUID]models.Product),
		trending:      make(map[uuid.UUID]models.TrendingGift),
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Profiles:      profiles{s},
		Follows:       follows{s},
		Kids:          kids{s},
		Wishlist:      wishlist{s},
		Registries:    registries{s},
		Claims:        claims{s},
		Collections:   collections{s},
		Guides:        guides{s},
		Products:      products{s},
		Trending:      trending{s},
		Notifications: notifications{s},
		Clicks:        clicks{s},
	}
}

// PutProfile inserts or replaces a profile. Profiles are created by the
// identity service, so there is no repository method for it.
func (s *Store) PutProfile(p *models.CreatorProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.GuideTier == "" {
		p.GuideTier = "standard"
	}
	s.profiles[p.ID] = *p
}

// PutCollection inserts or replaces a collection and its items.
func (s *Store) PutCollection(c *models.Collection, items ...*models.CollectionItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.collections[c.ID] = *c
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.CollectionID = c.ID
		s.collItems = append(s.collItems, *it)
	}
}

// Notifications returns every stored notification.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

// Clicks returns every stored affiliate click.
func (s *Store) Clicks() []models.AffiliateClick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AffiliateClick(nil), s.clicks...)
}

// GenerationLogs returns every stored guide generation log.
func (s *Store) GenerationLogs() []models.GuideGenerationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.GuideGenerationLog(nil), s.genLogs...)
}

func ptr[T any](v T) *T { return &v }

// profiles

type profiles struct{ s *Store }

func (r profiles) find(match func(*models.CreatorProfile) bool) *models.CreatorProfile {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if match(&p) {
			return ptr(p)
		}
	}
	return nil
}

func (r profiles) GetByID(_ context.Context, id uuid.UUID) (*models.CreatorProfile, error) {
	return r.find(func(p *models.CreatorProfile) bool { return p.ID == id }), nil
}

func (r profiles) GetByUsername(_ context.Context, username string) (*models.CreatorProfile, error) {
	return r.find(func(p *models.CreatorProfile) bool { return strings.EqualFold(p.Username, username) }), nil
}

func (r profiles) GetByTelegramLinkCode(_ context.Context, code string) (*models.CreatorProfile, error) {
	return r.find(func(p *models.CreatorProfile) bool {
		return p.TelegramLinkCode != nil && *p.TelegramLinkCode == code
	}), nil
}

func (r profiles) GetByTelegramChatID(_ context.Context, chatID int64) (*models.CreatorProfile, error) {
	return r.find(func(p *models.CreatorProfile) bool {
		return p.TelegramChatID != nil && *p.TelegramChatID == chatID
	}), nil
}

func (r profiles) update(id uuid.UUID, fn func(*models.CreatorProfile)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&p)
	p.UpdatedAt = time.Now()
	r.s.profiles[id] = p
	return nil
}

func (r profiles) SetTelegramLinkCode(_ context.Context, id uuid.UUID, code string) error {
	return r.update(id, func(p *models.CreatorProfile) { p.TelegramLinkCode = &code })
}

func (r profiles) SetTelegramChat(_ context.Context, id uuid.UUID, chatID *int64) error {
	return r.update(id, func(p *models.CreatorProfile) {
		p.TelegramChatID = chatID
		p.TelegramLinkCode = nil
	})
}

func (r profiles) AddEarnings(_ context.Context, id uuid.UUID, amount float64) error {
	return r.update(id, func(p *models.CreatorProfile) {
		p.PendingEarnings += amount
		p.TotalEarnings += amount
	})
}

// follows

type follows struct{ s *Store }

func (r follows) Follow(_ context.Context, followerID, followingID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{followerID, followingID}
	if _, ok := r.s.follows[key]; ok {
		return nil
	}
	r.s.follows[key] = time.Now()
	r.bump(followerID, followingID, 1)
	return nil
}

func (r follows) Unfollow(_ context.Context, followerID, followingID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{followerID, followingID}
	if _, ok := r.s.follows[key]; !ok {
		return nil
	}
	delete(r.s.follows, key)
	r.bump(followerID, followingID, -1)
	return nil
}

func (r follows) bump(followerID, followingID uuid.UUID, delta int) {
	if p, ok := r.s.profiles[followerID]; ok {
		p.FollowingCount += delta
		r.s.profiles[followerID] = p
	}
	if p, ok := r.s.profiles[followingID]; ok {
		p.FollowerCount += delta
		r.s.profiles[followingID] = p
	}
}

func (r follows) IsFollowing(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.follows[[2]uuid.UUID{followerID, followingID}]
	return ok, nil
}

func (r follows) CountFollowers(_ context.Context, id uuid.UUID) (int, error) {
	return r.count(func(k [2]uuid.UUID) bool { return k[1] == id }), nil
}

func (r follows) CountFollowing(_ context.Context, id uuid.UUID) (int, error) {
	return r.count(func(k [2]uuid.UUID) bool { return k[0] == id }), nil
}

func (r follows) count(match func([2]uuid.UUID) bool) int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for k := range r.s.follows {
		if match(k) {
			n++
		}
	}
	return n
}

// kids

type kids struct{ s *Store }

func (r kids) Create(_ context.Context, kid *models.Kid) (*models.Kid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kid.ID = uuid.New()
	kid.CreatedAt = time.Now()
	kid.UpdatedAt = kid.CreatedAt
	stored := *kid
	stored.Sizes, stored.Preferences = nil, nil
	r.s.kids[kid.ID] = stored
	return kid, nil
}

func (r kids) GetByID(_ context.Context, id uuid.UUID) (*models.Kid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.kids[id]
	if !ok {
		return nil, nil
	}
	if sz, ok := r.s.sizes[id]; ok {
		k.Sizes = ptr(sz)
	}
	if pr, ok := r.s.prefs[id]; ok {
		k.Preferences = ptr(pr)
	}
	return &k, nil
}

func (r kids) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Kid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Kid
	for _, k := range r.s.kids {
		if k.OwnerID == ownerID {
			out = append(out, ptr(k))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r kids) Update(_ context.Context, kid *models.Kid) (*models.Kid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.kids[kid.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	kid.UpdatedAt = time.Now()
	stored := *kid
	stored.Sizes, stored.Preferences = nil, nil
	r.s.kids[kid.ID] = stored
	return kid, nil
}

// Delete removes the kid and cascades to its wishlist items.
func (r kids) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.kids[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.kids, id)
	delete(r.s.sizes, id)
	delete(r.s.prefs, id)
	for wid, w := range r.s.wishlist {
		if w.KidID == id {
			delete(r.s.wishlist, wid)
		}
	}
	return nil
}

func (r kids) UpsertSizes(_ context.Context, sizes *models.KidSizes) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sizes.UpdatedAt = time.Now()
	r.s.sizes[sizes.KidID] = *sizes
	return nil
}

func (r kids) UpsertPreferences(_ context.Context, prefs *models.KidPreferences) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prefs.UpdatedAt = time.Now()
	r.s.prefs[prefs.KidID] = *prefs
	return nil
}

// wishlist

type wishlist struct{ s *Store }

func (r wishlist) Create(_ context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	if item.Status == "" {
		item.Status = models.ItemStatusAvailable
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	r.s.wishlist[item.ID] = *item
	return item, nil
}

func (r wishlist) GetByID(_ context.Context, id uuid.UUID) (*models.WishlistItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wishlist[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r wishlist) ListByKid(_ context.Context, kidID uuid.UUID) ([]*models.WishlistItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.WishlistItem
	for _, w := range r.s.wishlist {
		if w.KidID == kidID {
			out = append(out, ptr(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r wishlist) Update(_ context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.wishlist[item.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	item.Status, item.QuantityClaimed = cur.Status, cur.QuantityClaimed
	item.UpdatedAt = time.Now()
	r.s.wishlist[item.ID] = *item
	return item, nil
}

func (r wishlist) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wishlist[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.wishlist, id)
	return nil
}
