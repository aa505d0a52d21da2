package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

// registries

type registries struct{ s *Store }

func (r registries) Create(_ context.Context, reg *models.Registry) (*models.Registry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.registries {
		if existing.Slug == reg.Slug {
			return nil, repository.ErrConflict
		}
	}
	reg.ID = uuid.New()
	reg.CreatedAt = time.Now()
	reg.UpdatedAt = reg.CreatedAt
	r.s.registries[reg.ID] = *reg
	return reg, nil
}

func (r registries) GetBySlug(_ context.Context, slug string) (*models.Registry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, reg := range r.s.registries {
		if reg.Slug == slug {
			return ptr(reg), nil
		}
	}
	return nil, nil
}

func (r registries) GetByID(_ context.Context, id uuid.UUID) (*models.Registry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registries[id]
	if !ok {
		return nil, nil
	}
	return &reg, nil
}

func (r registries) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Registry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Registry
	for _, reg := range r.s.registries {
		if reg.OwnerID == ownerID {
			out = append(out, ptr(reg))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r registries) SlugExists(ctx context.Context, slug string) (bool, error) {
	reg, _ := r.GetBySlug(ctx, slug)
	return reg != nil, nil
}

func (r registries) AddItem(_ context.Context, item *models.RegistryItem) (*models.RegistryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ri := range r.s.registryItems {
		if ri.RegistryID == item.RegistryID && ri.WishlistItemID == item.WishlistItemID {
			return nil, repository.ErrConflict
		}
	}
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	stored := *item
	stored.Item = nil
	r.s.registryItems = append(r.s.registryItems, stored)
	return item, nil
}

func (r registries) Items(_ context.Context, registryID uuid.UUID) ([]*models.RegistryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.RegistryItem
	for _, ri := range r.s.registryItems {
		if ri.RegistryID != registryID {
			continue
		}
		w, ok := r.s.wishlist[ri.WishlistItemID]
		if !ok {
			continue
		}
		ri.Item = ptr(w)
		out = append(out, ptr(ri))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r registries) HasItem(_ context.Context, registryID, wishlistItemID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ri := range r.s.registryItems {
		if ri.RegistryID == registryID && ri.WishlistItemID == wishlistItemID {
			return true, nil
		}
	}
	return false, nil
}

// claims

type claims struct{ s *Store }

func (r claims) Claim(_ context.Context, claim *models.GiftClaim) (*models.GiftClaim, *models.WishlistItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.wishlist[claim.WishlistItemID]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	if item.Status != models.ItemStatusAvailable || item.Remaining() < claim.Quantity {
		return nil, nil, repository.ErrItemUnavailable
	}

	now := time.Now()
	claim.ID = uuid.New()
	claim.CreatedAt = now
	if claim.ClaimType == models.ClaimPurchase {
		claim.PurchasedAt = &now
	}
	r.s.claims = append(r.s.claims, *claim)

	item.QuantityClaimed += claim.Quantity
	if item.Remaining() == 0 {
		var types []models.ClaimType
		for _, c := range r.s.claims {
			if c.WishlistItemID == item.ID {
				types = append(types, c.ClaimType)
			}
		}
		item.Status = models.SettledStatus(types)
	}
	item.UpdatedAt = now
	r.s.wishlist[item.ID] = item
	return claim, &item, nil
}

func (r claims) ListByRegistry(_ context.Context, registryID uuid.UUID) ([]*models.GiftClaim, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.GiftClaim
	for _, c := range r.s.claims {
		if c.RegistryID == registryID {
			out = append(out, ptr(c))
		}
	}
	return out, nil
}

// collections

type collections struct{ s *Store }

func (r collections) GetByID(_ context.Context, id uuid.UUID) (*models.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.collections[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r collections) ListPublicByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Collection
	for _, c := range r.s.collections {
		if c.OwnerID == ownerID && c.IsPublic {
			out = append(out, ptr(c))
		}
	}
	return out, nil
}

func (r collections) Items(_ context.Context, collectionID uuid.UUID) ([]*models.CollectionItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.CollectionItem
	for _, it := range r.s.collItems {
		if it.CollectionID == collectionID {
			out = append(out, ptr(it))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r collections) IncrementViews(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.collections[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.ViewCount++
	r.s.collections[id] = c
	return nil
}

// guides

type guides struct{ s *Store }

func (r guides) Create(_ context.Context, g *models.GiftGuide) (*models.GiftGuide, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.guides {
		if existing.Slug == g.Slug {
			return nil, repository.ErrConflict
		}
	}
	g.ID = uuid.New()
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	if g.Status == "" {
		g.Status = models.GuideStatusDraft
	}
	stored := *g
	stored.Products = nil
	r.s.guides[g.ID] = stored
	return g, nil
}

func (r guides) GetBySlug(_ context.Context, slug string) (*models.GiftGuide, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.guides {
		if g.Slug == slug {
			return ptr(g), nil
		}
	}
	return nil, nil
}

func (r guides) Update(_ context.Context, g *models.GiftGuide) (*models.GiftGuide, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.guides[g.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	for id, existing := range r.s.guides {
		if id != g.ID && existing.Slug == g.Slug {
			return nil, repository.ErrConflict
		}
	}
	g.UpdatedAt = time.Now()
	stored := *g
	stored.Products = nil
	r.s.guides[g.ID] = stored
	return g, nil
}

func (r guides) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.guides[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.guides, id)
	delete(r.s.guideProducts, id)
	return nil
}

func (r guides) SlugExists(ctx context.Context, slug string) (bool, error) {
	g, _ := r.GetBySlug(ctx, slug)
	return g != nil, nil
}

func (r guides) SetProducts(_ context.Context, guideID uuid.UUID, list []*models.GuideProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.GuideProduct, 0, len(list))
	for _, gp := range list {
		v := *gp
		v.GuideID = guideID
		v.Product = nil
		out = append(out, v)
	}
	r.s.guideProducts[guideID] = out
	return nil
}

func (r guides) Products(_ context.Context, guideID uuid.UUID) ([]*models.GuideProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.GuideProduct
	for _, gp := range r.s.guideProducts[guideID] {
		if p, ok := r.s.products[gp.ProductID]; ok {
			gp.Product = ptr(p)
		}
		out = append(out, ptr(gp))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r guides) LogGeneration(_ context.Context, log *models.GuideGenerationLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = uuid.New()
	log.CreatedAt = time.Now()
	r.s.genLogs = append(r.s.genLogs, *log)
	return nil
}

// products

type products struct{ s *Store }

func (r products) Create(_ context.Context, p *models.Product) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.products[p.ID] = *p
	return p, nil
}

func (r products) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r products) List(_ context.Context, f repository.ProductFilters) ([]*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Product
	for _, p := range r.s.products {
		if !p.IsActive {
			continue
		}
		if f.Category != nil && (p.Category == nil || *p.Category != *f.Category) {
			continue
		}
		if f.Retailer != nil && p.Retailer != *f.Retailer {
			continue
		}
		if f.Age != nil && !p.FitsAge(*f.Age) {
			continue
		}
		out = append(out, ptr(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// trending

type trending struct{ s *Store }

func (r trending) List(_ context.Context, f repository.TrendingFilters) ([]*models.TrendingGift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.TrendingGift
	for _, g := range r.s.trending {
		if !g.IsActive {
			continue
		}
		if f.AgeRange != nil && g.AgeRange != *f.AgeRange {
			continue
		}
		if f.Category != nil && g.Category != *f.Category {
			continue
		}
		out = append(out, ptr(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r trending) GetByID(_ context.Context, id uuid.UUID) (*models.TrendingGift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.trending[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r trending) Create(_ context.Context, g *models.TrendingGift) (*models.TrendingGift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g.ID = uuid.New()
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	r.s.trending[g.ID] = *g
	return g, nil
}

func (r trending) Update(_ context.Context, g *models.TrendingGift) (*models.TrendingGift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.trending[g.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	g.UpdatedAt = time.Now()
	r.s.trending[g.ID] = *g
	return g, nil
}

// notifications and clicks

type notifications struct{ s *Store }

func (r notifications) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	r.s.notifications = append(r.s.notifications, *n)
	return n, nil
}

type clicks struct{ s *Store }

func (r clicks) Create(_ context.Context, c *models.AffiliateClick) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	r.s.clicks = append(r.s.clicks, *c)
	return nil
}
