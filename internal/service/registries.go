package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/notify"
	"github.com/Kerhoff/giddylist/internal/repository"
)

// RegistryInput creates a registry.
type RegistryInput struct {
	Title       string     `json:"title"`
	KidID       *uuid.UUID `json:"kid_id"`
	Description *string    `json:"description"`
	Occasion    *string    `json:"occasion"`
	EventDate   *string    `json:"event_date"`
	IsPublic    *bool      `json:"is_public"`
	ShowPrices  *bool      `json:"show_prices"`
	ShowClaimed *bool      `json:"show_claimed"`
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// CreateRegistry creates a registry with a slug derived from its title.
func (s *Service) CreateRegistry(ctx context.Context, owner uuid.UUID, in RegistryInput) (*models.Registry, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if in.KidID != nil {
		if _, err := s.ownedKid(ctx, owner, *in.KidID); err != nil {
			return nil, err
		}
	}

	reg := &models.Registry{
		OwnerID:     owner,
		KidID:       in.KidID,
		Title:       title,
		Description: in.Description,
		Occasion:    in.Occasion,
		IsPublic:    boolOr(in.IsPublic, true),
		ShowPrices:  boolOr(in.ShowPrices, true),
		ShowClaimed: boolOr(in.ShowClaimed, false),
	}
	if in.EventDate != nil {
		if reg.EventDate, err = parseBirthdate(*in.EventDate); err != nil {
			return nil, invalid("event_date must be YYYY-MM-DD")
		}
	}

	// A concurrent create can still take the slug between the check and the
	// insert, so retry once on conflict.
	for attempt := 0; attempt < 2; attempt++ {
		reg.Slug, err = uniqueSlug(ctx, title, "registry", repos.Registries.SlugExists)
		if err != nil {
			return nil, err
		}
		created, err := repos.Registries.Create(ctx, reg)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("failed to create registry: %w", err)
		}
	}
	return nil, invalid("could not allocate a unique link for this registry, try another title")
}

// RegistryItemInput attaches a wishlist item to a registry.
type RegistryItemInput struct {
	WishlistItemID uuid.UUID `json:"wishlist_item_id"`
	Position       *int      `json:"position"`
}

// AddRegistryItem attaches one of owner's wishlist items to one of owner's
// registries. Without a position the item goes last.
func (s *Service) AddRegistryItem(ctx context.Context, owner, registryID uuid.UUID, in RegistryItemInput) (*models.RegistryItem, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	reg, err := repos.Registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registry %s: %w", registryID, err)
	}
	if reg == nil || reg.OwnerID != owner {
		return nil, ErrNotFound
	}
	item, err := s.ownedItem(ctx, owner, in.WishlistItemID)
	if err != nil {
		return nil, err
	}

	position := 0
	if in.Position != nil {
		if *in.Position < 0 {
			return nil, invalid("position cannot be negative")
		}
		position = *in.Position
	} else {
		existing, err := repos.Registries.Items(ctx, registryID)
		if err != nil {
			return nil, fmt.Errorf("failed to list registry items: %w", err)
		}
		position = len(existing)
	}

	ri, err := repos.Registries.AddItem(ctx, &models.RegistryItem{
		RegistryID:     registryID,
		WishlistItemID: item.ID,
		Position:       position,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, invalid("item is already on this registry")
		}
		return nil, fmt.Errorf("failed to add registry item: %w", err)
	}
	ri.Item = item
	return ri, nil
}

// visibleRegistry hides private registries from everyone but the owner.
func (s *Service) visibleRegistry(ctx context.Context, slug string, viewer *uuid.UUID) (*models.Registry, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	reg, err := repos.Registries.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get registry %q: %w", slug, err)
	}
	if reg == nil {
		return nil, ErrNotFound
	}
	if !reg.IsPublic && (viewer == nil || *viewer != reg.OwnerID) {
		return nil, ErrNotFound
	}
	return reg, nil
}

// GetRegistryView returns the registry page with claim progress. Guests do
// not see prices when ShowPrices is off; the owner does not see which items
// were claimed unless ShowClaimed is on.
func (s *Service) GetRegistryView(ctx context.Context, slug string, viewer *uuid.UUID) (*models.RegistryView, error) {
	reg, err := s.visibleRegistry(ctx, slug, viewer)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Registries.Items(ctx, reg.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry items: %w", err)
	}

	owner, err := s.repos.Profiles.GetByID(ctx, reg.OwnerID)
	if err != nil {
		s.logger.WithError(err).WithField("registry", slug).Warn("Failed to load registry owner")
		owner = nil
	}

	view := models.NewRegistryView(reg, owner, items)

	isOwner := viewer != nil && *viewer == reg.OwnerID
	for _, ri := range view.Items {
		if ri.Item == nil {
			continue
		}
		if !isOwner && !reg.ShowPrices {
			ri.Item.Price = nil
		}
		if isOwner && !reg.ShowClaimed {
			ri.Item.Status = models.ItemStatusAvailable
			ri.Item.QuantityClaimed = 0
		}
	}
	if isOwner && !reg.ShowClaimed {
		view.ClaimedCount, view.ProgressPercent = 0, 0
	}
	return view, nil
}

// ClaimRequest is a guest reserving or buying a registry item.
type ClaimRequest struct {
	WishlistItemID uuid.UUID        `json:"wishlist_item_id"`
	ClaimerName    string           `json:"claimer_name"`
	ClaimerEmail   *string          `json:"claimer_email"`
	Message        *string          `json:"message"`
	IsAnonymous    bool             `json:"is_anonymous"`
	ClaimType      models.ClaimType `json:"claim_type"`
	Quantity       int              `json:"quantity"`
}

func (r *ClaimRequest) validate() error {
	r.ClaimerName = strings.TrimSpace(r.ClaimerName)
	if r.ClaimerName == "" {
		if !r.IsAnonymous {
			return invalid("claimer_name is required")
		}
		r.ClaimerName = "Anonymous"
	}
	if r.ClaimType == "" {
		r.ClaimType = models.ClaimReserve
	}
	if !r.ClaimType.Valid() {
		return invalid("claim_type must be reserve or purchase")
	}
	if r.Quantity == 0 {
		r.Quantity = 1
	}
	if r.Quantity < 1 {
		return invalid("quantity must be at least 1")
	}
	if r.WishlistItemID == uuid.Nil {
		return invalid("wishlist_item_id is required")
	}
	return nil
}

// ClaimItem records a guest claim on a registry item and notifies the owner.
func (s *Service) ClaimItem(ctx context.Context, slug string, req ClaimRequest) (*models.GiftClaim, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	// Private registries take no guest claims.
	reg, err := s.visibleRegistry(ctx, slug, nil)
	if err != nil {
		return nil, err
	}
	onRegistry, err := s.repos.Registries.HasItem(ctx, reg.ID, req.WishlistItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to check registry item: %w", err)
	}
	if !onRegistry {
		return nil, ErrNotFound
	}

	claim, item, err := s.repos.Claims.Claim(ctx, &models.GiftClaim{
		RegistryID:     reg.ID,
		WishlistItemID: req.WishlistItemID,
		ClaimerName:    req.ClaimerName,
		ClaimerEmail:   req.ClaimerEmail,
		Message:        req.Message,
		IsAnonymous:    req.IsAnonymous,
		ClaimType:      req.ClaimType,
		Quantity:       req.Quantity,
	})
	switch {
	case errors.Is(err, repository.ErrItemUnavailable):
		return nil, invalid("This item has already been claimed")
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to claim item: %w", err)
	}

	s.metrics.CountClaim(string(claim.ClaimType))
	s.logger.WithFields(logrus.Fields{
		"registry":   reg.Slug,
		"item_id":    item.ID,
		"claim_type": claim.ClaimType,
		"status":     item.Status,
	}).Info("Gift claimed")

	s.notifyClaim(ctx, reg, item, claim)
	return claim, nil
}

func (s *Service) notifyClaim(ctx context.Context, reg *models.Registry, item *models.WishlistItem, claim *models.GiftClaim) {
	log := s.logger.WithField("registry", reg.Slug)
	owner, err := s.repos.Profiles.GetByID(ctx, reg.OwnerID)
	if err != nil || owner == nil {
		if err != nil {
			log.WithError(err).Warn("Failed to load registry owner for notification")
		}
		return
	}
	ev := notify.ClaimEvent{Owner: owner, Registry: reg, Item: item, Claim: claim}
	if err := s.notifier.GiftClaimed(ctx, ev); err != nil {
		log.WithError(err).Warn("Failed to deliver claim notification")
	}
}

// RegistrySummary is one line of a creator's registry overview.
type RegistrySummary struct {
	Title           string
	Slug            string
	EventDate       *time.Time
	ClaimedCount    int
	TotalCount      int
	ProgressPercent int
}

// RegistrySummaries lists owner's registries with claim progress, hidden for
// registries that keep claims secret from their owner.
func (s *Service) RegistrySummaries(ctx context.Context, owner uuid.UUID) ([]RegistrySummary, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	regs, err := repos.Registries.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list registries: %w", err)
	}

	out := make([]RegistrySummary, 0, len(regs))
	for _, reg := range regs {
		items, err := repos.Registries.Items(ctx, reg.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list items of %q: %w", reg.Slug, err)
		}
		v := models.NewRegistryView(reg, nil, items)
		if !reg.ShowClaimed {
			v.ClaimedCount, v.ProgressPercent = 0, 0
		}
		out = append(out, RegistrySummary{
			Title:           reg.Title,
			Slug:            reg.Slug,
			EventDate:       reg.EventDate,
			ClaimedCount:    v.ClaimedCount,
			TotalCount:      v.TotalCount,
			ProgressPercent: v.ProgressPercent,
		})
	}
	return out, nil
}
