package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
	"github.com/Kerhoff/giddylist/internal/scraper"
)

// ScrapeResult is scraped metadata plus the monetized link, if any.
type ScrapeResult struct {
	*scraper.ProductMetadata
	AffiliateURL *string `json:"affiliate_url"`
}

func validProductURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", invalid("url must be an http or https link")
	}
	return raw, nil
}

func (s *Service) scrape(ctx context.Context, rawURL string) *ScrapeResult {
	meta := s.scraper.ScrapeProduct(ctx, rawURL)
	return &ScrapeResult{ProductMetadata: meta, AffiliateURL: s.affiliate.ForMetadata(meta)}
}

// ScrapeURL extracts product metadata for rawURL. Fetch failures come back
// as a result with only the retailer fields set.
func (s *Service) ScrapeURL(ctx context.Context, rawURL string) (*ScrapeResult, error) {
	rawURL, err := validProductURL(rawURL)
	if err != nil {
		return nil, err
	}
	return s.scrape(ctx, rawURL), nil
}

// ScrapeBatch scrapes up to scraper.MaxBatchURLs URLs one after another.
// Blank entries are skipped; any other entry must be an http(s) link.
func (s *Service) ScrapeBatch(ctx context.Context, urls []string) ([]*ScrapeResult, error) {
	var cleaned []string
	for _, raw := range urls {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		u, err := validProductURL(raw)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, u)
	}
	if len(cleaned) == 0 {
		return nil, invalid("urls must contain at least one URL")
	}

	metas := s.scraper.ScrapeBatch(ctx, cleaned)
	out := make([]*ScrapeResult, 0, len(metas))
	for _, meta := range metas {
		out = append(out, &ScrapeResult{ProductMetadata: meta, AffiliateURL: s.affiliate.ForMetadata(meta)})
	}
	return out, nil
}

// AddItemInput creates a wishlist item from a pasted link.
type AddItemInput struct {
	KidID    uuid.UUID `json:"kid_id"`
	URL      string    `json:"url"`
	Notes    *string   `json:"notes"`
	Quantity int       `json:"quantity"`
}

func applyMetadata(item *models.WishlistItem, res *ScrapeResult) {
	item.Title = res.Title
	item.Description = res.Description
	item.ImageURL = res.ImageURL
	item.Price = res.Price
	item.Currency = res.Currency
	item.Retailer = string(res.Retailer)
	item.PlatformID = res.ASIN
	item.AffiliateURL = res.AffiliateURL
}

// AddWishlistItem scrapes in.URL and stores the result on the kid's list.
func (s *Service) AddWishlistItem(ctx context.Context, owner uuid.UUID, in AddItemInput) (*models.WishlistItem, error) {
	rawURL, err := validProductURL(in.URL)
	if err != nil {
		return nil, err
	}
	if in.Quantity < 0 {
		return nil, invalid("quantity must be at least 1")
	}
	if _, err := s.ownedKid(ctx, owner, in.KidID); err != nil {
		return nil, err
	}

	item := &models.WishlistItem{
		KidID:    in.KidID,
		OwnerID:  owner,
		URL:      rawURL,
		Notes:    in.Notes,
		Status:   models.ItemStatusAvailable,
		Quantity: max(in.Quantity, 1),
	}
	applyMetadata(item, s.scrape(ctx, rawURL))

	item, err = s.repos.Wishlist.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"item_id":  item.ID,
		"retailer": item.Retailer,
		"priced":   item.Price != nil,
	}).Info("Added wishlist item")
	return item, nil
}

func (s *Service) ownedItem(ctx context.Context, owner, id uuid.UUID) (*models.WishlistItem, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	item, err := repos.Wishlist.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist item %s: %w", id, err)
	}
	if item == nil || item.OwnerID != owner {
		return nil, ErrNotFound
	}
	return item, nil
}

// RefreshWishlistItem re-scrapes the item's URL. Fields the new scrape could
// not read keep their previous values.
func (s *Service) RefreshWishlistItem(ctx context.Context, owner, id uuid.UUID) (*models.WishlistItem, error) {
	item, err := s.ownedItem(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	res := s.scrape(ctx, item.URL)
	prev := *item
	applyMetadata(item, res)
	if item.Title == nil {
		item.Title = prev.Title
	}
	if item.Description == nil {
		item.Description = prev.Description
	}
	if item.ImageURL == nil {
		item.ImageURL = prev.ImageURL
	}
	if item.Price == nil {
		item.Price, item.Currency = prev.Price, prev.Currency
	}

	item, err = s.repos.Wishlist.Update(ctx, item)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to refresh wishlist item: %w", err)
	}
	return item, nil
}

// DeleteWishlistItem removes one of owner's items.
func (s *Service) DeleteWishlistItem(ctx context.Context, owner, id uuid.UUID) error {
	if _, err := s.ownedItem(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repos.Wishlist.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}
