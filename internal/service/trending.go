package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
	"github.com/Kerhoff/giddylist/internal/scraper"
)

const (
	defaultTrendingLimit = 12
	maxTrendingLimit     = 50
)

type fallbackGift struct {
	title, description string
	asin               string
	price              float64
	ageRange, category string
}

// fallbackGifts is served whenever the trending table cannot be read or is
// empty.
var fallbackGifts = []fallbackGift{
	{"Fisher-Price Laugh & Learn Smart Stages Puppy", "A talking plush puppy that teaches first words and songs.", "B01N0XAGZY", 24.99, "0-2", "toys"},
	{"Melissa & Doug Wooden Shape Sorting Cube", "Twelve chunky shapes and a sturdy wooden sorter.", "B000068DZ3", 19.99, "0-2", "toys"},
	{"Sandra Boynton Board Book Set", "Four silly read-aloud board books.", "B07DKV8P3N", 21.49, "0-2", "books"},
	{"Magna-Tiles Classic 32-Piece Set", "Magnetic building tiles for towers, houses and rockets.", "B000CBSNKQ", 49.99, "3-5", "toys"},
	{"Melissa & Doug Wooden Play Food Set", "A pretend-play kitchen starter kit.", "B0014WU0JG", 29.99, "3-5", "toys"},
	{"Balance Bike for Toddlers", "A pedal-free bike that teaches balance first.", "B00NPGNP0K", 69.99, "3-5", "outdoor"},
	{"LEGO Classic Medium Creative Brick Box", "484 bricks in 35 colours with idea sheets.", "B00NHQFA1I", 34.99, "6-8", "toys"},
	{"National Geographic Rock Tumbler Kit", "Polish real gemstones and learn some geology.", "B07FY8P7BD", 79.99, "6-8", "stem"},
	{"Dog Man Series Box Set", "The first six Dog Man graphic novels.", "B08HGPYKTB", 44.99, "6-8", "books"},
	{"Snap Circuits Jr. Electronics Kit", "Over 100 projects with snap-together parts.", "B00008BFZH", 39.99, "9-12", "stem"},
	{"Crayola Light-Up Tracing Pad", "Trace, sketch and colour on a glowing pad.", "B07D5DBP8H", 24.99, "9-12", "arts"},
	{"Ravensburger Gravitrax Starter Set", "Build a marble run and experiment with gravity.", "B07L9PSZVX", 64.99, "9-12", "stem"},
}

// fallbackTrending renders fallbackGifts as trending rows matching filters.
// IDs are derived from the ASIN so they stay stable between requests.
func (s *Service) fallbackTrending(filters repository.TrendingFilters) []*models.TrendingGift {
	out := []*models.TrendingGift{}
	for i, g := range fallbackGifts {
		if filters.AgeRange != nil && g.ageRange != *filters.AgeRange {
			continue
		}
		if filters.Category != nil && g.category != *filters.Category {
			continue
		}

		productURL := "https://www.amazon.com/dp/" + g.asin
		link, ok := s.affiliate.CreateAmazonAffiliateURL(productURL, g.asin)
		if !ok {
			link = productURL
		}
		description, price := g.description, g.price
		out = append(out, &models.TrendingGift{
			ID:           uuid.NewSHA1(uuid.NameSpaceURL, []byte(productURL)),
			Title:        g.title,
			Description:  &description,
			Price:        &price,
			AffiliateURL: link,
			Retailer:     string(scraper.RetailerAmazon),
			AgeRange:     g.ageRange,
			Category:     g.category,
			Rank:         i + 1,
			IsActive:     true,
		})
		if len(out) == filters.Limit {
			break
		}
	}
	return out
}

// TrendingGifts lists trending gifts for the filters. It never fails: a
// missing, broken or empty table yields the built-in list instead.
func (s *Service) TrendingGifts(ctx context.Context, filters repository.TrendingFilters) []*models.TrendingGift {
	if filters.Limit <= 0 {
		filters.Limit = defaultTrendingLimit
	}
	filters.Limit = min(filters.Limit, maxTrendingLimit)

	if s.repos == nil {
		return s.fallbackTrending(filters)
	}
	gifts, err := s.repos.Trending.List(ctx, filters)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list trending gifts, serving fallback")
		return s.fallbackTrending(filters)
	}
	if len(gifts) == 0 {
		return s.fallbackTrending(filters)
	}
	return gifts
}

// TrendingInput creates or updates a trending gift. ID is only read on
// update.
type TrendingInput struct {
	ID           uuid.UUID `json:"id"`
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	ImageURL     *string   `json:"image_url"`
	Price        *float64  `json:"price"`
	AffiliateURL *string   `json:"affiliate_url"`
	Retailer     *string   `json:"retailer"`
	AgeRange     *string   `json:"age_range"`
	Category     *string   `json:"category"`
	Rank         *int      `json:"rank"`
	IsActive     *bool     `json:"is_active"`
}

func setRequired(dst *string, src *string, field string) error {
	if src == nil {
		return nil
	}
	v := strings.TrimSpace(*src)
	if v == "" {
		return invalid(field + " cannot be empty")
	}
	*dst = v
	return nil
}

func (in TrendingInput) apply(g *models.TrendingGift) error {
	if err := setRequired(&g.Title, in.Title, "title"); err != nil {
		return err
	}
	if err := setRequired(&g.AffiliateURL, in.AffiliateURL, "affiliate_url"); err != nil {
		return err
	}
	if err := setRequired(&g.AgeRange, in.AgeRange, "age_range"); err != nil {
		return err
	}
	if err := setRequired(&g.Category, in.Category, "category"); err != nil {
		return err
	}

	if in.Description != nil {
		g.Description = in.Description
	}
	if in.ImageURL != nil {
		g.ImageURL = in.ImageURL
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return invalid("price cannot be negative")
		}
		g.Price = in.Price
	}
	if in.Retailer != nil {
		g.Retailer = *in.Retailer
	}
	if in.Rank != nil {
		g.Rank = *in.Rank
	}
	if in.IsActive != nil {
		g.IsActive = *in.IsActive
	}
	return nil
}

// CreateTrendingGift stores a new trending gift. Title, affiliate URL, age
// range and category are required.
func (s *Service) CreateTrendingGift(ctx context.Context, in TrendingInput) (*models.TrendingGift, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	g := &models.TrendingGift{IsActive: true}
	if err := in.apply(g); err != nil {
		return nil, err
	}
	if g.Title == "" || g.AffiliateURL == "" || g.AgeRange == "" || g.Category == "" {
		return nil, invalid("title, affiliate_url, age_range and category are required")
	}
	if g.Retailer == "" {
		g.Retailer = string(scraper.DetectRetailer(g.AffiliateURL))
	}

	g, err = repos.Trending.Create(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to create trending gift: %w", err)
	}
	return g, nil
}

// UpdateTrendingGift applies the non-nil fields of in to the gift in.ID.
func (s *Service) UpdateTrendingGift(ctx context.Context, in TrendingInput) (*models.TrendingGift, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	if in.ID == uuid.Nil {
		return nil, invalid("id is required")
	}
	g, err := repos.Trending.GetByID(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trending gift %s: %w", in.ID, err)
	}
	if g == nil {
		return nil, ErrNotFound
	}
	if err := in.apply(g); err != nil {
		return nil, err
	}

	g, err = repos.Trending.Update(ctx, g)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update trending gift: %w", err)
	}
	return g, nil
}
