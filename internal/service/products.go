package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

const (
	defaultProductLimit = 50
	maxProductLimit     = 200
)

// ListProducts returns active catalogue products matching filters.
func (s *Service) ListProducts(ctx context.Context, filters repository.ProductFilters) ([]*models.Product, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	if filters.Limit <= 0 {
		filters.Limit = defaultProductLimit
	}
	filters.Limit = min(filters.Limit, maxProductLimit)
	filters.Offset = max(filters.Offset, 0)

	products, err := repos.Products.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return products, nil
}

// ProductInput creates a catalogue product from a retailer link.
type ProductInput struct {
	URL      string  `json:"url"`
	Title    *string `json:"title"`
	Category *string `json:"category"`
	AgeMin   *int    `json:"age_min"`
	AgeMax   *int    `json:"age_max"`
}

// CreateProductFromURL scrapes in.URL and stores the product. A Title in the
// input overrides the scraped one; a product with no title at all is
// rejected.
func (s *Service) CreateProductFromURL(ctx context.Context, in ProductInput) (*models.Product, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	rawURL, err := validProductURL(in.URL)
	if err != nil {
		return nil, err
	}
	if in.AgeMin != nil && in.AgeMax != nil && *in.AgeMin > *in.AgeMax {
		return nil, invalid("age_min cannot be greater than age_max")
	}

	res := s.scrape(ctx, rawURL)
	title := ""
	if res.Title != nil {
		title = *res.Title
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		title = strings.TrimSpace(*in.Title)
	}
	if title == "" {
		return nil, invalid("could not read a product title from that page, please provide one")
	}

	p, err := repos.Products.Create(ctx, &models.Product{
		Title:        title,
		Description:  res.Description,
		ImageURL:     res.ImageURL,
		Price:        res.Price,
		Currency:     res.Currency,
		Retailer:     string(res.Retailer),
		ASIN:         res.ASIN,
		URL:          rawURL,
		AffiliateURL: res.AffiliateURL,
		Category:     in.Category,
		AgeMin:       in.AgeMin,
		AgeMax:       in.AgeMax,
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}
