package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/llm"
	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

const (
	defaultGuideProducts = 8
	maxGuideProducts     = 20
)

// GetGuide returns a guide with its products. Only admins see guides that
// are not published.
func (s *Service) GetGuide(ctx context.Context, slug string, isAdmin bool) (*models.GiftGuide, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	g, err := repos.Guides.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get guide %q: %w", slug, err)
	}
	if g == nil || (!isAdmin && g.Status != models.GuideStatusPublished) {
		return nil, ErrNotFound
	}

	products, err := repos.Guides.Products(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guide products: %w", err)
	}
	if products == nil {
		products = []*models.GuideProduct{}
	}
	g.Products = products
	return g, nil
}

// GuideUpdate is a partial guide edit. Nil fields are left alone.
type GuideUpdate struct {
	Title           *string             `json:"title"`
	Description     *string             `json:"description"`
	Content         *string             `json:"content"`
	AgeRange        *string             `json:"age_range"`
	Category        *string             `json:"category"`
	Keywords        []string            `json:"keywords"`
	MetaTitle       *string             `json:"meta_title"`
	MetaDescription *string             `json:"meta_description"`
	Status          *models.GuideStatus `json:"status"`
	ProductIDs      []uuid.UUID         `json:"product_ids"`
}

func (s *Service) guideBySlug(ctx context.Context, slug string) (*models.GiftGuide, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	g, err := repos.Guides.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get guide %q: %w", slug, err)
	}
	if g == nil {
		return nil, ErrNotFound
	}
	return g, nil
}

// UpdateGuide applies in to the guide. Publishing stamps PublishedAt the
// first time; ProductIDs, when present, replaces the product list.
func (s *Service) UpdateGuide(ctx context.Context, slug string, in GuideUpdate) (*models.GiftGuide, error) {
	g, err := s.guideBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalid("title cannot be empty")
		}
		g.Title = title
	}
	if in.Description != nil {
		g.Description = in.Description
	}
	if in.Content != nil {
		g.Content = in.Content
	}
	if in.AgeRange != nil {
		g.AgeRange = in.AgeRange
	}
	if in.Category != nil {
		g.Category = in.Category
	}
	if in.Keywords != nil {
		g.Keywords = in.Keywords
	}
	if in.MetaTitle != nil {
		g.MetaTitle = in.MetaTitle
	}
	if in.MetaDescription != nil {
		g.MetaDescription = in.MetaDescription
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, invalid("status must be draft, published or archived")
		}
		g.Status = *in.Status
		if g.Status == models.GuideStatusPublished && g.PublishedAt == nil {
			now := s.now()
			g.PublishedAt = &now
		}
	}

	g, err = s.repos.Guides.Update(ctx, g)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update guide: %w", err)
	}

	if in.ProductIDs != nil {
		list := make([]*models.GuideProduct, 0, len(in.ProductIDs))
		for i, id := range in.ProductIDs {
			list = append(list, &models.GuideProduct{GuideID: g.ID, ProductID: id, Position: i})
		}
		if err := s.repos.Guides.SetProducts(ctx, g.ID, list); err != nil {
			return nil, fmt.Errorf("failed to set guide products: %w", err)
		}
	}

	if g.Products, err = s.repos.Guides.Products(ctx, g.ID); err != nil {
		return nil, fmt.Errorf("failed to get guide products: %w", err)
	}
	return g, nil
}

// DeleteGuide removes the guide, or only archives it when archive is set.
func (s *Service) DeleteGuide(ctx context.Context, slug string, archive bool) error {
	g, err := s.guideBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if archive {
		g.Status = models.GuideStatusArchived
		if _, err := s.repos.Guides.Update(ctx, g); err != nil {
			return fmt.Errorf("failed to archive guide: %w", err)
		}
		return nil
	}
	if err := s.repos.Guides.Delete(ctx, g.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete guide: %w", err)
	}
	return nil
}

// GenerateInput asks the LLM for a new draft guide.
type GenerateInput struct {
	Topic       string   `json:"topic"`
	AgeRange    string   `json:"age_range"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords"`
	MaxProducts int      `json:"max_products"`
}

// lowerAge reads the first number of an age range such as "3-5" or "8+".
func lowerAge(ageRange string) (int, bool) {
	digits := strings.TrimSpace(ageRange)
	if i := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		digits = digits[:i]
	}
	n, err := strconv.Atoi(digits)
	return n, err == nil
}

// GenerateGuide drafts a guide with the LLM around matching catalogue
// products and stores it as a draft. Every attempt is logged.
func (s *Service) GenerateGuide(ctx context.Context, requestedBy uuid.UUID, in GenerateInput) (*models.GiftGuide, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	if s.writer == nil || !s.writer.Enabled() {
		return nil, ErrNotConfigured
	}
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return nil, invalid("topic is required")
	}
	limit := in.MaxProducts
	if limit <= 0 {
		limit = defaultGuideProducts
	}
	limit = min(limit, maxGuideProducts)

	filters := repository.ProductFilters{Limit: limit}
	if in.Category != "" {
		filters.Category = &in.Category
	}
	if age, ok := lowerAge(in.AgeRange); ok {
		filters.Age = &age
	}
	products, err := repos.Products.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to select guide products: %w", err)
	}

	req := llm.GuideRequest{Topic: in.Topic, AgeRange: in.AgeRange, Category: in.Category, Keywords: in.Keywords}
	for _, p := range products {
		req.ProductNames = append(req.ProductNames, p.Title)
	}

	start := s.now()
	draft, genErr := s.writer.GenerateGuide(ctx, req)
	entry := &models.GuideGenerationLog{
		RequestedBy: requestedBy,
		Model:       s.writer.Model(),
		Prompt:      llm.GuidePrompt(req),
		Success:     genErr == nil,
		DurationMS:  time.Since(start).Milliseconds(),
	}
	if raw, err := json.Marshal(in); err == nil {
		entry.Request = raw
	}
	s.metrics.CountGeneration(genErr == nil)
	log := s.logger.WithFields(logrus.Fields{"topic": in.Topic, "model": entry.Model})

	if genErr != nil {
		msg := genErr.Error()
		entry.Error = &msg
		s.logGeneration(ctx, entry)
		log.WithError(genErr).Error("Guide generation failed")
		return nil, fmt.Errorf("failed to generate guide: %w", genErr)
	}

	guide, err := s.saveDraft(ctx, repos, draft, in, products)
	if err != nil {
		msg := err.Error()
		entry.Success, entry.Error = false, &msg
		s.logGeneration(ctx, entry)
		return nil, err
	}
	entry.GuideID = &guide.ID
	s.logGeneration(ctx, entry)

	log.WithFields(logrus.Fields{"slug": guide.Slug, "products": len(products)}).Info("Generated guide draft")
	return guide, nil
}

// saveDraft stores the draft and its product list. A draft whose products
// cannot be linked is removed again.
func (s *Service) saveDraft(ctx context.Context, repos *repository.Repositories, draft *llm.GuideDraft, in GenerateInput, products []*models.Product) (*models.GiftGuide, error) {
	g := &models.GiftGuide{
		Title:           draft.Title,
		Description:     nonEmpty(draft.Description),
		Content:         nonEmpty(draft.Content),
		AgeRange:        nonEmpty(in.AgeRange),
		Category:        nonEmpty(in.Category),
		Keywords:        draft.Keywords,
		MetaTitle:       nonEmpty(draft.MetaTitle),
		MetaDescription: nonEmpty(draft.MetaDescription),
		Status:          models.GuideStatusDraft,
	}

	var created *models.GiftGuide
	// Retry once when a concurrent create takes the slug first.
	for attempt := 0; attempt < 2 && created == nil; attempt++ {
		slug, err := uniqueSlug(ctx, draft.Title, "gift-guide", repos.Guides.SlugExists)
		if err != nil {
			return nil, err
		}
		g.Slug = slug
		created, err = repos.Guides.Create(ctx, g)
		if err != nil && !errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("failed to save guide: %w", err)
		}
	}
	if created == nil {
		return nil, fmt.Errorf("failed to save guide: %w", repository.ErrConflict)
	}

	list := make([]*models.GuideProduct, 0, len(products))
	for i, p := range products {
		list = append(list, &models.GuideProduct{GuideID: created.ID, ProductID: p.ID, Position: i, Product: p})
	}
	if err := repos.Guides.SetProducts(ctx, created.ID, list); err != nil {
		if delErr := repos.Guides.Delete(ctx, created.ID); delErr != nil {
			s.logger.WithError(delErr).WithField("guide_id", created.ID).Error("Failed to remove guide draft without products")
		}
		return nil, fmt.Errorf("failed to link guide products: %w", err)
	}
	created.Products = list
	return created, nil
}

func (s *Service) logGeneration(ctx context.Context, entry *models.GuideGenerationLog) {
	if err := s.repos.Guides.LogGeneration(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to write guide generation log")
	}
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
