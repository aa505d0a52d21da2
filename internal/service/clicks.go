package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/scraper"
)

// ClickInput is an outbound click reported by the front end.
type ClickInput struct {
	URL          string     `json:"url"`
	Source       string     `json:"source"`
	ProductID    *uuid.UUID `json:"product_id"`
	CollectionID *uuid.UUID `json:"collection_id"`
	GuideID      *uuid.UUID `json:"guide_id"`
	CreatorID    *uuid.UUID `json:"creator_id"`

	UserID    *uuid.UUID `json:"-"`
	Referrer  *string    `json:"-"`
	UserAgent *string    `json:"-"`
}

// TrackClick counts an affiliate click and records it when a store is
// available. Storage failures are only logged.
func (s *Service) TrackClick(ctx context.Context, in ClickInput) error {
	in.URL = strings.TrimSpace(in.URL)
	if in.URL == "" {
		return invalid("url is required")
	}
	if in.Source == "" {
		in.Source = "unknown"
	}
	retailer := scraper.DetectRetailer(in.URL)
	s.metrics.CountClick(string(retailer), in.Source)

	if s.repos == nil {
		return nil
	}
	err := s.repos.Clicks.Create(ctx, &models.AffiliateClick{
		URL:          in.URL,
		Retailer:     string(retailer),
		Source:       in.Source,
		ProductID:    in.ProductID,
		CollectionID: in.CollectionID,
		GuideID:      in.GuideID,
		CreatorID:    in.CreatorID,
		UserID:       in.UserID,
		Referrer:     in.Referrer,
		UserAgent:    in.UserAgent,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"retailer": retailer,
			"source":   in.Source,
		}).Warn("Failed to record affiliate click")
	}
	return nil
}
