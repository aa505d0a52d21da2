package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/earnings"
	"github.com/Kerhoff/giddylist/internal/repository"
)

// Commission is one credited commission and how it was split.
type Commission struct {
	Username string         `json:"username"`
	Tier     earnings.Tier  `json:"tier"`
	Amount   float64        `json:"amount"`
	Split    earnings.Split `json:"split"`
}

// RecordCommission splits commission by the guide's tier and credits the
// guide's share to their pending and total earnings.
func (s *Service) RecordCommission(ctx context.Context, username string, commission float64) (*Commission, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	if commission <= 0 {
		return nil, invalid("commission must be greater than zero")
	}
	p, err := repos.Profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %q: %w", username, err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if !p.GuideEnabled {
		return nil, invalid(fmt.Sprintf("@%s is not a guide", p.Username))
	}

	tier, ok := earnings.ParseTier(p.GuideTier)
	if !ok {
		tier = earnings.TierStandard
	}
	split := earnings.CalculateGuideSplit(tier, commission)

	if err := repos.Profiles.AddEarnings(ctx, p.ID, split.GuideShare); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to credit earnings: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"username":    p.Username,
		"tier":        tier,
		"guide_share": earnings.FormatCurrency(split.GuideShare),
	}).Info("Recorded commission")

	return &Commission{Username: p.Username, Tier: tier, Amount: commission, Split: split}, nil
}
