package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

// KidInput is the editable part of a kid profile. Nil fields are left alone
// on update.
type KidInput struct {
	Name        *string                `json:"name"`
	Birthdate   *string                `json:"birthdate"`
	AvatarURL   *string                `json:"avatar_url"`
	Sizes       *models.KidSizes       `json:"sizes"`
	Preferences *models.KidPreferences `json:"preferences"`
}

func parseBirthdate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, invalid("birthdate must be YYYY-MM-DD")
	}
	return &t, nil
}

// ownedKid loads kidID and hides it from anyone but owner.
func (s *Service) ownedKid(ctx context.Context, owner, kidID uuid.UUID) (*models.Kid, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	kid, err := repos.Kids.GetByID(ctx, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to get kid %s: %w", kidID, err)
	}
	if kid == nil || kid.OwnerID != owner {
		return nil, ErrNotFound
	}
	return kid, nil
}

// ListKids returns owner's kids, oldest profile first.
func (s *Service) ListKids(ctx context.Context, owner uuid.UUID) ([]*models.Kid, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	kids, err := repos.Kids.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list kids: %w", err)
	}
	if kids == nil {
		kids = []*models.Kid{}
	}
	return kids, nil
}

// CreateKid adds a kid profile for owner.
func (s *Service) CreateKid(ctx context.Context, owner uuid.UUID, in KidInput) (*models.Kid, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, invalid("name is required")
	}

	kid := &models.Kid{OwnerID: owner, Name: strings.TrimSpace(*in.Name), AvatarURL: in.AvatarURL}
	if in.Birthdate != nil {
		if kid.Birthdate, err = parseBirthdate(*in.Birthdate); err != nil {
			return nil, err
		}
	}

	kid, err = repos.Kids.Create(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("failed to create kid: %w", err)
	}
	if err := s.saveKidDetails(ctx, kid, in); err != nil {
		return nil, err
	}
	return kid, nil
}

// UpdateKid applies the non-nil fields of in.
func (s *Service) UpdateKid(ctx context.Context, owner, kidID uuid.UUID, in KidInput) (*models.Kid, error) {
	kid, err := s.ownedKid(ctx, owner, kidID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		kid.Name = name
	}
	if in.Birthdate != nil {
		if kid.Birthdate, err = parseBirthdate(*in.Birthdate); err != nil {
			return nil, err
		}
	}
	if in.AvatarURL != nil {
		kid.AvatarURL = in.AvatarURL
	}

	kid, err = s.repos.Kids.Update(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("failed to update kid: %w", err)
	}
	if err := s.saveKidDetails(ctx, kid, in); err != nil {
		return nil, err
	}
	return kid, nil
}

func (s *Service) saveKidDetails(ctx context.Context, kid *models.Kid, in KidInput) error {
	if in.Sizes != nil {
		in.Sizes.KidID = kid.ID
		if err := s.repos.Kids.UpsertSizes(ctx, in.Sizes); err != nil {
			return fmt.Errorf("failed to save sizes: %w", err)
		}
		kid.Sizes = in.Sizes
	}
	if in.Preferences != nil {
		in.Preferences.KidID = kid.ID
		if err := s.repos.Kids.UpsertPreferences(ctx, in.Preferences); err != nil {
			return fmt.Errorf("failed to save preferences: %w", err)
		}
		kid.Preferences = in.Preferences
	}
	return nil
}

// DeleteKid removes the kid and, through the store, its wishlist.
func (s *Service) DeleteKid(ctx context.Context, owner, kidID uuid.UUID) error {
	if _, err := s.ownedKid(ctx, owner, kidID); err != nil {
		return err
	}
	if err := s.repos.Kids.Delete(ctx, kidID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete kid: %w", err)
	}
	return nil
}

// KidWishlist returns the kid's wishlist, newest first.
func (s *Service) KidWishlist(ctx context.Context, owner, kidID uuid.UUID) ([]*models.WishlistItem, error) {
	if _, err := s.ownedKid(ctx, owner, kidID); err != nil {
		return nil, err
	}
	items, err := s.repos.Wishlist.ListByKid(ctx, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	if items == nil {
		items = []*models.WishlistItem{}
	}
	return items, nil
}
