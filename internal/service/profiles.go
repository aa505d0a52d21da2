package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/notify"
)

// Profile returns the caller's own profile, or nil when the identity exists
// but no profile row has been created yet.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*models.CreatorProfile, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	p, err := repos.Profiles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
	}
	return p, nil
}

// visibleProfile looks username up and hides private profiles from everyone
// but their owner.
func (s *Service) visibleProfile(ctx context.Context, username string, viewer *uuid.UUID) (*models.CreatorProfile, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	p, err := repos.Profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %q: %w", username, err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if !p.IsPublic && (viewer == nil || *viewer != p.ID) {
		return nil, ErrNotFound
	}
	return p, nil
}

// GetPublicProfile returns the profile page for username. Follow counts and
// collections degrade to zero and empty when they cannot be loaded.
func (s *Service) GetPublicProfile(ctx context.Context, username string, viewer *uuid.UUID) (*models.PublicProfile, error) {
	p, err := s.visibleProfile(ctx, username, viewer)
	if err != nil {
		return nil, err
	}
	repos := s.repos
	log := s.logger.WithField("username", p.Username)

	if n, err := repos.Follows.CountFollowers(ctx, p.ID); err != nil {
		log.WithError(err).Warn("Failed to count followers")
		p.FollowerCount = 0
	} else {
		p.FollowerCount = n
	}
	if n, err := repos.Follows.CountFollowing(ctx, p.ID); err != nil {
		log.WithError(err).Warn("Failed to count following")
		p.FollowingCount = 0
	} else {
		p.FollowingCount = n
	}

	collections, err := repos.Collections.ListPublicByOwner(ctx, p.ID)
	if err != nil {
		log.WithError(err).Warn("Failed to list collections")
	}
	if collections == nil {
		collections = []*models.Collection{}
	}

	out := &models.PublicProfile{
		Profile:     p,
		Collections: collections,
		IsOwner:     viewer != nil && *viewer == p.ID,
	}
	if viewer != nil && !out.IsOwner {
		following, err := repos.Follows.IsFollowing(ctx, *viewer, p.ID)
		if err != nil {
			log.WithError(err).Warn("Failed to check follow state")
		}
		out.IsFollowing = following
	}
	return out, nil
}

// Follow makes viewer follow username.
func (s *Service) Follow(ctx context.Context, viewer uuid.UUID, username string) error {
	target, err := s.visibleProfile(ctx, username, &viewer)
	if err != nil {
		return err
	}
	if target.ID == viewer {
		return invalid("you cannot follow yourself")
	}

	already, err := s.repos.Follows.IsFollowing(ctx, viewer, target.ID)
	if err != nil {
		return fmt.Errorf("failed to check follow state: %w", err)
	}
	if err := s.repos.Follows.Follow(ctx, viewer, target.ID); err != nil {
		return fmt.Errorf("failed to follow %q: %w", username, err)
	}
	if already {
		return nil
	}

	follower, err := s.repos.Profiles.GetByID(ctx, viewer)
	if err != nil || follower == nil {
		return nil
	}
	if err := s.notifier.NewFollower(ctx, notify.FollowEvent{Follower: follower, Followed: target}); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"follower": follower.Username,
			"followed": target.Username,
		}).Warn("Failed to deliver follow notification")
	}
	return nil
}

// Unfollow removes the follow edge from viewer to username, if any.
func (s *Service) Unfollow(ctx context.Context, viewer uuid.UUID, username string) error {
	target, err := s.visibleProfile(ctx, username, &viewer)
	if err != nil {
		return err
	}
	if err := s.repos.Follows.Unfollow(ctx, viewer, target.ID); err != nil {
		return fmt.Errorf("failed to unfollow %q: %w", username, err)
	}
	return nil
}

// GetCollection returns a collection with its items and counts the view.
// Private collections are only visible to their owner.
func (s *Service) GetCollection(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Collection, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	c, err := repos.Collections.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %s: %w", id, err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	isOwner := viewer != nil && *viewer == c.OwnerID
	if !c.IsPublic && !isOwner {
		return nil, ErrNotFound
	}

	items, err := repos.Collections.Items(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection items: %w", err)
	}
	if items == nil {
		items = []*models.CollectionItem{}
	}
	c.Items = items

	if !isOwner {
		if err := repos.Collections.IncrementViews(ctx, id); err != nil {
			s.logger.WithError(err).WithField("collection_id", id).Warn("Failed to count collection view")
		} else {
			c.ViewCount++
		}
	}
	return c, nil
}
