// Package notify tells registry owners and creators about activity on their
// pages. Every channel is best effort.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/models"
)

// ClaimEvent is a guest claim on one of Owner's registry items.
type ClaimEvent struct {
	Owner    *models.CreatorProfile
	Registry *models.Registry
	Item     *models.WishlistItem
	Claim    *models.GiftClaim
}

// FollowEvent is Follower starting to follow Followed.
type FollowEvent struct {
	Follower *models.CreatorProfile
	Followed *models.CreatorProfile
}

// Notifier delivers activity events over one channel.
type Notifier interface {
	GiftClaimed(ctx context.Context, ev ClaimEvent) error
	NewFollower(ctx context.Context, ev FollowEvent) error
}

// Message is the channel-neutral rendering of an event.
type Message struct {
	Type  models.NotificationType
	Title string
	Body  string
	Link  string
}

// ClaimMessage renders ev for siteURL.
func ClaimMessage(ev ClaimEvent, siteURL string) Message {
	verb := "reserved"
	if ev.Claim.ClaimType == models.ClaimPurchase {
		verb = "purchased"
	}
	item := "an item"
	if ev.Item != nil && ev.Item.Title != nil && *ev.Item.Title != "" {
		item = fmt.Sprintf("%q", *ev.Item.Title)
	}

	body := fmt.Sprintf("%s %s %s from %s.", ev.Claim.DisplayName(), verb, item, ev.Registry.Title)
	if ev.Claim.Message != nil && *ev.Claim.Message != "" {
		body += fmt.Sprintf(" They said: %q", *ev.Claim.Message)
	}

	return Message{
		Type:  models.NotificationGiftClaimed,
		Title: fmt.Sprintf("A gift was %s!", verb),
		Body:  body,
		Link:  siteURL + "/registry/" + ev.Registry.Slug,
	}
}

// FollowMessage renders ev for siteURL.
func FollowMessage(ev FollowEvent, siteURL string) Message {
	return Message{
		Type:  models.NotificationNewFollower,
		Title: "You have a new follower",
		Body:  fmt.Sprintf("%s started following you.", ev.Follower.Name()),
		Link:  siteURL + "/profile/" + ev.Follower.Username,
	}
}

// Multi fans an event out to every notifier, logging each failure.
type Multi struct {
	notifiers []Notifier
	logger    *logrus.Logger
}

// NewMulti creates a fan-out over notifiers. Nil entries are skipped.
func NewMulti(logger *logrus.Logger, notifiers ...Notifier) *Multi {
	m := &Multi{logger: logger}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

func (m *Multi) GiftClaimed(ctx context.Context, ev ClaimEvent) error {
	return m.each(func(n Notifier) error { return n.GiftClaimed(ctx, ev) })
}

func (m *Multi) NewFollower(ctx context.Context, ev FollowEvent) error {
	return m.each(func(n Notifier) error { return n.NewFollower(ctx, ev) })
}

func (m *Multi) each(fn func(Notifier) error) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := fn(n); err != nil {
			m.logger.WithError(err).WithField("notifier", fmt.Sprintf("%T", n)).Warn("Notification failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
