package notify

import (
	"context"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

// InApp stores notifications for the web app's bell menu.
type InApp struct {
	repo    repository.NotificationRepository
	siteURL string
}

func NewInApp(repo repository.NotificationRepository, siteURL string) *InApp {
	return &InApp{repo: repo, siteURL: siteURL}
}

func (n *InApp) GiftClaimed(ctx context.Context, ev ClaimEvent) error {
	return n.store(ctx, ev.Owner, ClaimMessage(ev, n.siteURL))
}

func (n *InApp) NewFollower(ctx context.Context, ev FollowEvent) error {
	return n.store(ctx, ev.Followed, FollowMessage(ev, n.siteURL))
}

func (n *InApp) store(ctx context.Context, to *models.CreatorProfile, msg Message) error {
	link := msg.Link
	_, err := n.repo.Create(ctx, &models.Notification{
		UserID: to.ID,
		Type:   msg.Type,
		Title:  msg.Title,
		Body:   msg.Body,
		Link:   &link,
	})
	return err
}
