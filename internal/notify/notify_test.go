package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/pkg/logger"
)

func strPtr(s string) *string { return &s }

func claimEvent() ClaimEvent {
	chat := int64(4242)
	return ClaimEvent{
		Owner: &models.CreatorProfile{
			ID:             uuid.New(),
			Username:       "maya",
			Email:          strPtr("maya@example.com"),
			TelegramChatID: &chat,
		},
		Registry: &models.Registry{Title: "Leo turns 5", Slug: "leo-turns-5"},
		Item:     &models.WishlistItem{Title: strPtr("LEGO Fire Truck")},
		Claim:    &models.GiftClaim{ClaimerName: "Grandma", ClaimType: models.ClaimReserve},
	}
}

func TestClaimMessage(t *testing.T) {
	ev := claimEvent()
	msg := ClaimMessage(ev, "https://giddylist.test")

	assert.Equal(t, models.NotificationGiftClaimed, msg.Type)
	assert.Equal(t, "A gift was reserved!", msg.Title)
	assert.Equal(t, `Grandma reserved "LEGO Fire Truck" from Leo turns 5.`, msg.Body)
	assert.Equal(t, "https://giddylist.test/registry/leo-turns-5", msg.Link)

	ev.Claim.IsAnonymous = true
	ev.Claim.ClaimType = models.ClaimPurchase
	ev.Claim.Message = strPtr("Happy birthday!")
	msg = ClaimMessage(ev, "")
	assert.Equal(t, `Someone purchased "LEGO Fire Truck" from Leo turns 5. They said: "Happy birthday!"`, msg.Body)
}

type fakeNotificationRepo struct {
	created []*models.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	f.created = append(f.created, n)
	return n, nil
}

func TestInApp(t *testing.T) {
	repo := &fakeNotificationRepo{}
	ev := claimEvent()

	require.NoError(t, NewInApp(repo, "https://x").GiftClaimed(context.Background(), ev))
	require.Len(t, repo.created, 1)
	assert.Equal(t, ev.Owner.ID, repo.created[0].UserID)
	assert.Equal(t, "https://x/registry/leo-turns-5", *repo.created[0].Link)
}

type fakeSender struct {
	chatID int64
	text   string
	calls  int
}

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	f.calls++
	f.chatID, f.text = chatID, text
	return nil
}

func TestTelegramSkipsUnlinkedOwner(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegram(sender, "https://x")
	ev := claimEvent()

	require.NoError(t, n.GiftClaimed(context.Background(), ev))
	assert.Equal(t, int64(4242), sender.chatID)
	assert.Contains(t, sender.text, "LEGO Fire Truck")

	ev.Owner.TelegramChatID = nil
	require.NoError(t, n.GiftClaimed(context.Background(), ev))
	assert.Equal(t, 1, sender.calls)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `snake\_case \*bold\*`, escapeMarkdown("snake_case *bold*"))
}

type fakeSES struct {
	input *sesv2.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	return &sesv2.SendEmailOutput{}, nil
}

func TestEmail(t *testing.T) {
	ses := &fakeSES{}
	n := &Email{client: ses, fromEmail: "hello@giddylist.test", siteURL: "https://x"}

	require.NoError(t, n.GiftClaimed(context.Background(), claimEvent()))
	require.NotNil(t, ses.input)
	assert.Equal(t, []string{"maya@example.com"}, ses.input.Destination.ToAddresses)
	assert.Equal(t, "The Giddy List <hello@giddylist.test>", aws.ToString(ses.input.FromEmailAddress))
	assert.Equal(t, "A gift was reserved!", aws.ToString(ses.input.Content.Simple.Subject.Data))
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) GiftClaimed(context.Context, ClaimEvent) error {
	f.calls++
	return errors.New("boom")
}

func (f *failingNotifier) NewFollower(context.Context, FollowEvent) error {
	f.calls++
	return errors.New("boom")
}

func TestMultiContinuesPastFailures(t *testing.T) {
	bad := &failingNotifier{}
	repo := &fakeNotificationRepo{}
	m := NewMulti(logger.Discard(), bad, nil, NewInApp(repo, ""))

	err := m.GiftClaimed(context.Background(), claimEvent())
	assert.Error(t, err)
	assert.Equal(t, 1, bad.calls)
	assert.Len(t, repo.created, 1)

	follower := &models.CreatorProfile{Username: "sam"}
	err = m.NewFollower(context.Background(), FollowEvent{Follower: follower, Followed: claimEvent().Owner})
	assert.Error(t, err)
	assert.Len(t, repo.created, 2)
	assert.Equal(t, "@sam started following you.", repo.created[1].Body)
}
