package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/Kerhoff/giddylist/internal/models"
)

type sendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Email sends events through Amazon SES to recipients with an address on
// file.
type Email struct {
	client    sendEmailAPI
	fromEmail string
	siteURL   string
}

// NewEmail loads AWS configuration for region. It returns nil, nil when
// fromEmail is empty.
func NewEmail(ctx context.Context, region, fromEmail, siteURL string) (*Email, error) {
	if fromEmail == "" {
		return nil, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Email{client: sesv2.NewFromConfig(cfg), fromEmail: fromEmail, siteURL: siteURL}, nil
}

func (n *Email) GiftClaimed(ctx context.Context, ev ClaimEvent) error {
	return n.send(ctx, ev.Owner, ClaimMessage(ev, n.siteURL))
}

func (n *Email) NewFollower(ctx context.Context, ev FollowEvent) error {
	return n.send(ctx, ev.Followed, FollowMessage(ev, n.siteURL))
}

func (n *Email) send(ctx context.Context, to *models.CreatorProfile, msg Message) error {
	if to == nil || to.Email == nil || *to.Email == "" {
		return nil
	}

	textBody := fmt.Sprintf("%s\n\n%s\n", msg.Body, msg.Link)
	htmlBody := fmt.Sprintf(`<p>Hi %s,</p><p>%s</p><p><a href="%s">Open The Giddy List</a></p>`,
		html.EscapeString(to.Name()), html.EscapeString(msg.Body), html.EscapeString(msg.Link))

	_, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("The Giddy List <%s>", n.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{*to.Email},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Title), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", *to.Email, err)
	}
	return nil
}
