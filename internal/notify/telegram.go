package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kerhoff/giddylist/internal/models"
)

// MessageSender delivers a Markdown chat message.
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// Telegram pushes events to recipients who linked a chat.
type Telegram struct {
	sender  MessageSender
	siteURL string
}

func NewTelegram(sender MessageSender, siteURL string) *Telegram {
	return &Telegram{sender: sender, siteURL: siteURL}
}

func (n *Telegram) GiftClaimed(_ context.Context, ev ClaimEvent) error {
	return n.send(ev.Owner, ClaimMessage(ev, n.siteURL))
}

func (n *Telegram) NewFollower(_ context.Context, ev FollowEvent) error {
	return n.send(ev.Followed, FollowMessage(ev, n.siteURL))
}

func (n *Telegram) send(to *models.CreatorProfile, msg Message) error {
	if to == nil || to.TelegramChatID == nil {
		return nil
	}
	text := fmt.Sprintf("🎁 *%s*\n\n%s\n\n%s", escapeMarkdown(msg.Title), escapeMarkdown(msg.Body), msg.Link)
	return n.sender.SendMessage(*to.TelegramChatID, text)
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escapeMarkdown escapes the characters legacy Telegram Markdown treats as
// formatting.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
