package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/service"
	"github.com/Kerhoff/giddylist/internal/telegram"
)

const welcomeText = `🎁 *Welcome to The Giddy List!*

I'll message you when someone reserves or buys a gift from one of your registries.

To connect this chat, open *Settings → Telegram* on the website and send me the code it shows:
• /start <code> - Link this chat to your account

Use /help to see everything I can do.`

// StartHandler handles the /start command. With a link code it attaches the
// chat to the code's account.
type StartHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(svc *service.Service, logger *logrus.Logger) *StartHandler {
	return &StartHandler{svc: svc, logger: logger}
}

// Handle processes the /start command
func (h *StartHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return send(bot, message.Chat.ID, welcomeText)
	}

	profile, err := h.svc.LinkTelegramChat(ctx, args[0], message.Chat.ID)
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound), errors.As(err, &verr):
		return send(bot, message.Chat.ID, "❌ That link code is invalid or has already been used. Generate a new one on the website.")
	case err != nil:
		return fmt.Errorf("link chat: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":  message.Chat.ID,
		"username": profile.Username,
	}).Info("Linked Telegram chat")

	return send(bot, message.Chat.ID, fmt.Sprintf(
		"✅ Linked to *@%s*. You'll get a message here whenever a gift is claimed.", escape(profile.Username)))
}
