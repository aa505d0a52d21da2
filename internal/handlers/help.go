package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/telegram"
)

const helpText = `📚 *The Giddy List Help*

*Account:*
• /start <code> - Link this chat to your account
• /unlink - Stop notifications in this chat

*Registries:*
• /registries - Show claim progress for your registries

_Link codes are created on the website under Settings → Telegram._`

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(_ context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	if err := send(bot, message.Chat.ID, helpText); err != nil {
		return err
	}
	h.logger.WithField("chat_id", message.Chat.ID).Debug("Sent help message")
	return nil
}
