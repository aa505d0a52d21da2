package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/service"
	"github.com/Kerhoff/giddylist/internal/telegram"
)

const notLinkedText = "This chat isn't linked to an account yet. Send /start <code> with the code from the website."

// ---------------------------------------------------------------------------
// RegistriesHandler – /registries
// ---------------------------------------------------------------------------

// RegistriesHandler lists the linked account's registries with claim
// progress.
type RegistriesHandler struct {
	svc     *service.Service
	siteURL string
	logger  *logrus.Logger
}

// NewRegistriesHandler creates a new RegistriesHandler.
func NewRegistriesHandler(svc *service.Service, siteURL string, logger *logrus.Logger) *RegistriesHandler {
	return &RegistriesHandler{svc: svc, siteURL: strings.TrimRight(siteURL, "/"), logger: logger}
}

// Handle processes the /registries command.
func (h *RegistriesHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	profile, err := h.svc.TelegramProfile(ctx, message.Chat.ID)
	if errors.Is(err, service.ErrNotFound) {
		return send(bot, message.Chat.ID, notLinkedText)
	}
	if err != nil {
		return fmt.Errorf("look up profile: %w", err)
	}

	summaries, err := h.svc.RegistrySummaries(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("list registries: %w", err)
	}
	if len(summaries) == 0 {
		return send(bot, message.Chat.ID, "📭 You don't have any registries yet. Create one on the website!")
	}

	var sb strings.Builder
	sb.WriteString("🎁 *Your registries*\n\n")
	for _, r := range summaries {
		fmt.Fprintf(&sb, "*%s*", escape(r.Title))
		if r.EventDate != nil {
			fmt.Fprintf(&sb, " (%s)", r.EventDate.Format("Jan 2, 2006"))
		}
		fmt.Fprintf(&sb, "\n%s %d/%d claimed (%d%%)\n%s/registry/%s\n\n",
			progressBar(r.ProgressPercent), r.ClaimedCount, r.TotalCount, r.ProgressPercent, h.siteURL, r.Slug)
	}

	return send(bot, message.Chat.ID, strings.TrimRight(sb.String(), "\n"))
}

// progressBar renders pct as ten blocks.
func progressBar(pct int) string {
	filled := max(0, min(10, (pct+5)/10))
	return strings.Repeat("▰", filled) + strings.Repeat("▱", 10-filled)
}

// ---------------------------------------------------------------------------
// UnlinkHandler – /unlink
// ---------------------------------------------------------------------------

// UnlinkHandler detaches the chat from its account.
type UnlinkHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewUnlinkHandler creates a new UnlinkHandler.
func NewUnlinkHandler(svc *service.Service, logger *logrus.Logger) *UnlinkHandler {
	return &UnlinkHandler{svc: svc, logger: logger}
}

// Handle processes the /unlink command.
func (h *UnlinkHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	err := h.svc.UnlinkTelegramChat(ctx, message.Chat.ID)
	if errors.Is(err, service.ErrNotFound) {
		return send(bot, message.Chat.ID, notLinkedText)
	}
	if err != nil {
		return fmt.Errorf("unlink chat: %w", err)
	}

	h.logger.WithField("chat_id", message.Chat.ID).Info("Unlinked Telegram chat")
	return send(bot, message.Chat.ID, "👋 Done. This chat won't receive gift notifications anymore.")
}
