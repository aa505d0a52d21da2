package handlers

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository/memory"
	"github.com/Kerhoff/giddylist/internal/service"
	"github.com/Kerhoff/giddylist/pkg/logger"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1].Text
}

const chatID int64 = 4242

func setup(t *testing.T) (*service.Service, *models.CreatorProfile) {
	t.Helper()
	store := memory.New()
	owner := &models.CreatorProfile{Username: "parent", IsPublic: true}
	store.PutProfile(owner)
	return service.New(service.Deps{Repos: store.Repositories()}), owner
}

func message() *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID, Type: "private"}}
}

func link(t *testing.T, svc *service.Service, owner *models.CreatorProfile) {
	t.Helper()
	ctx := context.Background()
	code, err := svc.CreateTelegramLinkCode(ctx, owner.ID)
	require.NoError(t, err)
	_, err = svc.LinkTelegramChat(ctx, code, chatID)
	require.NoError(t, err)
}

func TestStartWithoutCode(t *testing.T) {
	svc, _ := setup(t)
	bot := &fakeSender{}

	require.NoError(t, NewStartHandler(svc, logger.Discard()).Handle(context.Background(), bot, message(), nil))

	assert.Contains(t, bot.last(t), "Welcome to The Giddy List")
	assert.Equal(t, tgbotapi.ModeMarkdown, bot.sent[0].ParseMode)
}

func TestStartLinksChat(t *testing.T) {
	svc, owner := setup(t)
	ctx := context.Background()
	bot := &fakeSender{}
	h := NewStartHandler(svc, logger.Discard())

	code, err := svc.CreateTelegramLinkCode(ctx, owner.ID)
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, bot, message(), []string{code}))
	assert.Contains(t, bot.last(t), "Linked to *@parent*")

	p, err := svc.TelegramProfile(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, p.ID)

	// The code is burned once used.
	require.NoError(t, h.Handle(ctx, bot, message(), []string{code}))
	assert.Contains(t, bot.last(t), "invalid or has already been used")
}

func TestStartWithUnknownCode(t *testing.T) {
	svc, _ := setup(t)
	bot := &fakeSender{}

	require.NoError(t, NewStartHandler(svc, logger.Discard()).Handle(context.Background(), bot, message(), []string{"NOPE1234"}))
	assert.Contains(t, bot.last(t), "invalid or has already been used")
}

func TestRegistriesRequiresLink(t *testing.T) {
	svc, _ := setup(t)
	bot := &fakeSender{}

	require.NoError(t, NewRegistriesHandler(svc, "https://giddy.test", logger.Discard()).Handle(context.Background(), bot, message(), nil))
	assert.Equal(t, notLinkedText, bot.last(t))
}

func TestRegistriesListsProgress(t *testing.T) {
	svc, owner := setup(t)
	ctx := context.Background()
	bot := &fakeSender{}
	h := NewRegistriesHandler(svc, "https://giddy.test/", logger.Discard())
	link(t, svc, owner)

	require.NoError(t, h.Handle(ctx, bot, message(), nil))
	assert.Contains(t, bot.last(t), "don't have any registries")

	show := true
	date := "2026-12-25"
	_, err := svc.CreateRegistry(ctx, owner.ID, service.RegistryInput{Title: "Leo's Birthday", EventDate: &date, ShowClaimed: &show})
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, bot, message(), nil))
	text := bot.last(t)
	assert.Contains(t, text, "*Leo's Birthday* (Dec 25, 2026)")
	assert.Contains(t, text, "0/0 claimed (0%)")
	assert.Contains(t, text, "https://giddy.test/registry/leos-birthday")
}

func TestUnlink(t *testing.T) {
	svc, owner := setup(t)
	ctx := context.Background()
	bot := &fakeSender{}
	h := NewUnlinkHandler(svc, logger.Discard())

	require.NoError(t, h.Handle(ctx, bot, message(), nil))
	assert.Equal(t, notLinkedText, bot.last(t))

	link(t, svc, owner)
	require.NoError(t, h.Handle(ctx, bot, message(), nil))
	assert.Contains(t, bot.last(t), "won't receive gift notifications")

	_, err := svc.TelegramProfile(ctx, chatID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestHelp(t *testing.T) {
	bot := &fakeSender{}
	require.NoError(t, NewHelpHandler(logger.Discard()).Handle(context.Background(), bot, message(), nil))
	assert.Contains(t, bot.last(t), "/registries")
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "▱▱▱▱▱▱▱▱▱▱", progressBar(0))
	assert.Equal(t, "▰▰▰▰▰▱▱▱▱▱", progressBar(50))
	assert.Equal(t, "▰▰▰▰▰▰▰▰▰▰", progressBar(100))
	assert.Equal(t, "▰▰▰▰▰▰▰▰▰▰", progressBar(140))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `my\_kid \*star\*`, escape("my_kid *star*"))
}
