package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

const linkCodeLength = 8

func newLinkCode() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate link code: %w", err)
	}
	return base32.StdEncoding.EncodeToString(buf)[:linkCodeLength], nil
}

// CreateTelegramLinkCode issues a one-time code the owner sends to the bot
// as "/start <code>". Issuing a new code replaces the previous one.
func (s *Service) CreateTelegramLinkCode(ctx context.Context, owner uuid.UUID) (string, error) {
	repos, err := s.store()
	if err != nil {
		return "", err
	}
	p, err := repos.Profiles.GetByID(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("failed to get profile %s: %w", owner, err)
	}
	if p == nil {
		return "", ErrNotFound
	}

	code, err := newLinkCode()
	if err != nil {
		return "", err
	}
	if err := repos.Profiles.SetTelegramLinkCode(ctx, owner, code); err != nil {
		return "", fmt.Errorf("failed to save link code: %w", err)
	}
	return code, nil
}

// LinkTelegramChat attaches chatID to the profile holding code and burns the
// code.
func (s *Service) LinkTelegramChat(ctx context.Context, code string, chatID int64) (*models.CreatorProfile, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, invalid("link code is required")
	}
	p, err := repos.Profiles.GetByTelegramLinkCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up link code: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if err := repos.Profiles.SetTelegramChat(ctx, p.ID, &chatID); err != nil {
		return nil, fmt.Errorf("failed to link chat: %w", err)
	}
	p.TelegramChatID = &chatID
	p.TelegramLinkCode = nil
	return p, nil
}

// TelegramProfile returns the profile linked to chatID.
func (s *Service) TelegramProfile(ctx context.Context, chatID int64) (*models.CreatorProfile, error) {
	repos, err := s.store()
	if err != nil {
		return nil, err
	}
	p, err := repos.Profiles.GetByTelegramChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up chat %d: %w", chatID, err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// UnlinkTelegramChat stops notifications to chatID.
func (s *Service) UnlinkTelegramChat(ctx context.Context, chatID int64) error {
	p, err := s.TelegramProfile(ctx, chatID)
	if err != nil {
		return err
	}
	if err := s.repos.Profiles.SetTelegramChat(ctx, p.ID, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to unlink chat: %w", err)
	}
	return nil
}
