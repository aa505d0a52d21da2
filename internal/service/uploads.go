package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/Kerhoff/giddylist/internal/storage"
)

// UploadImage stores an image for owner and returns its public URL.
func (s *Service) UploadImage(ctx context.Context, owner uuid.UUID, r io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrNotConfigured
	}
	url, err := s.uploader.UploadImage(ctx, "uploads/"+owner.String(), r)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return "", invalid("file must be 5MB or smaller")
	case errors.Is(err, storage.ErrNotImage):
		return "", invalid("file must be a JPEG, PNG, GIF or WebP image")
	case errors.Is(err, storage.ErrNotConfigured):
		return "", ErrNotConfigured
	case err != nil:
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}
