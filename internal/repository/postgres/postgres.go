package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Kerhoff/giddylist/internal/repository"
)

const uniqueViolation = "23505"

type rowScanner interface {
	Scan(dest ...any) error
}

// wrapErr maps unique violations to repository.ErrConflict and wraps the rest.
func wrapErr(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repository.ErrConflict
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// textArray encodes s for a NOT NULL text[] column.
func textArray(s []string) any {
	if s == nil {
		s = []string{}
	}
	return pq.Array(s)
}

// execOne runs a single-row mutation, returning repository.ErrNotFound when
// no row matched.
func execOne(ctx context.Context, db *sql.DB, op, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr(err, op)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// prefixed qualifies every column in a comma separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}

// NewRepositories builds every repository over db.
func NewRepositories(db *sql.DB) *repository.Repositories {
	return &repository.Repositories{
		Profiles:      NewProfileRepository(db),
		Follows:       NewFollowRepository(db),
		Kids:          NewKidRepository(db),
		Wishlist:      NewWishlistRepository(db),
		Registries:    NewRegistryRepository(db),
		Claims:        NewClaimRepository(db),
		Collections:   NewCollectionRepository(db),
		Guides:        NewGuideRepository(db),
		Products:      NewProductRepository(db),
		Trending:      NewTrendingRepository(db),
		Notifications: NewNotificationRepository(db),
		Clicks:        NewClickRepository(db),
	}
}
