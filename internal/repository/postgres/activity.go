package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, type, title, body, link, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	n.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query,
		n.UserID,
		n.Type,
		n.Title,
		n.Body,
		n.Link,
		n.IsRead,
		n.CreatedAt,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return n, nil
}

type clickRepository struct {
	db *sql.DB
}

// NewClickRepository creates a new affiliate click repository
func NewClickRepository(db *sql.DB) repository.ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Create(ctx context.Context, c *models.AffiliateClick) error {
	query := `
		INSERT INTO affiliate_clicks (url, retailer, source, product_id, collection_id, guide_id,
			creator_id, user_id, referrer, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	c.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query,
		c.URL,
		c.Retailer,
		c.Source,
		c.ProductID,
		c.CollectionID,
		c.GuideID,
		c.CreatorID,
		c.UserID,
		c.Referrer,
		c.UserAgent,
		c.CreatedAt,
	).Scan(&c.ID)

	if err != nil {
		return fmt.Errorf("failed to record affiliate click: %w", err)
	}

	return nil
}
