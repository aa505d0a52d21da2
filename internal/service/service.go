package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/affiliate"
	"github.com/Kerhoff/giddylist/internal/llm"
	"github.com/Kerhoff/giddylist/internal/metrics"
	"github.com/Kerhoff/giddylist/internal/notify"
	"github.com/Kerhoff/giddylist/internal/repository"
	"github.com/Kerhoff/giddylist/internal/scraper"
	"github.com/Kerhoff/giddylist/pkg/logger"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrStoreUnavailable = errors.New("database not configured")
	ErrNotConfigured    = errors.New("feature not configured")
)

// ValidationError is a problem with caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// ProductScraper fetches product metadata for URLs.
type ProductScraper interface {
	ScrapeProduct(ctx context.Context, rawURL string) *scraper.ProductMetadata
	ScrapeBatch(ctx context.Context, urls []string) []*scraper.ProductMetadata
}

// GuideWriter drafts gift guide copy.
type GuideWriter interface {
	Enabled() bool
	Model() string
	GenerateGuide(ctx context.Context, req llm.GuideRequest) (*llm.GuideDraft, error)
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, folder string, r io.Reader) (string, error)
}

// Deps are the collaborators a Service is built from. Repos is nil when no
// database is configured; Writer, Uploader and Notifier are optional.
type Deps struct {
	Repos     *repository.Repositories
	Scraper   ProductScraper
	Affiliate *affiliate.Rewriter
	Writer    GuideWriter
	Uploader  ImageUploader
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
	Logger    *logrus.Logger
}

// Service is the business logic layer over the repositories and the
// outbound integrations.
type Service struct {
	repos     *repository.Repositories
	scraper   ProductScraper
	affiliate *affiliate.Rewriter
	writer    GuideWriter
	uploader  ImageUploader
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	now       func() time.Time
}

// New creates a Service from deps.
func New(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if deps.Affiliate == nil {
		deps.Affiliate = affiliate.New("")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewMulti(deps.Logger)
	}
	return &Service{
		repos:     deps.Repos,
		scraper:   deps.Scraper,
		affiliate: deps.Affiliate,
		writer:    deps.Writer,
		uploader:  deps.Uploader,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// Metrics returns the collectors the service records into.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// HasStore reports whether a database is configured.
func (s *Service) HasStore() bool {
	return s.repos != nil
}

func (s *Service) store() (*repository.Repositories, error) {
	if s.repos == nil {
		return nil, ErrStoreUnavailable
	}
	return s.repos, nil
}
