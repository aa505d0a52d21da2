// Package scraper classifies product URLs by retailer and pulls best-effort
// product metadata out of the retailer's HTML.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxBatchURLs caps how many URLs a single batch scrape will look at.
const MaxBatchURLs = 10

// maxBodyBytes bounds how much of a product page is read.
const maxBodyBytes = 4 << 20

// ProductMetadata is the structured summary of a product page. Every field
// that could not be extracted is nil.
type ProductMetadata struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image_url"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
	Retailer    Retailer `json:"retailer"`
	ASIN        *string  `json:"asin"`
	OriginalURL string   `json:"original_url"`
}

// Outcome labels a scrape result for observers.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeFailed Outcome = "failed"
)

// Observer is notified after every scrape.
type Observer func(retailer Retailer, outcome Outcome, took time.Duration)

// Scraper fetches product pages and extracts metadata from them.
type Scraper struct {
	client   *http.Client
	logger   *logrus.Logger
	observer Observer
}

// New creates a Scraper. A nil client gets NewClient with a 20 second
// timeout, which only dials public addresses.
func New(client *http.Client, logger *logrus.Logger) *Scraper {
	if client == nil {
		client = NewClient(20 * time.Second)
	}
	return &Scraper{client: client, logger: logger}
}

// WithObserver registers fn to be called after each scrape.
func (s *Scraper) WithObserver(fn Observer) *Scraper {
	s.observer = fn
	return s
}

// browserHeaders mimic a desktop browser; several retailers serve a bot
// wall or an empty shell to default Go user agents.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
}

// ScrapeProduct fetches rawURL and extracts what it can. It never fails:
// network errors and non-2xx responses produce metadata with only the
// retailer, ASIN and original URL populated.
func (s *Scraper) ScrapeProduct(ctx context.Context, rawURL string) *ProductMetadata {
	start := time.Now()
	rawURL = strings.TrimSpace(rawURL)

	meta := &ProductMetadata{
		Retailer:    DetectRetailer(rawURL),
		OriginalURL: rawURL,
	}
	if meta.Retailer == RetailerAmazon {
		if asin := ExtractASIN(rawURL); asin != "" {
			meta.ASIN = &asin
		}
	}

	body, err := s.fetch(ctx, rawURL)
	if err != nil {
		s.logger.WithError(err).WithField("url", rawURL).Warn("Product scrape failed")
		s.observe(meta.Retailer, OutcomeFailed, start)
		return meta
	}

	Extract(body, meta)
	s.observe(meta.Retailer, OutcomeOK, start)

	s.logger.WithFields(logrus.Fields{
		"url":       rawURL,
		"retailer":  meta.Retailer,
		"has_title": meta.Title != nil,
		"has_price": meta.Price != nil,
	}).Debug("Product scraped")

	return meta
}

// ScrapeBatch scrapes up to MaxBatchURLs URLs one after another. Extra URLs
// are ignored.
func (s *Scraper) ScrapeBatch(ctx context.Context, urls []string) []*ProductMetadata {
	if len(urls) > MaxBatchURLs {
		urls = urls[:MaxBatchURLs]
	}

	results := make([]*ProductMetadata, 0, len(urls))
	for _, u := range urls {
		results = append(results, s.ScrapeProduct(ctx, u))
	}
	return results
}

func (s *Scraper) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch product page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("product page returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read product page: %w", err)
	}
	return string(body), nil
}

func (s *Scraper) observe(r Retailer, o Outcome, start time.Time) {
	if s.observer != nil {
		s.observer(r, o, time.Since(start))
	}
}
