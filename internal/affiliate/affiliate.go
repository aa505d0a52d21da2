// Package affiliate rewrites product URLs into monetizable referral links.
package affiliate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Kerhoff/giddylist/internal/scraper"
)

// Rewriter builds affiliate links for the retailers that have a program
// configured. Only Amazon Associates is wired today.
type Rewriter struct {
	amazonTag string
}

// New creates a Rewriter using the given Amazon Associates tag. An empty tag
// disables Amazon links.
func New(amazonTag string) *Rewriter {
	return &Rewriter{amazonTag: strings.TrimSpace(amazonTag)}
}

// CreateAmazonAffiliateURL returns the tagged Amazon URL for rawURL. When
// the ASIN is known the link is rebuilt in canonical /dp/ form; otherwise the
// tag query parameter is set on the original URL. Reports false when no tag
// is configured or rawURL is not an Amazon URL.
func (r *Rewriter) CreateAmazonAffiliateURL(rawURL, asin string) (string, bool) {
	if r.amazonTag == "" {
		return "", false
	}
	if scraper.DetectRetailer(rawURL) != scraper.RetailerAmazon {
		return "", false
	}

	if asin != "" {
		return fmt.Sprintf("https://www.amazon.com/dp/%s?tag=%s", asin, url.QueryEscape(r.amazonTag)), true
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	q := u.Query()
	q.Set("tag", r.amazonTag)
	u.RawQuery = q.Encode()
	return u.String(), true
}

// GenerateAffiliateURL returns a referral link for a scraped product, or
// false when the retailer has no program configured. Walmart and Target
// need a partnership integration before they can be rewritten.
func (r *Rewriter) GenerateAffiliateURL(rawURL string, retailer scraper.Retailer, platformID string) (string, bool) {
	switch retailer {
	case scraper.RetailerAmazon:
		return r.CreateAmazonAffiliateURL(rawURL, platformID)
	default:
		return "", false
	}
}

// ForMetadata is GenerateAffiliateURL for a scrape result.
func (r *Rewriter) ForMetadata(meta *scraper.ProductMetadata) *string {
	if meta == nil {
		return nil
	}
	var asin string
	if meta.ASIN != nil {
		asin = *meta.ASIN
	}
	link, ok := r.GenerateAffiliateURL(meta.OriginalURL, meta.Retailer, asin)
	if !ok {
		return nil
	}
	return &link
}

// Enabled reports whether any affiliate program is configured.
func (r *Rewriter) Enabled() bool {
	return r.amazonTag != ""
}
