package scraper

import (
	"net/url"
	"regexp"
	"strings"
)

// Retailer identifies the store a product URL belongs to.
type Retailer string

const (
	RetailerAmazon  Retailer = "amazon"
	RetailerWalmart Retailer = "walmart"
	RetailerTarget  Retailer = "target"
	RetailerOther   Retailer = "other"
)

// Valid reports whether r is one of the known retailer values.
func (r Retailer) Valid() bool {
	switch r {
	case RetailerAmazon, RetailerWalmart, RetailerTarget, RetailerOther:
		return true
	}
	return false
}

// retailerDomains maps registrable domains to their retailer. A host matches
// a domain when it equals it or is a subdomain of it.
var retailerDomains = []struct {
	domain   string
	retailer Retailer
}{
	{"amazon.com", RetailerAmazon},
	{"amazon.co.uk", RetailerAmazon},
	{"amazon.ca", RetailerAmazon},
	{"amazon.com.au", RetailerAmazon},
	{"amazon.de", RetailerAmazon},
	{"amazon.fr", RetailerAmazon},
	{"amazon.es", RetailerAmazon},
	{"amazon.it", RetailerAmazon},
	{"amazon.co.jp", RetailerAmazon},
	{"amzn.to", RetailerAmazon},
	{"amzn.com", RetailerAmazon},
	{"walmart.com", RetailerWalmart},
	{"target.com", RetailerTarget},
}

// DetectRetailer classifies rawURL by hostname. Anything that does not parse
// to a URL with a host, or whose host is not a known retailer domain, is
// RetailerOther.
func DetectRetailer(rawURL string) Retailer {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return RetailerOther
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	for _, d := range retailerDomains {
		if host == d.domain || strings.HasSuffix(host, "."+d.domain) {
			return d.retailer
		}
	}
	return RetailerOther
}

// asinPatterns are tried in order; the first one yielding a valid ASIN wins.
var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/dp/([A-Z0-9]{10})(?:[/?#]|$)`),
	regexp.MustCompile(`(?i)/gp/product/([A-Z0-9]{10})(?:[/?#]|$)`),
	regexp.MustCompile(`(?i)/gp/aw/d/([A-Z0-9]{10})(?:[/?#]|$)`),
	regexp.MustCompile(`(?i)/product/([A-Z0-9]{10})(?:[/?#]|$)`),
	regexp.MustCompile(`(?i)/ASIN/([A-Z0-9]{10})(?:[/?#]|$)`),
	regexp.MustCompile(`(?i)[?&]asin=([A-Z0-9]{10})(?:&|#|$)`),
}

var asinShape = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// ExtractASIN returns the Amazon product identifier embedded in rawURL, or ""
// when none of the known URL shapes carry one.
func ExtractASIN(rawURL string) string {
	for _, re := range asinPatterns {
		m := re.FindStringSubmatch(rawURL)
		if m == nil {
			continue
		}
		candidate := strings.ToUpper(m[1])
		if asinShape.MatchString(candidate) {
			return candidate
		}
	}
	return ""
}
