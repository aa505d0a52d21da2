package scraper

import (
	"regexp"
)

// metaPatterns compiles the two attribute orders a meta tag can appear in:
// key before content, and content before key. Both quote styles are
// accepted for the content value.
func metaPatterns(key string) []*regexp.Regexp {
	k := regexp.QuoteMeta(key)
	return []*regexp.Regexp{
		regexp.MustCompile(`(?is)<meta[^>]+(?:property|name|itemprop)\s*=\s*["']` + k + `["'][^>]*?content\s*=\s*(?:"([^"]*)"|'([^']*)')`),
		regexp.MustCompile(`(?is)<meta[^>]+content\s*=\s*(?:"([^"]*)"|'([^']*)')[^>]*?(?:property|name|itemprop)\s*=\s*["']` + k + `["']`),
	}
}

type metaField struct {
	patterns []*regexp.Regexp
}

func newMetaField(keys ...string) metaField {
	var f metaField
	for _, k := range keys {
		f.patterns = append(f.patterns, metaPatterns(k)...)
	}
	return f
}

var (
	metaTitle         = newMetaField("og:title", "twitter:title", "title")
	metaDescription   = newMetaField("og:description", "description", "twitter:description")
	metaImage         = newMetaField("og:image", "og:image:url", "twitter:image")
	metaPriceAmount   = newMetaField("product:price:amount", "og:price:amount")
	metaPriceCurrency = newMetaField("product:price:currency", "og:price:currency")

	titleTag = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

// first returns the first non-empty capture across patterns.
func (f metaField) first(html string) string {
	for _, re := range f.patterns {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		for _, g := range m[1:] {
			if g != "" {
				return g
			}
		}
	}
	return ""
}

// Price patterns are retailer specific; markup changes silently turn into a
// nil price.
var retailerPricePatterns = map[Retailer][]*regexp.Regexp{
	RetailerAmazon: {
		regexp.MustCompile(`<span class="a-offscreen">\s*\$?\s*([\d,]+\.?\d*)\s*</span>`),
		regexp.MustCompile(`id="priceblock_(?:ourprice|dealprice|saleprice)"[^>]*>\s*\$?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`"priceAmount"\s*:\s*([\d.]+)`),
		regexp.MustCompile(`class="a-price-whole">([\d,]+)<`),
	},
	RetailerWalmart: {
		regexp.MustCompile(`itemprop="price"[^>]*content="([\d.,]+)"`),
		regexp.MustCompile(`"currentPrice"\s*:\s*\{\s*"price"\s*:\s*([\d.]+)`),
		regexp.MustCompile(`"priceString"\s*:\s*"\$([\d,.]+)"`),
	},
	RetailerTarget: {
		regexp.MustCompile(`"current_retail"\s*:\s*([\d.]+)`),
		regexp.MustCompile(`data-test="product-price"[^>]*>\s*\$?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`"formatted_current_price"\s*:\s*"\$([\d,.]+)"`),
	},
}

var genericPrice = regexp.MustCompile(`\$\s?(\d[\d,]*(?:\.\d{1,2})?)`)

// extractPrice returns the raw price text for html, or "" when nothing
// matched.
func extractPrice(html string, retailer Retailer) string {
	for _, re := range retailerPricePatterns[retailer] {
		if m := re.FindStringSubmatch(html); m != nil && m[1] != "" {
			return m[1]
		}
	}
	if m := genericPrice.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

var amazonHiResImage = regexp.MustCompile(`data-old-hires="(https?://[^"]+)"`)

// Extract fills the metadata fields that can be found in html. Fields that
// cannot be found stay nil.
func Extract(html string, meta *ProductMetadata) {
	if t := metaTitle.first(html); t != "" {
		meta.Title = clean(t)
	}
	if meta.Title == nil {
		if m := titleTag.FindStringSubmatch(html); m != nil {
			meta.Title = clean(m[1])
		}
	}

	if d := metaDescription.first(html); d != "" {
		meta.Description = clean(d)
	}

	if img := metaImage.first(html); img != "" {
		meta.ImageURL = clean(img)
	}
	if meta.ImageURL == nil && meta.Retailer == RetailerAmazon {
		if m := amazonHiResImage.FindStringSubmatch(html); m != nil {
			meta.ImageURL = clean(m[1])
		}
	}

	raw := metaPriceAmount.first(html)
	if raw == "" {
		raw = extractPrice(html, meta.Retailer)
	}
	if raw != "" {
		meta.Price = ParsePrice(&raw)
	}

	if c := metaPriceCurrency.first(html); c != "" {
		meta.Currency = clean(c)
	}
	if meta.Currency == nil && meta.Price != nil {
		usd := "USD"
		meta.Currency = &usd
	}
}
