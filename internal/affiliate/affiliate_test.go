package affiliate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/giddylist/internal/scraper"
)

func TestCreateAmazonAffiliateURLWithASIN(t *testing.T) {
	r := New("giddy-20")

	link, ok := r.CreateAmazonAffiliateURL("https://www.amazon.com/LEGO/dp/B07MDHF4CP/ref=x", "B07MDHF4CP")

	require.True(t, ok)
	assert.Equal(t, "https://www.amazon.com/dp/B07MDHF4CP?tag=giddy-20", link)
}

func TestCreateAmazonAffiliateURLReplacesTag(t *testing.T) {
	r := New("giddy-20")

	link, ok := r.CreateAmazonAffiliateURL("https://amzn.to/abc?tag=someone-else&th=1", "")

	require.True(t, ok)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "amzn.to", u.Host)
	assert.Equal(t, "giddy-20", u.Query().Get("tag"))
	assert.Equal(t, "1", u.Query().Get("th"))
}

func TestCreateAmazonAffiliateURLWithoutTag(t *testing.T) {
	r := New("")

	link, ok := r.CreateAmazonAffiliateURL("https://www.amazon.com/dp/B07MDHF4CP", "B07MDHF4CP")

	assert.False(t, ok)
	assert.Empty(t, link)
	assert.False(t, r.Enabled())
}

func TestCreateAmazonAffiliateURLUnparsable(t *testing.T) {
	_, ok := New("giddy-20").CreateAmazonAffiliateURL("not a url", "")
	assert.False(t, ok)
}

func TestCreateAmazonAffiliateURLLookalikeHost(t *testing.T) {
	r := New("giddy-20")

	for _, raw := range []string{
		"https://shop.notamazon.example/item?id=1",
		"https://myamazon.shop/dp/B07MDHF4CP",
		"https://amazon.com.evil.io/dp/B07MDHF4CP",
	} {
		link, ok := r.CreateAmazonAffiliateURL(raw, scraper.ExtractASIN(raw))
		assert.False(t, ok, raw)
		assert.Empty(t, link, raw)

		_, ok = r.GenerateAffiliateURL(raw, scraper.DetectRetailer(raw), "")
		assert.False(t, ok, raw)
	}
}

func TestGenerateAffiliateURLOtherRetailers(t *testing.T) {
	r := New("giddy-20")

	for _, retailer := range []scraper.Retailer{scraper.RetailerWalmart, scraper.RetailerTarget, scraper.RetailerOther} {
		_, ok := r.GenerateAffiliateURL("https://www.walmart.com/ip/1", retailer, "1")
		assert.False(t, ok, retailer)
	}
}

func TestForMetadata(t *testing.T) {
	r := New("giddy-20")
	asin := "B07MDHF4CP"

	link := r.ForMetadata(&scraper.ProductMetadata{
		Retailer:    scraper.RetailerAmazon,
		ASIN:        &asin,
		OriginalURL: "https://www.amazon.com/dp/B07MDHF4CP",
	})
	require.NotNil(t, link)
	assert.Equal(t, "https://www.amazon.com/dp/B07MDHF4CP?tag=giddy-20", *link)

	assert.Nil(t, r.ForMetadata(&scraper.ProductMetadata{Retailer: scraper.RetailerTarget}))
	assert.Nil(t, r.ForMetadata(nil))
}
