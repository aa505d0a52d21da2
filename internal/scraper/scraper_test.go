package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func strp(s string) *string { return &s }

func TestDetectRetailer(t *testing.T) {
	tests := []struct {
		url  string
		want Retailer
	}{
		{"https://www.amazon.com/dp/B07MDHF4CP", RetailerAmazon},
		{"https://amzn.to/3xYz", RetailerAmazon},
		{"https://www.amzn.com/gp/product/B07MDHF4CP", RetailerAmazon},
		{"https://smile.amazon.co.uk/dp/B07MDHF4CP", RetailerAmazon},
		{"https://www.walmart.com/ip/12345", RetailerWalmart},
		{"https://www.target.com/p/-/A-1234", RetailerTarget},
		{"https://www.etsy.com/listing/1", RetailerOther},
		{"https://notarget.example.com/x", RetailerOther},
		{"https://myamazon.shop/p", RetailerOther},
		{"https://walmart.fakestore.io/", RetailerOther},
		{"https://shop.notamazon.example/item?id=1", RetailerOther},
		{"https://fakeamazon.com/dp/B07MDHF4CP", RetailerOther},
		{"https://www.target.com.evil.io/p/1", RetailerOther},
		{"https://WWW.Walmart.com./ip/1", RetailerWalmart},
		{"not a url", RetailerOther},
		{"", RetailerOther},
		{"://broken", RetailerOther},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectRetailer(tt.url))
		})
	}
}

func TestExtractASIN(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"dp", "https://www.amazon.com/dp/B07MDHF4CP", "B07MDHF4CP"},
		{"dp with slug", "https://www.amazon.com/LEGO-Classic/dp/B07MDHF4CP/ref=sr_1_1?keywords=lego", "B07MDHF4CP"},
		{"gp product", "https://www.amazon.com/gp/product/B000000001", "B000000001"},
		{"mobile", "https://www.amazon.com/gp/aw/d/B0ABCDEFGH", "B0ABCDEFGH"},
		{"query param", "https://www.amazon.com/s?asin=B0ABCDEFGH&ref=x", "B0ABCDEFGH"},
		{"lowercase normalized", "https://www.amazon.com/dp/b07mdhf4cp", "B07MDHF4CP"},
		{"too short", "https://www.amazon.com/dp/B07MDHF", ""},
		{"too long", "https://www.amazon.com/dp/B07MDHF4CPXX", ""},
		{"no id", "https://www.amazon.com/s?k=lego", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractASIN(tt.url))
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want *float64
	}{
		{"dollars with thousands", strp("$1,234.56"), ptrFloat(1234.56)},
		{"plain", strp("19.99"), ptrFloat(19.99)},
		{"decimal comma", strp("12,99 €"), ptrFloat(12.99)},
		{"european thousands", strp("1.234,56"), ptrFloat(1234.56)},
		{"one digit decimal comma", strp("12,5"), ptrFloat(12.5)},
		{"thousands comma only", strp("$1,234"), ptrFloat(1234)},
		{"integer", strp("USD 25"), ptrFloat(25)},
		{"nil", nil, nil},
		{"free", strp("free"), nil},
		{"empty", strp(""), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.0001)
		})
	}
}

func ptrFloat(f float64) *float64 { return &f }

func TestDecodeEntities(t *testing.T) {
	assert.Equal(t, `Tom & Jerry "Deluxe" – 3’s`, DecodeEntities("Tom &amp; Jerry &quot;Deluxe&quot; &ndash; 3&rsquo;s"))
	assert.Equal(t, "It's A", DecodeEntities("It&#39;s &#65;"))
	assert.Equal(t, "é", DecodeEntities("&#xE9;"))
	assert.Equal(t, "&bogus;", DecodeEntities("&bogus;"))
	assert.Equal(t, "Tom &#39;s", DecodeEntities("Tom &amp;#39;s"))
	assert.Equal(t, "&amp;", DecodeEntities("&amp;amp;"))
	assert.Equal(t, "&#x41;", DecodeEntities("&amp;#x41;"))
	assert.Equal(t, "no entities", DecodeEntities("no entities"))
}

const amazonPage = `<html><head>
<title>Amazon.com: LEGO Classic Bricks</title>
<meta name="description" content="Build &amp; create with 790 pieces">
<meta content="https://m.media-amazon.com/images/I/lego.jpg" property="og:image">
</head><body>
<span class="a-price"><span class="a-offscreen">$34.99</span></span>
</body></html>`

func TestExtractAmazonMarkup(t *testing.T) {
	meta := &ProductMetadata{Retailer: RetailerAmazon}
	Extract(amazonPage, meta)

	require.NotNil(t, meta.Title)
	assert.Equal(t, "Amazon.com: LEGO Classic Bricks", *meta.Title)
	require.NotNil(t, meta.Description)
	assert.Equal(t, "Build & create with 790 pieces", *meta.Description)
	require.NotNil(t, meta.ImageURL)
	assert.Equal(t, "https://m.media-amazon.com/images/I/lego.jpg", *meta.ImageURL)
	require.NotNil(t, meta.Price)
	assert.Equal(t, 34.99, *meta.Price)
	require.NotNil(t, meta.Currency)
	assert.Equal(t, "USD", *meta.Currency)
}

func TestExtractPrefersOpenGraph(t *testing.T) {
	html := `<title>Fallback</title>
<meta property="og:title" content="Wooden Train Set" />
<meta property="product:price:amount" content="49.00" />
<meta property="product:price:currency" content="CAD" />
<p>$10.00 shipping</p>`

	meta := &ProductMetadata{Retailer: RetailerOther}
	Extract(html, meta)

	assert.Equal(t, "Wooden Train Set", *meta.Title)
	assert.Equal(t, 49.0, *meta.Price)
	assert.Equal(t, "CAD", *meta.Currency)
}

func TestExtractRetailerSpecificPrices(t *testing.T) {
	walmart := &ProductMetadata{Retailer: RetailerWalmart}
	Extract(`<span itemprop="price" content="12.47">$12.47</span>`, walmart)
	require.NotNil(t, walmart.Price)
	assert.Equal(t, 12.47, *walmart.Price)

	target := &ProductMetadata{Retailer: RetailerTarget}
	Extract(`<script>{"price":{"current_retail":29.99}}</script>`, target)
	require.NotNil(t, target.Price)
	assert.Equal(t, 29.99, *target.Price)
}

func TestExtractNothing(t *testing.T) {
	meta := &ProductMetadata{Retailer: RetailerOther}
	Extract(`<html><body>nothing here</body></html>`, meta)

	assert.Nil(t, meta.Title)
	assert.Nil(t, meta.Description)
	assert.Nil(t, meta.ImageURL)
	assert.Nil(t, meta.Price)
	assert.Nil(t, meta.Currency)
}

func TestScrapeProduct(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		if r.URL.Path == "/moved" {
			http.Redirect(w, r, "/product", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<meta property="og:title" content="Plush Bunny"><p>$15.00</p>`))
	}))
	defer srv.Close()

	var observed []Outcome
	s := New(srv.Client(), quietLogger()).WithObserver(func(_ Retailer, o Outcome, _ time.Duration) {
		observed = append(observed, o)
	})

	meta := s.ScrapeProduct(context.Background(), srv.URL+"/moved")

	assert.Contains(t, gotUA.Load(), "Mozilla/5.0")
	require.NotNil(t, meta.Title)
	assert.Equal(t, "Plush Bunny", *meta.Title)
	assert.Equal(t, 15.0, *meta.Price)
	assert.Equal(t, RetailerOther, meta.Retailer)
	assert.Equal(t, srv.URL+"/moved", meta.OriginalURL)
	assert.Equal(t, []Outcome{OutcomeOK}, observed)
}

func TestScrapeProductHTTPErrorYieldsNulls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`<title>Robot check</title>`))
	}))
	defer srv.Close()

	s := New(srv.Client(), quietLogger())
	meta := s.ScrapeProduct(context.Background(), srv.URL)

	assert.Nil(t, meta.Title)
	assert.Nil(t, meta.Price)
	assert.Equal(t, srv.URL, meta.OriginalURL)
}

func TestScrapeProductInvalidURL(t *testing.T) {
	s := New(nil, quietLogger())
	meta := s.ScrapeProduct(context.Background(), "not a url")

	assert.Equal(t, RetailerOther, meta.Retailer)
	assert.Nil(t, meta.Title)
	assert.Nil(t, meta.ASIN)
}

func TestScrapeBatchCapsAtTen(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`<title>Item</title>`))
	}))
	defer srv.Close()

	urls := make([]string, 15)
	for i := range urls {
		urls[i] = srv.URL
	}

	results := New(srv.Client(), quietLogger()).ScrapeBatch(context.Background(), urls)

	assert.Len(t, results, MaxBatchURLs)
	assert.Equal(t, int32(MaxBatchURLs), hits.Load())
}
