package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/giddylist/internal/affiliate"
	"github.com/Kerhoff/giddylist/internal/auth"
	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository/memory"
	"github.com/Kerhoff/giddylist/internal/scraper"
	"github.com/Kerhoff/giddylist/internal/service"
	"github.com/Kerhoff/giddylist/pkg/logger"
)

type tokenVerifier map[string]uuid.UUID

func (v tokenVerifier) Verify(_ context.Context, token string) (uuid.UUID, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return uuid.Nil, auth.ErrInvalidToken
}

type stubScraper struct{ calls int }

func (s *stubScraper) ScrapeProduct(_ context.Context, rawURL string) *scraper.ProductMetadata {
	s.calls++
	title := "Product " + rawURL[len(rawURL)-1:]
	meta := &scraper.ProductMetadata{Title: &title, Retailer: scraper.DetectRetailer(rawURL), OriginalURL: rawURL}
	if asin := scraper.ExtractASIN(rawURL); asin != "" {
		meta.ASIN = &asin
	}
	return meta
}

func (s *stubScraper) ScrapeBatch(ctx context.Context, urls []string) []*scraper.ProductMetadata {
	if len(urls) > scraper.MaxBatchURLs {
		urls = urls[:scraper.MaxBatchURLs]
	}
	var out []*scraper.ProductMetadata
	for _, u := range urls {
		out = append(out, s.ScrapeProduct(ctx, u))
	}
	return out
}

type testEnv struct {
	handler http.Handler
	store   *memory.Store
	scraper *stubScraper
	parent  *models.CreatorProfile
	admin   *models.CreatorProfile
}

func newEnv(t *testing.T, withStore bool) *testEnv {
	t.Helper()
	env := &testEnv{store: memory.New(), scraper: &stubScraper{}}
	env.parent = &models.CreatorProfile{Username: "parent", IsPublic: true}
	env.admin = &models.CreatorProfile{Username: "editor", IsPublic: true, IsAdmin: true}
	env.store.PutProfile(env.parent)
	env.store.PutProfile(env.admin)

	deps := service.Deps{Scraper: env.scraper, Affiliate: affiliate.New("giddy-20"), Logger: logger.Discard()}
	if withStore {
		deps.Repos = env.store.Repositories()
	}
	verifier := tokenVerifier{"parent-token": env.parent.ID, "admin-token": env.admin.ID}
	srv := NewServer(service.New(deps), Options{Verifier: verifier, ScrapeRPS: 1000, ScrapeBurst: 1000, TelegramBot: "giddy_bot"}, logger.Discard())
	env.handler = srv.Handler()
	return env
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRegistryClaimFlow(t *testing.T) {
	env := newEnv(t, true)

	kid := decode[struct{ Kid models.Kid }](t, env.do(t, http.MethodPost, "/api/kids", "parent-token", map[string]any{"name": "Leo"})).Kid
	var items []models.WishlistItem
	for _, u := range []string{"https://www.amazon.com/dp/B0BBSB69YX", "https://example.com/b"} {
		rec := env.do(t, http.MethodPost, "/api/wishlist", "parent-token", map[string]any{"kid_id": kid.ID, "url": u})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		items = append(items, decode[struct{ Item models.WishlistItem }](t, rec).Item)
	}
	require.NotNil(t, items[0].AffiliateURL)
	assert.Equal(t, "https://www.amazon.com/dp/B0BBSB69YX?tag=giddy-20", *items[0].AffiliateURL)

	rec := env.do(t, http.MethodPost, "/api/registries", "parent-token", map[string]any{"title": "Leo turns 5", "kid_id": kid.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[struct{ Registry models.Registry }](t, rec).Registry
	assert.Equal(t, "leo-turns-5", reg.Slug)

	for _, it := range items {
		rec := env.do(t, http.MethodPost, "/api/registries/"+reg.ID.String()+"/items", "parent-token", map[string]any{"wishlist_item_id": it.ID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/registry/leo-turns-5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.RegistryView](t, rec)
	assert.Equal(t, 2, view.TotalCount)
	assert.Equal(t, 0, view.ClaimedCount)

	claim := map[string]any{"wishlist_item_id": items[0].ID, "claimer_name": "Grandma", "claim_type": "reserve"}
	rec = env.do(t, http.MethodPost, "/api/registry/leo-turns-5/claim", "", claim)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/registry/leo-turns-5", "", nil)
	view = decode[models.RegistryView](t, rec)
	assert.Equal(t, 1, view.ClaimedCount)
	assert.Equal(t, 50, view.ProgressPercent)

	rec = env.do(t, http.MethodPost, "/api/registry/leo-turns-5/claim", "", claim)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This item has already been claimed", decode[map[string]string](t, rec)["error"])

	view = decode[models.RegistryView](t, env.do(t, http.MethodGet, "/api/registry/leo-turns-5", "", nil))
	assert.Equal(t, 1, view.ClaimedCount)

	rec = env.do(t, http.MethodPost, "/api/registry/leo-turns-5/claim", "", map[string]any{"wishlist_item_id": items[1].ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/registry/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrivateProfileHidden(t *testing.T) {
	env := newEnv(t, true)
	quiet := &models.CreatorProfile{Username: "quiet"}
	env.store.PutProfile(quiet)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/profiles/quiet", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/profiles/quiet", "parent-token", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/profiles/quiet", "bogus", nil).Code)

	rec := env.do(t, http.MethodGet, "/api/profiles/parent", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.PublicProfile](t, rec)
	assert.Equal(t, "parent", page.Profile.Username)
	assert.False(t, page.IsOwner)
}

func TestFollowRequiresAuth(t *testing.T) {
	env := newEnv(t, true)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/profiles/editor/follow", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/profiles/editor/follow", "bogus", nil).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/profiles/editor/follow", "parent-token", nil).Code)

	page := decode[models.PublicProfile](t, env.do(t, http.MethodGet, "/api/profiles/editor", "parent-token", nil))
	assert.True(t, page.IsFollowing)
	assert.Equal(t, 1, page.Profile.FollowerCount)
}

func TestAdminGate(t *testing.T) {
	env := newEnv(t, true)
	body := map[string]any{"title": "x"}

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/trending-gifts", "", body).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/trending-gifts", "parent-token", body).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/trending-gifts", "admin-token", body).Code)

	rec := env.do(t, http.MethodPost, "/api/guides/generate", "admin-token", map[string]any{"topic": "STEM"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestScrapeBatchCapped(t *testing.T) {
	env := newEnv(t, true)
	var urls []string
	for i := 0; i < 12; i++ {
		urls = append(urls, "https://www.walmart.com/ip/"+strings.Repeat("1", i+1))
	}

	rec := env.do(t, http.MethodPost, "/api/products/scrape", "admin-token", map[string]any{"urls": urls})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[struct {
		Results []service.ScrapeResult
	}](t, rec)
	assert.Len(t, res.Results, scraper.MaxBatchURLs)
	assert.Equal(t, scraper.MaxBatchURLs, env.scraper.calls)
}

func TestTrendingFallbackWithoutDatabase(t *testing.T) {
	env := newEnv(t, false)

	rec := env.do(t, http.MethodGet, "/api/trending-gifts?age=6-8&limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	gifts := decode[struct{ Gifts []models.TrendingGift }](t, rec).Gifts
	require.Len(t, gifts, 2)
	assert.Equal(t, "6-8", gifts[0].AgeRange)

	rec = env.do(t, http.MethodGet, "/api/kids", "parent-token", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "database not configured", decode[map[string]string](t, rec)["error"])

	rec = env.do(t, http.MethodPost, "/api/scrape", "parent-token", map[string]string{"url": "https://www.target.com/p/a"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "target", decode[map[string]any](t, rec)["retailer"])

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/earnings/tiers", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "", nil).Code)
}

func TestTrackClickAndMetrics(t *testing.T) {
	env := newEnv(t, true)

	rec := env.do(t, http.MethodPost, "/api/track/click", "", map[string]string{"url": "https://www.amazon.com/dp/B0BBSB69YX", "source": "guide"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.store.Clicks(), 1)

	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `giddylist_affiliate_clicks_total{retailer="amazon",source="guide"} 1`)
	assert.Contains(t, rec.Body.String(), "giddylist_http_request_duration_seconds")
}

func TestScrapeRateLimited(t *testing.T) {
	store := memory.New()
	p := &models.CreatorProfile{Username: "p"}
	store.PutProfile(p)
	svc := service.New(service.Deps{Repos: store.Repositories(), Scraper: &stubScraper{}})
	srv := NewServer(svc, Options{Verifier: tokenVerifier{"t": p.ID}, ScrapeRPS: 0.001, ScrapeBurst: 1}, logger.Discard())

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/scrape", strings.NewReader(`{"url":"https://example.com/x"}`))
		req.Header.Set("Authorization", "Bearer t")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestTelegramLinkCode(t *testing.T) {
	env := newEnv(t, true)

	rec := env.do(t, http.MethodPost, "/api/telegram/link", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/telegram/link", "parent-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)

	assert.Len(t, body["code"], 8)
	assert.Equal(t, "/start "+body["code"], body["command"])
	assert.Equal(t, "https://t.me/giddy_bot?start="+body["code"], body["deep_link"])
}
