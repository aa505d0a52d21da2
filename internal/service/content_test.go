package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/giddylist/internal/earnings"
	"github.com/Kerhoff/giddylist/internal/llm"
	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/repository"
	"github.com/Kerhoff/giddylist/internal/repository/memory"
	"github.com/Kerhoff/giddylist/internal/storage"
)

func intp(i int) *int { return &i }

func (f *fixture) product(t *testing.T, title, category string, lo, hi int) *models.Product {
	t.Helper()
	p, err := f.store.Repositories().Products.Create(context.Background(), &models.Product{
		Title: title, Category: &category, AgeMin: &lo, AgeMax: &hi,
		Retailer: "amazon", URL: "https://www.amazon.com/dp/B000000000", IsActive: true,
	})
	require.NoError(t, err)
	return p
}

func TestGenerateGuide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kit := f.product(t, "Rock Tumbler", "stem", 6, 12)
	f.product(t, "Rattle", "stem", 0, 1)
	f.product(t, "Doll House", "toys", 3, 8)
	f.writer.draft = &llm.GuideDraft{
		Title:       "Best STEM Gifts for 6 Year Olds",
		Description: "Hands-on science picks.",
		Content:     "## Our picks",
		Keywords:    []string{"stem gifts"},
	}

	g, err := f.svc.GenerateGuide(ctx, f.owner.ID, GenerateInput{Topic: "STEM gifts", AgeRange: "6-8", Category: "stem"})
	require.NoError(t, err)

	assert.Equal(t, "best-stem-gifts-for-6-year-olds", g.Slug)
	assert.Equal(t, models.GuideStatusDraft, g.Status)
	require.Len(t, g.Products, 1)
	assert.Equal(t, kit.ID, g.Products[0].ProductID)
	assert.Equal(t, []string{"Rock Tumbler"}, f.writer.got.ProductNames)

	logs := f.store.GenerationLogs()
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
	assert.Equal(t, "test-model", logs[0].Model)
	require.NotNil(t, logs[0].GuideID)
	assert.Equal(t, g.ID, *logs[0].GuideID)

	_, err = f.svc.GetGuide(ctx, g.Slug, false)
	assert.ErrorIs(t, err, ErrNotFound)
	draft, err := f.svc.GetGuide(ctx, g.Slug, true)
	require.NoError(t, err)
	require.Len(t, draft.Products, 1)
	assert.Equal(t, "Rock Tumbler", draft.Products[0].Product.Title)
}

func TestGenerateGuideFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.writer.err = errors.New("model overloaded")

	_, err := f.svc.GenerateGuide(context.Background(), f.owner.ID, GenerateInput{Topic: "Gifts"})
	require.Error(t, err)

	logs := f.store.GenerationLogs()
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	require.NotNil(t, logs[0].Error)
	assert.Contains(t, *logs[0].Error, "overloaded")
	assert.Nil(t, logs[0].GuideID)

	_, err = f.svc.GenerateGuide(context.Background(), f.owner.ID, GenerateInput{})
	assertValidation(t, err, "topic")
}

type flakyGuides struct {
	repository.GuideRepository
	conflicts int
	linkErr   error
}

func (g *flakyGuides) Create(ctx context.Context, guide *models.GiftGuide) (*models.GiftGuide, error) {
	if g.conflicts > 0 {
		g.conflicts--
		return nil, repository.ErrConflict
	}
	return g.GuideRepository.Create(ctx, guide)
}

func (g *flakyGuides) SetProducts(ctx context.Context, guideID uuid.UUID, list []*models.GuideProduct) error {
	if g.linkErr != nil {
		return g.linkErr
	}
	return g.GuideRepository.SetProducts(ctx, guideID, list)
}

func (f *fixture) withFlakyGuides(flaky *flakyGuides) *Service {
	repos := f.store.Repositories()
	flaky.GuideRepository = repos.Guides
	repos.Guides = flaky
	return New(Deps{Repos: repos, Scraper: f.scraper, Writer: f.writer})
}

func TestGenerateGuideRemovesDraftWhenLinkFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "Kite", "outdoor", 4, 10)
	f.writer.draft = &llm.GuideDraft{Title: "Outdoor Fun"}
	svc := f.withFlakyGuides(&flakyGuides{linkErr: errors.New("connection reset")})

	_, err := svc.GenerateGuide(ctx, f.owner.ID, GenerateInput{Topic: "outdoor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link guide products")

	_, err = f.svc.GetGuide(ctx, "outdoor-fun", true)
	assert.ErrorIs(t, err, ErrNotFound)

	logs := f.store.GenerationLogs()
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	assert.Nil(t, logs[0].GuideID)
}

func TestGenerateGuideRetriesSlugConflict(t *testing.T) {
	f := newFixture(t)
	f.writer.draft = &llm.GuideDraft{Title: "Outdoor Fun"}
	svc := f.withFlakyGuides(&flakyGuides{conflicts: 1})

	g, err := svc.GenerateGuide(context.Background(), f.owner.ID, GenerateInput{Topic: "outdoor"})
	require.NoError(t, err)
	assert.Equal(t, "outdoor-fun", g.Slug)

	f.writer.draft = &llm.GuideDraft{Title: "Outdoor Fun"}
	_, err = f.withFlakyGuides(&flakyGuides{conflicts: 2}).GenerateGuide(context.Background(), f.owner.ID, GenerateInput{Topic: "outdoor"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestGenerateGuideNotConfigured(t *testing.T) {
	store := memory.New()
	svc := New(Deps{Repos: store.Repositories(), Scraper: &fakeScraper{}})
	_, err := svc.GenerateGuide(context.Background(), uuid.New(), GenerateInput{Topic: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestUpdateAndDeleteGuide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writer.draft = &llm.GuideDraft{Title: "Outdoor Fun"}
	g, err := f.svc.GenerateGuide(ctx, f.owner.ID, GenerateInput{Topic: "outdoor"})
	require.NoError(t, err)
	p := f.product(t, "Kite", "outdoor", 4, 10)

	published := models.GuideStatusPublished
	g, err = f.svc.UpdateGuide(ctx, g.Slug, GuideUpdate{Status: &published, MetaTitle: strp("Outdoor"), ProductIDs: []uuid.UUID{p.ID}})
	require.NoError(t, err)
	require.NotNil(t, g.PublishedAt)
	first := *g.PublishedAt
	require.Len(t, g.Products, 1)

	g, err = f.svc.UpdateGuide(ctx, g.Slug, GuideUpdate{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, first, *g.PublishedAt)

	public, err := f.svc.GetGuide(ctx, g.Slug, false)
	require.NoError(t, err)
	assert.Equal(t, "Outdoor", *public.MetaTitle)

	bogus := models.GuideStatus("live")
	_, err = f.svc.UpdateGuide(ctx, g.Slug, GuideUpdate{Status: &bogus})
	assertValidation(t, err, "status")

	require.NoError(t, f.svc.DeleteGuide(ctx, g.Slug, true))
	_, err = f.svc.GetGuide(ctx, g.Slug, false)
	assert.ErrorIs(t, err, ErrNotFound)
	archived, err := f.svc.GetGuide(ctx, g.Slug, true)
	require.NoError(t, err)
	assert.Equal(t, models.GuideStatusArchived, archived.Status)

	require.NoError(t, f.svc.DeleteGuide(ctx, g.Slug, false))
	assert.ErrorIs(t, f.svc.DeleteGuide(ctx, g.Slug, false), ErrNotFound)
}

func TestCreateProductFromURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.scraper.meta[truckURL] = scraperMeta{Title: strp("LEGO Fire Truck"), ASIN: strp("B0BBSB69YX")}.build()

	p, err := f.svc.CreateProductFromURL(ctx, ProductInput{URL: truckURL, Category: strp("toys"), AgeMin: intp(4), AgeMax: intp(8)})
	require.NoError(t, err)
	assert.Equal(t, "LEGO Fire Truck", p.Title)
	assert.Equal(t, "https://www.amazon.com/dp/B0BBSB69YX?tag=giddy-20", *p.AffiliateURL)

	_, err = f.svc.CreateProductFromURL(ctx, ProductInput{URL: "https://example.com/blank"})
	assertValidation(t, err, "title")

	named, err := f.svc.CreateProductFromURL(ctx, ProductInput{URL: "https://example.com/blank", Title: strp("Mystery Box")})
	require.NoError(t, err)
	assert.Nil(t, named.AffiliateURL)

	_, err = f.svc.CreateProductFromURL(ctx, ProductInput{URL: truckURL, AgeMin: intp(9), AgeMax: intp(3)})
	assertValidation(t, err, "age_min")

	toys := "toys"
	list, err := f.svc.ListProducts(ctx, repository.ProductFilters{Category: &toys, Age: intp(5)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}

func TestTrendingFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all := f.svc.TrendingGifts(ctx, repository.TrendingFilters{Limit: 100})
	assert.Len(t, all, len(fallbackGifts))
	assert.Contains(t, all[0].AffiliateURL, "tag=giddy-20")

	again := f.svc.TrendingGifts(ctx, repository.TrendingFilters{})
	assert.Equal(t, all[0].ID, again[0].ID)

	age := "3-5"
	young := f.svc.TrendingGifts(ctx, repository.TrendingFilters{AgeRange: &age, Limit: 2})
	require.Len(t, young, 2)
	for _, g := range young {
		assert.Equal(t, "3-5", g.AgeRange)
	}

	g, err := f.svc.CreateTrendingGift(ctx, TrendingInput{
		Title:        strp("Scooter"),
		AffiliateURL: strp("https://www.target.com/p/scooter"),
		AgeRange:     strp("6-8"),
		Category:     strp("outdoor"),
		Rank:         intp(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "target", g.Retailer)

	fromDB := f.svc.TrendingGifts(ctx, repository.TrendingFilters{})
	require.Len(t, fromDB, 1)
	assert.Equal(t, "Scooter", fromDB[0].Title)

	updated, err := f.svc.UpdateTrendingGift(ctx, TrendingInput{ID: g.ID, Price: ptrFloat(59)})
	require.NoError(t, err)
	assert.Equal(t, 59.0, *updated.Price)
	assert.Equal(t, "Scooter", updated.Title)

	_, err = f.svc.CreateTrendingGift(ctx, TrendingInput{Title: strp("x")})
	assertValidation(t, err, "required")
	_, err = f.svc.UpdateTrendingGift(ctx, TrendingInput{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.UpdateTrendingGift(ctx, TrendingInput{ID: g.ID, Title: strp(" ")})
	assertValidation(t, err, "title")
}

func TestTrackClick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.TrackClick(ctx, ClickInput{URL: truckURL, Source: "registry"}))
	clicks := f.store.Clicks()
	require.Len(t, clicks, 1)
	assert.Equal(t, "amazon", clicks[0].Retailer)
	assert.Equal(t, "registry", clicks[0].Source)

	assertValidation(t, f.svc.TrackClick(ctx, ClickInput{}), "url")

	noStore := New(Deps{Scraper: &fakeScraper{}})
	assert.NoError(t, noStore.TrackClick(ctx, ClickInput{URL: truckURL}))
}

func TestRecordCommission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guide := &models.CreatorProfile{Username: "curator", GuideEnabled: true, GuideTier: "influencer"}
	f.store.PutProfile(guide)

	c, err := f.svc.RecordCommission(ctx, "curator", 10)
	require.NoError(t, err)
	assert.Equal(t, earnings.TierInfluencer, c.Tier)
	assert.Equal(t, 7.0, c.Split.GuideShare)
	assert.Equal(t, 3.0, c.Split.PlatformShare)

	p, err := f.svc.Profile(ctx, guide.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, p.PendingEarnings)
	assert.Equal(t, 7.0, p.TotalEarnings)

	_, err = f.svc.RecordCommission(ctx, "parent", 10)
	assertValidation(t, err, "not a guide")
	_, err = f.svc.RecordCommission(ctx, "curator", 0)
	assertValidation(t, err, "commission")
	_, err = f.svc.RecordCommission(ctx, "ghost", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTelegramLinking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.svc.CreateTelegramLinkCode(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, code, linkCodeLength)

	p, err := f.svc.LinkTelegramChat(ctx, code, 4242)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, p.ID)

	_, err = f.svc.LinkTelegramChat(ctx, code, 4242)
	assert.ErrorIs(t, err, ErrNotFound)

	linked, err := f.svc.TelegramProfile(ctx, 4242)
	require.NoError(t, err)
	assert.Equal(t, "parent", linked.Username)

	require.NoError(t, f.svc.UnlinkTelegramChat(ctx, 4242))
	_, err = f.svc.TelegramProfile(ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.CreateTelegramLinkCode(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakeUploader struct {
	err    error
	folder string
}

func (f *fakeUploader) UploadImage(_ context.Context, folder string, r io.Reader) (string, error) {
	f.folder = folder
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, r)
	return "https://cdn.example.com/" + folder + "/x.png", nil
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	_, err := New(Deps{}).UploadImage(ctx, owner, bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrNotConfigured)

	up := &fakeUploader{}
	url, err := New(Deps{Uploader: up}).UploadImage(ctx, owner, bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	assert.Equal(t, "uploads/"+owner.String(), up.folder)
	assert.Contains(t, url, "https://cdn.example.com/")

	_, err = New(Deps{Uploader: &fakeUploader{err: storage.ErrTooLarge}}).UploadImage(ctx, owner, bytes.NewReader(nil))
	assertValidation(t, err, "5MB")
	_, err = New(Deps{Uploader: &fakeUploader{err: storage.ErrNotImage}}).UploadImage(ctx, owner, bytes.NewReader(nil))
	assertValidation(t, err, "image")
}
