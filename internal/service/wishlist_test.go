package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/giddylist/internal/models"
	"github.com/Kerhoff/giddylist/internal/scraper"
)

const truckURL = "https://www.amazon.com/LEGO-Fire-Truck/dp/B0BBSB69YX?ref=xyz"

func TestKidLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateKid(ctx, f.owner.ID, KidInput{})
	assertValidation(t, err, "name")
	_, err = f.svc.CreateKid(ctx, f.owner.ID, KidInput{Name: strp("Mia"), Birthdate: strp("03/02/2019")})
	assertValidation(t, err, "birthdate")

	kid, err := f.svc.CreateKid(ctx, f.owner.ID, KidInput{
		Name:        strp("Mia"),
		Birthdate:   strp("2019-03-02"),
		Sizes:       &models.KidSizes{Shirt: strp("5T")},
		Preferences: &models.KidPreferences{Interests: []string{"dinosaurs"}},
	})
	require.NoError(t, err)
	require.NotNil(t, kid.Birthdate)
	assert.Equal(t, 2019, kid.Birthdate.Year())
	assert.Equal(t, "5T", *kid.Sizes.Shirt)

	updated, err := f.svc.UpdateKid(ctx, f.owner.ID, kid.ID, KidInput{Name: strp("Mia Rose")})
	require.NoError(t, err)
	assert.Equal(t, "Mia Rose", updated.Name)
	require.NotNil(t, updated.Birthdate)

	_, err = f.svc.UpdateKid(ctx, uuid.New(), kid.ID, KidInput{Name: strp("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	kids, err := f.svc.ListKids(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, kids, 1)

	f.item(t, kid.ID, "https://example.com/a", 1)
	require.NoError(t, f.svc.DeleteKid(ctx, f.owner.ID, kid.ID))
	_, err = f.svc.KidWishlist(ctx, f.owner.ID, kid.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	kids, err = f.svc.ListKids(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, kids)
	assert.Empty(t, kids)
}

func TestAddWishlistItemScrapesAndTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.scraper.meta[truckURL] = scraperMeta{Title: strp("LEGO Fire Truck"), Price: ptrFloat(29.99), ASIN: strp("B0BBSB69YX")}.build()
	kid := f.kid(t)

	item, err := f.svc.AddWishlistItem(ctx, f.owner.ID, AddItemInput{KidID: kid.ID, URL: truckURL, Notes: strp("red one")})
	require.NoError(t, err)

	assert.Equal(t, "LEGO Fire Truck", *item.Title)
	assert.Equal(t, 29.99, *item.Price)
	assert.Equal(t, "amazon", item.Retailer)
	assert.Equal(t, "B0BBSB69YX", *item.PlatformID)
	require.NotNil(t, item.AffiliateURL)
	assert.Equal(t, "https://www.amazon.com/dp/B0BBSB69YX?tag=giddy-20", *item.AffiliateURL)
	assert.Equal(t, models.ItemStatusAvailable, item.Status)
	assert.Equal(t, 1, item.Quantity)

	list, err := f.svc.KidWishlist(ctx, f.owner.ID, kid.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestAddWishlistItemRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kid := f.kid(t)

	for _, u := range []string{"", "ftp://example.com/x", "not a url", "https://"} {
		_, err := f.svc.AddWishlistItem(ctx, f.owner.ID, AddItemInput{KidID: kid.ID, URL: u})
		assertValidation(t, err, "url")
	}
	_, err := f.svc.AddWishlistItem(ctx, f.owner.ID, AddItemInput{KidID: uuid.New(), URL: "https://example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.scraper.calls)
}

func TestRefreshKeepsKnownFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.scraper.meta[truckURL] = scraperMeta{Title: strp("LEGO Fire Truck"), Price: ptrFloat(29.99), ASIN: strp("B0BBSB69YX")}.build()
	kid := f.kid(t)
	item := f.item(t, kid.ID, truckURL, 1)

	f.scraper.meta[truckURL] = scraperMeta{Price: ptrFloat(24.99), ASIN: strp("B0BBSB69YX")}.build()
	refreshed, err := f.svc.RefreshWishlistItem(ctx, f.owner.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "LEGO Fire Truck", *refreshed.Title)
	assert.Equal(t, 24.99, *refreshed.Price)

	_, err = f.svc.RefreshWishlistItem(ctx, uuid.New(), item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.svc.DeleteWishlistItem(ctx, f.owner.ID, item.ID))
	assert.ErrorIs(t, f.svc.DeleteWishlistItem(ctx, f.owner.ID, item.ID), ErrNotFound)
}

func TestScrapeBatchCaps(t *testing.T) {
	f := newFixture(t)
	var urls []string
	for i := 0; i < 14; i++ {
		urls = append(urls, fmt.Sprintf("https://www.walmart.com/ip/%d", i))
	}
	urls = append(urls, "  ")

	results, err := f.svc.ScrapeBatch(context.Background(), urls)
	require.NoError(t, err)
	assert.Len(t, results, scraper.MaxBatchURLs)
	assert.Equal(t, scraper.RetailerWalmart, results[0].Retailer)
	assert.Nil(t, results[0].AffiliateURL)

	_, err = f.svc.ScrapeBatch(context.Background(), []string{" "})
	assertValidation(t, err, "urls")

	_, err = f.svc.ScrapeBatch(context.Background(), []string{"https://www.target.com/p/1", "file:///etc/passwd"})
	assertValidation(t, err, "http or https")
}

func TestScrapeURLRejectsNonWebLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, raw := range []string{"", "not a url", "file:///etc/passwd", "gopher://169.254.169.254/", "http://"} {
		_, err := f.svc.ScrapeURL(ctx, raw)
		require.Error(t, err, raw)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, raw)
	}
	assert.Empty(t, f.scraper.calls)

	res, err := f.svc.ScrapeURL(ctx, "  https://www.walmart.com/ip/1 ")
	require.NoError(t, err)
	assert.Equal(t, "https://www.walmart.com/ip/1", res.OriginalURL)
}
