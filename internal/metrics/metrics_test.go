package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveScrape("amazon", "ok", 150*time.Millisecond)
	m.ObserveScrape("amazon", "ok", 90*time.Millisecond)
	m.ObserveScrape("walmart", "failed", time.Second)
	m.CountClick("amazon", "guide")
	m.CountClaim("reserve")
	m.CountGeneration(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Scrapes.WithLabelValues("amazon", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Scrapes.WithLabelValues("walmart", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AffiliateClicks.WithLabelValues("amazon", "guide")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Claims.WithLabelValues("reserve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("failed")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.CountClaim("purchase")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `giddylist_gift_claims_total{claim_type="purchase"} 1`)
}
