// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "giddylist"

// Metrics is a private registry with every collector the service exports.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	Scrapes         *prometheus.CounterVec
	ScrapeDuration  *prometheus.HistogramVec
	AffiliateClicks *prometheus.CounterVec
	Claims          *prometheus.CounterVec
	Generations     *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		Scrapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_total",
			Help:      "Product page scrapes by retailer and outcome.",
		}, []string{"retailer", "outcome"}),
		ScrapeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Product page fetch latency by retailer.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20},
		}, []string{"retailer"}),
		AffiliateClicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "affiliate_clicks_total",
			Help:      "Outbound affiliate link clicks by retailer and source.",
		}, []string{"retailer", "source"}),
		Claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gift_claims_total",
			Help:      "Registry gift claims by claim type.",
		}, []string{"claim_type"}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guide_generations_total",
			Help:      "LLM gift guide generations by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.Scrapes,
		m.ScrapeDuration,
		m.AffiliateClicks,
		m.Claims,
		m.Generations,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveScrape records one scrape and its fetch latency.
func (m *Metrics) ObserveScrape(retailer, outcome string, d time.Duration) {
	m.Scrapes.WithLabelValues(retailer, outcome).Inc()
	m.ScrapeDuration.WithLabelValues(retailer).Observe(d.Seconds())
}

func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	m.RequestDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
}

func (m *Metrics) CountClick(retailer, source string) {
	m.AffiliateClicks.WithLabelValues(retailer, source).Inc()
}

func (m *Metrics) CountClaim(claimType string) {
	m.Claims.WithLabelValues(claimType).Inc()
}

func (m *Metrics) CountGeneration(ok bool) {
	outcome := "failed"
	if ok {
		outcome = "ok"
	}
	m.Generations.WithLabelValues(outcome).Inc()
}
