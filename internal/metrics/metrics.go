// Package metrics exposes Prometheus collectors for the crawl batch and the catalog API.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlerFetchesTotal           *prometheus.CounterVec
	crawlerPagesTotal             *prometheus.CounterVec
	crawlerNutritionItemsTotal    *prometheus.CounterVec
	crawlerBatchesTotal           *prometheus.CounterVec
	crawlerBatchDurationSeconds   prometheus.Histogram
	crawlerRateLimitDelaysSeconds *prometheus.HistogramVec
	catalogProducts               prometheus.Gauge
	httpRequestsTotal             *prometheus.CounterVec
	httpRequestDurationSeconds    *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		crawlerFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_fetches_total",
				Help: "Static listing fetches, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		crawlerPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_pages_total",
				Help: "Product pages scraped, labeled by outcome (complete, partial, failed).",
			},
			[]string{"outcome"},
		)

		crawlerNutritionItemsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_nutrition_items_total",
				Help: "Nutrition entries seen on product pages, labeled by result.",
			},
			[]string{"result"},
		)

		crawlerBatchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_batches_total",
				Help: "Scraping batches run, labeled by status.",
			},
			[]string{"status"},
		)

		crawlerBatchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_batch_duration_seconds",
				Help:    "Wall time of a scraping batch.",
				Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 3600},
			},
		)

		crawlerRateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)

		catalogProducts = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_products",
				Help: "Number of products in the loaded catalog.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch counts a static listing fetch.
func ObserveFetch(site string, status string) {
	Init()
	crawlerFetchesTotal.WithLabelValues(SanitizeSite(site), status).Inc()
}

// ObservePage counts a scraped product page by outcome.
func ObservePage(outcome string) {
	Init()
	crawlerPagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveNutritionItem counts one nutrition entry by result ("ok" or a skip reason).
func ObserveNutritionItem(result string) {
	Init()
	crawlerNutritionItemsTotal.WithLabelValues(result).Inc()
}

// ObserveBatch records the outcome and duration of a scraping batch.
func ObserveBatch(status string, duration time.Duration) {
	Init()
	crawlerBatchesTotal.WithLabelValues(status).Inc()
	crawlerBatchDurationSeconds.Observe(duration.Seconds())
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	Init()
	crawlerRateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// SetCatalogProducts publishes the size of the loaded catalog.
func SetCatalogProducts(n int) {
	Init()
	catalogProducts.Set(float64(n))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
