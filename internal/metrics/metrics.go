// Package metrics registers the Prometheus collectors for the poller,
// adapters, cache, and HTTP surface (C13). Grounded on the collector
// registration style of the higher-frequency trading example in the pack
// (internal/metrics/metrics.go there registers a comparable domain-scoped
// set behind a small wrapper struct).
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors bundles every metric this service exposes so callers depend on
// one struct instead of package-level globals.
type Collectors struct {
	registry *prometheus.Registry

	pollPassDuration    prometheus.Histogram
	pollSymbolErrors    *prometheus.CounterVec
	cacheSize           prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	optionFetchDuration *prometheus.HistogramVec
}

func New() *Collectors {
	reg := prometheus.NewRegistry()

	c := &Collectors{
		registry: reg,
		pollPassDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "marketdata_poll_pass_duration_seconds",
			Help:    "Duration of one Poller pass across all subscribed symbols.",
			Buckets: prometheus.DefBuckets,
		}),
		pollSymbolErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "marketdata_poll_symbol_errors_total",
			Help: "Count of per-symbol poll failures by error taxonomy kind.",
		}, []string{"kind"}),
		cacheSize: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "marketdata_cache_size",
			Help: "Number of distinct symbols currently cached.",
		}),
		httpRequestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "marketdata_http_requests_total",
			Help: "Count of HTTP requests by path and status code.",
		}, []string{"path", "status"}),
		optionFetchDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketdata_option_fetch_duration_seconds",
			Help:    "Duration of an option-chain fetch-and-persist operation by index.",
			Buckets: prometheus.DefBuckets,
		}, []string{"index"}),
	}
	return c
}

func (c *Collectors) PollPassDuration(seconds float64) { c.pollPassDuration.Observe(seconds) }

func (c *Collectors) PollSymbolError(kind string) { c.pollSymbolErrors.WithLabelValues(kind).Inc() }

func (c *Collectors) SetCacheSize(n int) { c.cacheSize.Set(float64(n)) }

func (c *Collectors) ObserveHTTPRequest(path string, status int) {
	c.httpRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

func (c *Collectors) ObserveOptionFetch(index string, seconds float64) {
	c.optionFetchDuration.WithLabelValues(index).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format; the
// caller mounts it on a path.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
