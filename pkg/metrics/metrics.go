package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Requests sent to the catalog backend",
		},
		[]string{"method", "status"}, // status: код ответа или "error"
	)
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "Catalog backend request latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method"},
	)
	APICoalesced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_api_coalesced_total",
			Help: "GET requests served by an in-flight request for the same signature",
		},
	)
	APIRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_retries_total",
			Help: "Repeated GET attempts after a temporary backend failure",
		},
		[]string{"method"},
	)
)

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|evicted|expired|invalidated
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of items currently in cache",
		},
	)
)

var (
	CartItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_items",
			Help: "Total quantity of items in the cart",
		},
	)
	Checkouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Checkout attempts by result",
		},
		[]string{"result"}, // ok|invalid|failed
	)
)

var registerOnce sync.Once

// MustRegister регистрирует метрики в глобальном реестре; повторный вызов безопасен.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			APIRequests, APIRequestDuration, APICoalesced, APIRetries,
			CacheOps, CacheSize,
			CartItems, Checkouts,
		)
	})
}
