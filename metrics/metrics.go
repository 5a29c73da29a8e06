package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cartapi"

// Placement outcomes.
const (
	Placed     = "placed"
	EmptyCart  = "empty_cart"
	TxnFailure = "failed"
)

type Metrics struct {
	Requests   *prometheus.CounterVec
	LatencyMS  *prometheus.HistogramVec
	Placements *prometheus.CounterVec
	CartCache  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry so several instances can
// live in one process (tests build one per server).
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),

		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),

		Placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_placements_total",
			Help:      "Order placement attempts by outcome.",
		}, []string{"outcome"}),

		CartCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_cache_lookups_total",
			Help:      "Cart projection cache lookups by result.",
		}, []string{"result"}),

		gatherer: reg,
	}

	reg.MustRegister(
		m.Requests,
		m.LatencyMS,
		m.Placements,
		m.CartCache,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
