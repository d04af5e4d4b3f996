// Package metrics exposes Prometheus metrics for calls made to the store
// service and for checkout outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pcshop"

// Checkout outcomes recorded by ObserveCheckout.
const (
	OutcomeSubmitted    = "submitted"
	OutcomeFailed       = "failed"
	OutcomePriceChanged = "price_changed"
	OutcomeInvalid      = "invalid"
)

// Registry holds the storefront metrics on a private registry so that
// tests can create as many as they like.
type Registry struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamInFlight prometheus.Gauge
	checkouts        *prometheus.CounterVec
}

// New creates a registry with process and Go collectors registered.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Requests sent to the store service.",
			},
			[]string{"code", "method"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Latency of requests sent to the store service.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		upstreamInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "in_flight_requests",
			Help:      "Requests to the store service currently in flight.",
		}),
		checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkouts_total",
				Help:      "Checkout submissions by outcome and order source.",
			},
			[]string{"outcome", "source"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.upstreamRequests,
		r.upstreamDuration,
		r.upstreamInFlight,
		r.checkouts,
	)
	return r
}

// InstrumentRoundTripper wraps next so every upstream call is counted and timed.
// A nil registry returns next unchanged.
func (r *Registry) InstrumentRoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if r == nil {
		return next
	}
	return promhttp.InstrumentRoundTripperInFlight(r.upstreamInFlight,
		promhttp.InstrumentRoundTripperCounter(r.upstreamRequests,
			promhttp.InstrumentRoundTripperDuration(r.upstreamDuration, next),
		),
	)
}

// ObserveCheckout records a checkout submission. Safe on a nil registry.
func (r *Registry) ObserveCheckout(outcome, source string) {
	if r == nil {
		return
	}
	r.checkouts.WithLabelValues(outcome, source).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
