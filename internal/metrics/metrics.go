// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all PortafolioAI metrics. A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	PortfoliosGenerated *prometheus.CounterVec
	QuoteCache          *prometheus.CounterVec
}

// NewRegistry creates the collectors on a private registry with Go and process collectors attached.
func NewRegistry() *Registry {
	m := &Registry{
		reg: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portafolio_http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portafolio_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "route"},
		),

		PortfoliosGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portafolio_portfolios_generated_total",
				Help: "Portfolios generated by risk tier",
			},
			[]string{"tier"},
		),

		QuoteCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portafolio_market_quote_cache_total",
				Help: "Market quote cache lookups by result",
			},
			[]string{"result"},
		),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.PortfoliosGenerated,
		m.QuoteCache,
	)

	return m
}

// ObserveRequest records one served HTTP request.
func (m *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// PortfolioGenerated counts a generated portfolio.
func (m *Registry) PortfolioGenerated(tier string) {
	if m == nil {
		return
	}
	m.PortfoliosGenerated.WithLabelValues(tier).Inc()
}

// CacheResult counts a quote cache lookup: "hit", "miss" or "error".
func (m *Registry) CacheResult(result string) {
	if m == nil {
		return
	}
	m.QuoteCache.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Registry) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (m *Registry) Gatherer() prometheus.Gatherer {
	return m.reg
}
