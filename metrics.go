package blobgate

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors on a private
// registry, so embedding applications keep control of their own default
// registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal *prometheus.CounterVec
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	AuthzDenials  prometheus.Counter
	FetchDuration prometheus.Histogram
}

// NewMetrics creates and registers the gateway collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blobgate",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Requests served, by method and status code",
			},
			[]string{"method", "status"},
		),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blobgate",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Requests answered from the edge cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blobgate",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Requests that went to storage",
		}),
		AuthzDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blobgate",
			Subsystem: "authz",
			Name:      "denials_total",
			Help:      "Ownership checks that denied access",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "blobgate",
			Subsystem: "storage",
			Name:      "fetch_duration_seconds",
			Help:      "Storage fetch latency",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.RequestsTotal,
		m.CacheHits,
		m.CacheMisses,
		m.AuthzDenials,
		m.FetchDuration,
	)
	return m
}

// Handler exposes the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
