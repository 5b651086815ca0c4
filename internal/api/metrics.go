package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	SuccessfulRequests *prometheus.CounterVec
	BadRequests        *prometheus.CounterVec
	FailedRequests     *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	Registrations      prometheus.Counter
	Logins             *prometheus.CounterVec
	FavoritesAdded     prometheus.Counter
	FavoritesRemoved   prometheus.Counter
	ProviderRequests   *prometheus.CounterVec
	ProviderLatency    *prometheus.HistogramVec
}

// InitMetrics registers every collector on a fresh registry.
func InitMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_successful_requests_total",
				Help: "Total number of successful (2xx) HTTP requests",
			},
			[]string{"path"},
		),
		BadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_bad_requests_total",
				Help: "Total number of unsuccessful (4xx) HTTP requests",
			},
			[]string{"path"},
		),
		FailedRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_failed_requests_total",
				Help: "Total number of failed (5xx) HTTP requests",
			},
			[]string{"path"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipebox_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_registrations_total",
			Help: "Total number of registered accounts",
		}),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		FavoritesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_favorites_added_total",
			Help: "Total number of add-favorite requests",
		}),
		FavoritesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_favorites_removed_total",
			Help: "Total number of remove-favorite requests",
		}),
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_provider_requests_total",
				Help: "Recipe API calls by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipebox_provider_request_duration_seconds",
				Help:    "Recipe API call latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SuccessfulRequests,
		m.BadRequests,
		m.FailedRequests,
		m.RequestDuration,
		m.Registrations,
		m.Logins,
		m.FavoritesAdded,
		m.FavoritesRemoved,
		m.ProviderRequests,
		m.ProviderLatency,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveProvider matches spoonacular.Observer.
func (m *Metrics) ObserveProvider(endpoint, outcome string, took time.Duration) {
	m.ProviderRequests.WithLabelValues(endpoint, outcome).Inc()
	m.ProviderLatency.WithLabelValues(endpoint).Observe(took.Seconds())
}

func (m *Metrics) observeRequest(path, method string, status int, took time.Duration) {
	m.RequestDuration.WithLabelValues(path, method).Observe(took.Seconds())
	switch {
	case status >= 500:
		m.FailedRequests.WithLabelValues(path).Inc()
	case status >= 400:
		m.BadRequests.WithLabelValues(path).Inc()
	default:
		m.SuccessfulRequests.WithLabelValues(path).Inc()
	}
}

func (m *Metrics) observeLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}
