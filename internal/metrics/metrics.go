package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa las métricas Prometheus del servicio.
type Metrics struct {
	Registry *prometheus.Registry

	RequestDuration  *prometheus.HistogramVec
	OTPIssued        prometheus.Counter
	OTPVerifications *prometheus.CounterVec
	PasswordResets   prometheus.Counter
	RatingsAdded     prometheus.Counter
	BookingsCreated  prometheus.Counter
}

func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		Registry: registry,
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		OTPIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_issued_total",
			Help:      "OTP codes generated and stored.",
		}),
		OTPVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "OTP verification attempts by result.",
		}, []string{"result"}),
		PasswordResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_resets_total",
			Help:      "Passwords changed through a reset session.",
		}),
		RatingsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_added_total",
			Help:      "Ratings aggregated into provider records.",
		}),
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings created.",
		}),
	}
	registry.MustRegister(
		m.RequestDuration,
		m.OTPIssued,
		m.OTPVerifications,
		m.PasswordResets,
		m.RatingsAdded,
		m.BookingsCreated,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// NewNop devuelve métricas registradas en un registry descartable, útil en tests.
func NewNop() *Metrics {
	return New("test")
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
