package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes Prometheus observability primitives for the client bundle.
type Metrics struct {
	registry           *prometheus.Registry
	submissionDuration *prometheus.HistogramVec
	submissionInFlight prometheus.Gauge
	notificationEvents *prometheus.CounterVec
	bootstraps         *prometheus.CounterVec
}

// NewMetrics registers and returns Prometheus metrics on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	submissionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "telematch_signup_submission_duration_seconds",
		Help:    "Time spent in the submitting state by outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	submissionInFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "telematch_signup_submission_in_flight",
		Help: "1 while a registration call is outstanding.",
	})

	notificationEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telematch_notification_events_total",
		Help: "Notification platform events delivered to handlers.",
	}, []string{"event_type"})

	bootstraps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telematch_notification_bootstrap_total",
		Help: "Notification bootstrap runs by permission result.",
	}, []string{"permission"})

	registry.MustRegister(
		submissionDuration,
		submissionInFlight,
		notificationEvents,
		bootstraps,
	)

	return &Metrics{
		registry:           registry,
		submissionDuration: submissionDuration,
		submissionInFlight: submissionInFlight,
		notificationEvents: notificationEvents,
		bootstraps:         bootstraps,
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SubmissionStarted marks a registration call as outstanding.
func (m *Metrics) SubmissionStarted() {
	if m == nil {
		return
	}
	m.submissionInFlight.Set(1)
}

// SubmissionFinished records the time spent submitting.
func (m *Metrics) SubmissionFinished(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.submissionInFlight.Set(0)
	m.submissionDuration.WithLabelValues(sanitizeLabel(outcome)).Observe(duration.Seconds())
}

// ObserveNotificationEvent counts a delivered notification event.
func (m *Metrics) ObserveNotificationEvent(eventType string) {
	if m == nil {
		return
	}
	m.notificationEvents.WithLabelValues(sanitizeLabel(eventType)).Inc()
}

// ObserveBootstrap counts a bootstrap run.
func (m *Metrics) ObserveBootstrap(permission string) {
	if m == nil {
		return
	}
	m.bootstraps.WithLabelValues(sanitizeLabel(permission)).Inc()
}

func sanitizeLabel(val string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return "unknown"
	}
	return val
}
