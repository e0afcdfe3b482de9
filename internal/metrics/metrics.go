package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mail_composer"

// Metrics holds the composer's Prometheus collectors and implements core.Recorder
type Metrics struct {
	generations  *prometheus.CounterVec
	degraded     *prometheus.CounterVec
	deliveries   *prometheus.CounterVec
	recipients   prometheus.Counter
	httpDuration *prometheus.HistogramVec
	gatherer     prometheus.Gatherer
}

// New registers the collectors on reg and returns them
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Total number of draft generations by outcome",
			},
			[]string{"outcome"},
		),
		degraded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "draft_fallbacks_total",
				Help:      "Total number of drafts where a field fell back to its default",
			},
			[]string{"field"},
		),
		deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Total number of send attempts by outcome",
			},
			[]string{"outcome"},
		),
		recipients: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delivered_recipients_total",
				Help:      "Total number of recipients on successfully sent messages",
			},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~32s
			},
			[]string{"method", "route", "status"},
		),
		gatherer: reg,
	}
}

// GenerationFinished counts a finished generation
func (m *Metrics) GenerationFinished(outcome string) {
	m.generations.WithLabelValues(outcome).Inc()
}

// DraftDegraded counts a draft field that fell back to its default
func (m *Metrics) DraftDegraded(field string) {
	m.degraded.WithLabelValues(field).Inc()
}

// DeliveryFinished counts a send attempt. Recipients are only counted on success.
func (m *Metrics) DeliveryFinished(outcome string, recipients int) {
	m.deliveries.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		m.recipients.Add(float64(recipients))
	}
}

// ObserveHTTPRequest records the duration of an HTTP request
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler serves the registered collectors in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
