package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	CarrierErrors       *prometheus.CounterVec
	ReconcilePasses     prometheus.Counter
	TrackingTransitions *prometheus.CounterVec
	Notifications       *prometheus.CounterVec
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipconn_requests_total",
				Help: "Total number of requests by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shipconn_request_duration_seconds",
				Help:    "Request duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		CarrierErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipconn_carrier_errors_total",
				Help: "Total carrier API errors by carrier and error type",
			},
			[]string{"carrier", "error_type"},
		),
		ReconcilePasses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shipconn_reconcile_passes_total",
				Help: "Total tracking reconciliation passes",
			},
		),
		TrackingTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipconn_tracking_transitions_total",
				Help: "Total shipment status transitions by target status",
			},
			[]string{"status"},
		),
		Notifications: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipconn_notifications_total",
				Help: "Total marketplace notifications by partner and outcome",
			},
			[]string{"partner", "outcome"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, errorType string) {
	m.CarrierErrors.WithLabelValues(carrier, errorType).Inc()
}

// RecordTransition records a shipment status transition.
func (m *Metrics) RecordTransition(status string) {
	m.TrackingTransitions.WithLabelValues(status).Inc()
}

// RecordNotification records a marketplace notification attempt.
func (m *Metrics) RecordNotification(partner, outcome string) {
	m.Notifications.WithLabelValues(partner, outcome).Inc()
}
