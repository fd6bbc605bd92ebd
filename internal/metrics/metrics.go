// Package metrics defines the Prometheus collectors of the server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	telemetryIngested *prometheus.CounterVec
	eventsRecorded    *prometheus.CounterVec
	alertDeliveries   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "motofleet",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "motofleet",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		telemetryIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "motofleet",
			Name:      "telemetry_messages_total",
			Help:      "MQTT telemetry messages by type and outcome.",
		}, []string{"type", "outcome"}),
		eventsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "motofleet",
			Name:      "events_recorded_total",
			Help:      "Events stored by type.",
		}, []string{"type"}),
		alertDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "motofleet",
			Name:      "alert_deliveries_total",
			Help:      "Alert deliveries by channel and result.",
		}, []string{"channel", "result"}),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.telemetryIngested, m.eventsRecorded, m.alertDeliveries)
	return m
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// TelemetryIngested counts an MQTT message; outcome is "stored", "invalid" or "failed".
func (m *Metrics) TelemetryIngested(telemetryType, outcome string) {
	if m == nil {
		return
	}
	m.telemetryIngested.WithLabelValues(telemetryType, outcome).Inc()
}

// EventRecorded counts a stored event.
func (m *Metrics) EventRecorded(eventType string) {
	if m == nil {
		return
	}
	m.eventsRecorded.WithLabelValues(eventType).Inc()
}

// AlertDelivered counts a delivery attempt.
func (m *Metrics) AlertDelivered(channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.alertDeliveries.WithLabelValues(channel, result).Inc()
}
