// Package metrics exposes Prometheus metrics for the ldapfixture server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks server-level Prometheus metrics.
//
// All metrics use the ldapfixture_ prefix. A nil *Metrics is valid and
// records nothing, so components can be built without a registry.
type Metrics struct {
	// ConnectionsActive tracks currently open client connections
	ConnectionsActive prometheus.Gauge

	// ConnectionsTotal counts accepted client connections
	ConnectionsTotal prometheus.Counter

	// RequestsTotal counts dispatched requests by kind and result code
	RequestsTotal *prometheus.CounterVec

	// RequestDuration tracks dispatch latency by request kind
	RequestDuration *prometheus.HistogramVec

	// DecodeErrorsTotal counts connections closed on malformed input
	DecodeErrorsTotal prometheus.Counter

	// BytesReceivedTotal counts bytes read from clients
	BytesReceivedTotal prometheus.Counter
}

// NewMetrics creates the server metrics and registers them with reg.
// Panics if registration fails (expected during initialization only).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ldapfixture_connections_active",
				Help: "Current number of open client connections",
			},
		),
		ConnectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ldapfixture_connections_total",
				Help: "Total client connections accepted",
			},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ldapfixture_requests_total",
				Help: "Total requests by kind and result",
			},
			[]string{"kind", "result"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ldapfixture_request_duration_seconds",
				Help:    "Request dispatch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		DecodeErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ldapfixture_decode_errors_total",
				Help: "Total connections closed because of malformed input",
			},
		),
		BytesReceivedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ldapfixture_bytes_received_total",
				Help: "Total bytes received from clients",
			},
		),
	}

	reg.MustRegister(
		m.ConnectionsActive,
		m.ConnectionsTotal,
		m.RequestsTotal,
		m.RequestDuration,
		m.DecodeErrorsTotal,
		m.BytesReceivedTotal,
	)

	return m
}

// RecordRequest records a dispatched request.
//
// Parameters:
//   - kind: Request kind ("bind", "search", "unbind", "unknown")
//   - result: Result code name, or "closed" when no response was sent
//   - durationSeconds: Dispatch duration in seconds
func (m *Metrics) RecordRequest(kind, result string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(kind, result).Inc()
	m.RequestDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// ConnectionOpened records an accepted connection.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.ConnectionsTotal.Inc()
	m.ConnectionsActive.Inc()
}

// ConnectionClosed records a closed connection.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Dec()
}

// RecordDecodeError records a connection dropped on malformed input.
func (m *Metrics) RecordDecodeError() {
	if m == nil {
		return
	}
	m.DecodeErrorsTotal.Inc()
}

// RecordBytesReceived adds n to the received byte count.
func (m *Metrics) RecordBytesReceived(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesReceivedTotal.Add(float64(n))
}
