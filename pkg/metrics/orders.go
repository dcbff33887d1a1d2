package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle transitions and outbound sync calls to
// the inventory-management system.
type OrderMetrics struct {
	transitions  *prometheus.CounterVec
	syncAttempts *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Committed purchase order status transitions.",
	}, []string{"to_status"})
	syncAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ims_sync_attempts_total",
		Help: "Outbound IMS webhook attempts by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	syncDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ims_sync_duration_seconds",
		Help:    "Duration of outbound IMS webhook calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	reg.MustRegister(transitions, syncAttempts, syncDuration)
	return &OrderMetrics{
		transitions:  transitions,
		syncAttempts: syncAttempts,
		syncDuration: syncDuration,
	}
}

// IncTransition increments the transition counter for the committed status.
func (m *OrderMetrics) IncTransition(toStatus string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(toStatus)).Inc()
}

// IncSyncAttempt increments the sync attempt counter for the endpoint/outcome pair.
func (m *OrderMetrics) IncSyncAttempt(endpoint, outcome string) {
	if m == nil || m.syncAttempts == nil {
		return
	}
	m.syncAttempts.WithLabelValues(normalizeLabel(endpoint), normalizeLabel(outcome)).Inc()
}

// ObserveSyncDuration records the duration of an IMS call.
func (m *OrderMetrics) ObserveSyncDuration(endpoint string, duration time.Duration) {
	if m == nil || m.syncDuration == nil {
		return
	}
	m.syncDuration.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
