package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RelayMetrics records publish outcomes for the outbox relay.
type RelayMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
	batchSize prometheus.Histogram
	lag       prometheus.Histogram
}

// NewRelayMetrics registers the relay metrics on the provided registerer.
func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	if reg == nil {
		return &RelayMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published",
		Help: "Outbox events published to the broker.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed",
		Help: "Outbox publish attempts that failed.",
	}, []string{"event_type"})
	batchSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_size",
		Help:    "Rows picked up per relay poll.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	})
	lag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_publish_lag_seconds",
		Help:    "Time between outbox insert and successful publish.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	reg.MustRegister(published, failed, batchSize, lag)
	return &RelayMetrics{
		published: published,
		failed:    failed,
		batchSize: batchSize,
		lag:       lag,
	}
}

// IncPublished increments the published counter for the event type.
func (r *RelayMetrics) IncPublished(eventType string) {
	if r == nil || r.published == nil {
		return
	}
	r.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failure counter for the event type.
func (r *RelayMetrics) IncFailed(eventType string) {
	if r == nil || r.failed == nil {
		return
	}
	r.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// ObserveBatchSize records how many rows a poll returned.
func (r *RelayMetrics) ObserveBatchSize(n int) {
	if r == nil || r.batchSize == nil {
		return
	}
	r.batchSize.Observe(float64(n))
}

// ObservePublishLag records insert-to-publish latency.
func (r *RelayMetrics) ObservePublishLag(insertedAt time.Time) {
	if r == nil || r.lag == nil || insertedAt.IsZero() {
		return
	}
	r.lag.Observe(time.Since(insertedAt).Seconds())
}
