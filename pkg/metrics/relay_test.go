package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRelayMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewRelayMetrics(reg)

	metrics.IncPublished("order_completed")
	metrics.IncPublished("order_completed")
	metrics.IncFailed("order_cancelled")
	metrics.ObserveBatchSize(2)
	metrics.ObservePublishLag(time.Now().Add(-time.Second))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "outbox_events_published", "event_type", "order_completed"); err != nil {
		t.Fatalf("fetch published: %v", err)
	} else if got != 2 {
		t.Fatalf("expected published=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "outbox_events_failed", "event_type", "order_cancelled"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}
}

func TestRelayMetricsNilReceiverSafe(t *testing.T) {
	var metrics *RelayMetrics
	metrics.IncPublished("order_completed")
	metrics.IncFailed("order_completed")
	metrics.ObserveBatchSize(1)
	metrics.ObservePublishLag(time.Now())
}
