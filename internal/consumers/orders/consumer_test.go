package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
	"github.com/angelmondragon/sagaflow-backend/pkg/outbox"
	"github.com/angelmondragon/sagaflow-backend/pkg/outbox/payloads"
)

type fakeIdempotency struct {
	check    func(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	deleteFn func(ctx context.Context, consumer string, eventID uuid.UUID) error
	deleted  int
}

func (f *fakeIdempotency) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	if f.check != nil {
		return f.check(ctx, consumer, eventID)
	}
	return false, nil
}

func (f *fakeIdempotency) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	f.deleted++
	if f.deleteFn != nil {
		return f.deleteFn(ctx, consumer, eventID)
	}
	return nil
}

func testConsumer(t *testing.T, manager idempotencyChecker) *Consumer {
	t.Helper()
	logg := logger.New(logger.Options{
		ServiceName: "orders-consumer-test",
		Level:       logger.ParseLevel("debug"),
		Output:      io.Discard,
	})
	// The subscription is only touched by Run, not process.
	return &Consumer{idempotency: manager, logg: logg}
}

func encodeEnvelope(t *testing.T, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return raw
}

func TestProcessAcksCompletedEvent(t *testing.T) {
	consumer := testConsumer(t, &fakeIdempotency{})

	data := encodeEnvelope(t, payloads.OrderCompletedEvent{
		OrderID:     uuid.New(),
		ProductID:   "WIDGET",
		Quantity:    2,
		Price:       decimal.NewFromFloat(50.00),
		Status:      enums.OrderStatusCompleted,
		CompletedAt: time.Now(),
	})
	if !consumer.process(context.Background(), string(enums.EventOrderCompleted), "m1", data) {
		t.Fatal("expected ack")
	}
}

func TestProcessAcksUnknownEventType(t *testing.T) {
	consumer := testConsumer(t, &fakeIdempotency{
		check: func(context.Context, string, uuid.UUID) (bool, error) {
			t.Fatal("idempotency should not be consulted for skipped events")
			return false, nil
		},
	})

	if !consumer.process(context.Background(), "inventory_adjusted", "m1", []byte("{}")) {
		t.Fatal("expected ack for unhandled event type")
	}
}

func TestProcessAcksMalformedEnvelope(t *testing.T) {
	consumer := testConsumer(t, &fakeIdempotency{})

	if !consumer.process(context.Background(), string(enums.EventOrderCompleted), "m1", []byte("not json")) {
		t.Fatal("malformed messages must be acked, redelivery cannot fix them")
	}
}

func TestProcessSkipsAlreadyProcessed(t *testing.T) {
	consumer := testConsumer(t, &fakeIdempotency{
		check: func(context.Context, string, uuid.UUID) (bool, error) {
			return true, nil
		},
	})

	data := encodeEnvelope(t, payloads.OrderCancelledEvent{
		OrderID:     uuid.New(),
		Status:      enums.OrderStatusCancelled,
		FailureCode: enums.FailurePayment,
	})
	if !consumer.process(context.Background(), string(enums.EventOrderCancelled), "m1", data) {
		t.Fatal("expected ack for duplicate event")
	}
}

func TestProcessNacksOnIdempotencyFailure(t *testing.T) {
	consumer := testConsumer(t, &fakeIdempotency{
		check: func(context.Context, string, uuid.UUID) (bool, error) {
			return false, errors.New("redis down")
		},
	})

	data := encodeEnvelope(t, payloads.OrderCompletedEvent{OrderID: uuid.New()})
	if consumer.process(context.Background(), string(enums.EventOrderCompleted), "m1", data) {
		t.Fatal("expected nack when the dedup store is unavailable")
	}
}

func TestProcessReleasesMarkOnBadPayload(t *testing.T) {
	manager := &fakeIdempotency{}
	consumer := testConsumer(t, manager)

	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`"not an object"`),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if consumer.process(context.Background(), string(enums.EventOrderCancelled), "m1", raw) {
		t.Fatal("expected nack for unparseable payload")
	}
	if manager.deleted != 1 {
		t.Fatalf("expected idempotency mark released once, got %d", manager.deleted)
	}
}
