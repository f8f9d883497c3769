package orders

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
	"github.com/angelmondragon/sagaflow-backend/pkg/outbox"
	"github.com/angelmondragon/sagaflow-backend/pkg/outbox/payloads"
)

const ordersConsumerName = "order-events"

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer verifies published order events: it decodes each envelope,
// dedupes on event id and logs the terminal outcome. Redelivery is
// expected, so everything it does is idempotent.
type Consumer struct {
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	logg         *logger.Logger
}

// NewConsumer builds an order event consumer.
func NewConsumer(subscription *pubsub.Subscriber, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg.Attributes["event_type"], msg.ID, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process returns true when the message should be acked. Malformed
// messages are acked because redelivering them can never help.
func (c *Consumer) process(ctx context.Context, eventType, messageID string, data []byte) bool {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	parsed, err := enums.ParseOutboxEventType(eventType)
	if err != nil || (parsed != enums.EventOrderCompleted && parsed != enums.EventOrderCancelled) {
		c.logg.Info(logCtx, "skipping non-order event")
		return true
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return true
	}
	logCtx = c.logg.WithEventID(logCtx, envelope.EventID)

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, ordersConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return true
	}

	if err := c.handle(logCtx, parsed, envelope.Data); err != nil {
		c.logg.Error(logCtx, "order event handling failed", err)
		_ = c.idempotency.Delete(ctx, ordersConsumerName, eventID)
		return false
	}
	return true
}

func (c *Consumer) handle(logCtx context.Context, eventType enums.OutboxEventType, data []byte) error {
	switch eventType {
	case enums.EventOrderCompleted:
		var payload payloads.OrderCompletedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse completed payload: %w", err)
		}
		logCtx = c.logg.WithFields(logCtx, map[string]any{
			"order_id":    payload.OrderID.String(),
			"customer_id": payload.CustomerID,
			"product_id":  payload.ProductID,
			"price":       payload.Price.String(),
		})
		c.logg.Info(logCtx, "order completed downstream")
	case enums.EventOrderCancelled:
		var payload payloads.OrderCancelledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse cancelled payload: %w", err)
		}
		logCtx = c.logg.WithFields(logCtx, map[string]any{
			"order_id":     payload.OrderID.String(),
			"failure_code": payload.FailureCode,
			"reason":       payload.Reason,
		})
		if len(payload.CompensationErrors) > 0 {
			logCtx = c.logg.WithField(logCtx, "compensation_errors", payload.CompensationErrors)
		}
		c.logg.Info(logCtx, "order cancelled downstream")
	}
	return nil
}
