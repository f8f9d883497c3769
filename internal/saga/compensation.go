package saga

import (
	"context"

	"github.com/angelmondragon/sagaflow-backend/pkg/db/models"
)

// compensationStep undoes one completed workflow step.
type compensationStep struct {
	name string
	run  func(ctx context.Context, s *service, order *models.SagaOrder) error
}

var refundPaymentStep = compensationStep{
	name: "refund_payment",
	run: func(ctx context.Context, s *service, order *models.SagaOrder) error {
		return s.payment.Refund(ctx, order.CustomerID, order.Price)
	},
}

var releaseInventoryStep = compensationStep{
	name: "release_inventory",
	run: func(ctx context.Context, s *service, order *models.SagaOrder) error {
		return s.inventory.Release(ctx, order.ProductID, order.Quantity)
	},
}

// compensationPlan lists, per progress point, the undo steps in the
// reverse of the order they were applied. The key is how far the
// workflow actually got, which can be ahead of the persisted status.
var compensationPlan = map[progress][]compensationStep{
	progressCreated:           {},
	progressInventoryReserved: {releaseInventoryStep},
	progressPaymentProcessed:  {refundPaymentStep, releaseInventoryStep},
}

// progress tracks completed side effects within a single workflow run.
type progress int

const (
	progressCreated progress = iota
	progressInventoryReserved
	progressPaymentProcessed
)
