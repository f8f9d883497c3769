package saga

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sagaflow-backend/internal/inventory"
	"github.com/angelmondragon/sagaflow-backend/internal/payment"
	pkgerrors "github.com/angelmondragon/sagaflow-backend/pkg/errors"
	"github.com/angelmondragon/sagaflow-backend/pkg/resilience"
)

// isBusinessRejection classifies errors that retrying cannot fix:
// stock rejections, declined charges and caller mistakes.
func isBusinessRejection(err error) bool {
	if errors.Is(err, inventory.ErrOutOfStock) || errors.Is(err, payment.ErrChargeLimitExceeded) {
		return true
	}
	var appErr *pkgerrors.Error
	return errors.As(err, &appErr) && appErr.Code() == pkgerrors.CodeValidation
}

// ResilientInventory wraps an InventoryService with retries and a
// circuit breaker. Business rejections pass through on first attempt.
type ResilientInventory struct {
	next InventoryService
	exec *resilience.Executor
}

func NewResilientInventory(next InventoryService) *ResilientInventory {
	return &ResilientInventory{
		next: next,
		exec: resilience.New(resilience.Options{
			Name:      "inventory",
			Permanent: isBusinessRejection,
		}),
	}
}

func (r *ResilientInventory) Reserve(ctx context.Context, productID string, qty int) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		return r.next.Reserve(ctx, productID, qty)
	})
}

func (r *ResilientInventory) Release(ctx context.Context, productID string, qty int) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		return r.next.Release(ctx, productID, qty)
	})
}

// ResilientPayment wraps a PaymentService the same way.
type ResilientPayment struct {
	next PaymentService
	exec *resilience.Executor
}

func NewResilientPayment(next PaymentService) *ResilientPayment {
	return &ResilientPayment{
		next: next,
		exec: resilience.New(resilience.Options{
			Name:      "payment",
			Permanent: isBusinessRejection,
		}),
	}
}

func (r *ResilientPayment) Charge(ctx context.Context, customerID string, amount decimal.Decimal) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		return r.next.Charge(ctx, customerID, amount)
	})
}

func (r *ResilientPayment) Refund(ctx context.Context, customerID string, amount decimal.Decimal) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		return r.next.Refund(ctx, customerID, amount)
	})
}
