package saga

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/sagaflow-backend/pkg/db/models"
	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
)

// Repository exposes order persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.SagaOrder) (*models.SagaOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SagaOrder, error)
	List(ctx context.Context, opts listQuery) ([]models.SagaOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) error
	Complete(ctx context.Context, id uuid.UUID, completedAt time.Time) error
	Cancel(ctx context.Context, id uuid.UUID, reason string, cancelledAt time.Time) error
}

// InventoryService reserves and releases stock for orders.
type InventoryService interface {
	Reserve(ctx context.Context, productID string, qty int) error
	Release(ctx context.Context, productID string, qty int) error
}

// PaymentService captures and refunds order payments on the
// customer's account.
type PaymentService interface {
	Charge(ctx context.Context, customerID string, amount decimal.Decimal) error
	Refund(ctx context.Context, customerID string, amount decimal.Decimal) error
}
