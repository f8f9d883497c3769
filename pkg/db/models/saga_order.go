package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
)

// SagaOrder is the durable record driven through the order workflow.
// Every status transition is persisted in its own transaction so the
// row always reflects how far the workflow progressed.
type SagaOrder struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    string            `gorm:"column:customer_id;not null"`
	ProductID     string            `gorm:"column:product_id;not null"`
	Quantity      int               `gorm:"column:quantity;not null"`
	Price         decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'created'"`
	FailureReason *string           `gorm:"column:failure_reason"`
	CancelledAt   *time.Time        `gorm:"column:cancelled_at"`
	CompletedAt   *time.Time        `gorm:"column:completed_at"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
