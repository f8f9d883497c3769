package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
)

// OrderCompletedEvent carries the final order snapshot once every
// workflow step succeeded.
type OrderCompletedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	CustomerID  string            `json:"customer_id"`
	ProductID   string            `json:"product_id"`
	Quantity    int               `json:"quantity"`
	Price       decimal.Decimal   `json:"price"`
	Status      enums.OrderStatus `json:"status"`
	CompletedAt time.Time         `json:"completed_at"`
}

// OrderCancelledEvent is emitted when the workflow unwinds. It records
// which step failed and whether any compensation itself errored.
type OrderCancelledEvent struct {
	OrderID            uuid.UUID         `json:"order_id"`
	CustomerID         string            `json:"customer_id"`
	ProductID          string            `json:"product_id"`
	Quantity           int               `json:"quantity"`
	Price              decimal.Decimal   `json:"price"`
	Status             enums.OrderStatus `json:"status"`
	FailureCode        enums.FailureCode `json:"failure_code"`
	Reason             string            `json:"reason,omitempty"`
	CompensationErrors []string          `json:"compensation_errors,omitempty"`
	CancelledAt        time.Time         `json:"cancelled_at"`
}
