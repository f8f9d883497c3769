package saga

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sagaflow-backend/pkg/db/models"
	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/sagaflow-backend/pkg/pagination"
)

type ListParams struct {
	Status *enums.OrderStatus
	pkgpagination.Params
}

type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

type ListItem struct {
	ID            uuid.UUID         `json:"id"`
	CustomerID    string            `json:"customer_id"`
	ProductID     string            `json:"product_id"`
	Quantity      int               `json:"quantity"`
	Price         decimal.Decimal   `json:"price"`
	Status        enums.OrderStatus `json:"status"`
	FailureReason *string           `json:"failure_reason,omitempty"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type listQuery struct {
	status *enums.OrderStatus
	limit  int
	cursor *pkgpagination.Cursor
}

func NewListItem(m models.SagaOrder) ListItem {
	return ListItem{
		ID:            m.ID,
		CustomerID:    m.CustomerID,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		Price:         m.Price,
		Status:        m.Status,
		FailureReason: m.FailureReason,
		CancelledAt:   m.CancelledAt,
		CompletedAt:   m.CompletedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
