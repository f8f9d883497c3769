package saga

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/sagaflow-backend/pkg/errors"
	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
	"github.com/angelmondragon/sagaflow-backend/pkg/outbox"
	"github.com/angelmondragon/sagaflow-backend/pkg/outbox/payloads"
	pkgpagination "github.com/angelmondragon/sagaflow-backend/pkg/pagination"

	"github.com/angelmondragon/sagaflow-backend/pkg/db/models"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// outboxAppender queues the terminal order announcement. An order has
// exactly one terminal event, so appends dedupe on event and aggregate
// and a re-driven finalization cannot double-emit.
type outboxAppender interface {
	AppendIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service runs the order workflow and exposes order reads.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.SagaOrder, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.SagaOrder, error)
	ListOrders(ctx context.Context, params ListParams) (*ListResult, error)
}

// CreateOrderInput carries the fields needed to start an order workflow.
type CreateOrderInput struct {
	CustomerID string
	ProductID  string
	Quantity   int
	Price      decimal.Decimal
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxAppender
	inventory InventoryService
	payment   PaymentService
	logg      *logger.Logger
}

// NewService builds the order workflow service with its dependencies.
// logg may be nil.
func NewService(repo Repository, tx txRunner, outboxSvc outboxAppender, inventory InventoryService, payment PaymentService, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("saga repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox appender required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if payment == nil {
		return nil, fmt.Errorf("payment service required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    outboxSvc,
		inventory: inventory,
		payment:   payment,
		logg:      logg,
	}, nil
}

// CreateOrder drives a new order through reservation, payment and
// completion. Each transition is persisted in its own transaction so
// the row always shows how far the workflow got. A step failure
// unwinds the completed steps and returns the cancelled order with a
// nil error; only infrastructure failures around the cancellation
// itself surface as errors.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.SagaOrder, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	order := &models.SagaOrder{
		CustomerID: strings.TrimSpace(input.CustomerID),
		ProductID:  strings.TrimSpace(input.ProductID),
		Quantity:   input.Quantity,
		Price:      input.Price,
		Status:     enums.OrderStatusCreated,
	}
	order, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	s.info(ctx, order, "order workflow started")

	prog := progressCreated

	if err := s.inventory.Reserve(ctx, order.ProductID, order.Quantity); err != nil {
		return s.cancel(ctx, order, prog, enums.FailureInventory, err)
	}
	// The reservation side effect exists now, regardless of whether the
	// status write below lands. Compensation keys on prog, not the row.
	prog = progressInventoryReserved
	if err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCreated, enums.OrderStatusInventoryReserved); err != nil {
		return s.cancel(ctx, order, prog, enums.FailureInternal, err)
	}
	order.Status = enums.OrderStatusInventoryReserved
	s.info(ctx, order, "inventory reserved")

	if err := s.payment.Charge(ctx, order.CustomerID, order.Price); err != nil {
		return s.cancel(ctx, order, prog, enums.FailurePayment, err)
	}
	prog = progressPaymentProcessed
	if err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusInventoryReserved, enums.OrderStatusPaymentProcessed); err != nil {
		return s.cancel(ctx, order, prog, enums.FailureInternal, err)
	}
	order.Status = enums.OrderStatusPaymentProcessed
	s.info(ctx, order, "payment processed")

	completedAt := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Complete(ctx, order.ID, completedAt); err != nil {
			return err
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCompleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderCompletedEvent{
				OrderID:     order.ID,
				CustomerID:  order.CustomerID,
				ProductID:   order.ProductID,
				Quantity:    order.Quantity,
				Price:       order.Price,
				Status:      enums.OrderStatusCompleted,
				CompletedAt: completedAt,
			},
		}
		return s.outbox.AppendIfNotExists(ctx, tx, event)
	})
	if err != nil {
		return s.cancel(ctx, order, prog, enums.FailureInternal, err)
	}
	order.Status = enums.OrderStatusCompleted
	order.CompletedAt = &completedAt
	s.info(ctx, order, "order workflow completed")
	return order, nil
}

// cancel unwinds the steps recorded for prog, then persists the
// cancellation and its outbox event in one transaction. Compensation
// is best effort: a failing undo step is recorded and the remaining
// steps still run.
func (s *service) cancel(ctx context.Context, order *models.SagaOrder, prog progress, code enums.FailureCode, cause error) (*models.SagaOrder, error) {
	reason := cause.Error()
	s.warn(ctx, order, "order workflow failed, compensating", cause)

	var compErrs []string
	var undoErr error
	for _, step := range compensationPlan[prog] {
		if err := step.run(ctx, s, order); err != nil {
			undoErr = multierr.Append(undoErr, fmt.Errorf("%s: %w", step.name, err))
			compErrs = append(compErrs, fmt.Sprintf("%s: %s", step.name, err.Error()))
		}
	}
	if undoErr != nil && s.logg != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "compensation incomplete", undoErr)
	}

	cancelledAt := time.Now().UTC()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Cancel(ctx, order.ID, reason, cancelledAt); err != nil {
			return err
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderCancelledEvent{
				OrderID:            order.ID,
				CustomerID:         order.CustomerID,
				ProductID:          order.ProductID,
				Quantity:           order.Quantity,
				Price:              order.Price,
				Status:             enums.OrderStatusCancelled,
				FailureCode:        code,
				Reason:             reason,
				CompensationErrors: compErrs,
				CancelledAt:        cancelledAt,
			},
		}
		return s.outbox.AppendIfNotExists(ctx, tx, event)
	})
	if err != nil {
		if err == ErrStaleStatus {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "order already finished")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}

	order.Status = enums.OrderStatusCancelled
	order.FailureReason = &reason
	order.CancelledAt = &cancelledAt
	s.info(ctx, order, "order workflow cancelled")
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.SagaOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		status: params.Status,
		limit:  pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	items := make([]ListItem, len(rows))
	for i, row := range rows {
		items[i] = NewListItem(row)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (input CreateOrderInput) validate() error {
	if strings.TrimSpace(input.CustomerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return nil
}

func (s *service) info(ctx context.Context, order *models.SagaOrder, msg string) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"status":   order.Status,
	})
	s.logg.Info(logCtx, msg)
}

func (s *service) warn(ctx context.Context, order *models.SagaOrder, msg string, cause error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"error":    cause.Error(),
	})
	s.logg.Warn(logCtx, msg)
}
