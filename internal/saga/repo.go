package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/sagaflow-backend/pkg/db/models"
	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
)

// ErrStaleStatus is returned when a guarded status update matched no row,
// meaning the order moved on (or never existed) since it was read.
var ErrStaleStatus = errors.New("order status changed concurrently")

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.SagaOrder) (*models.SagaOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SagaOrder, error) {
	var order models.SagaOrder
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders using cursor pagination, newest first.
func (r *repository) List(ctx context.Context, opts listQuery) ([]models.SagaOrder, error) {
	query := r.db.WithContext(ctx).Model(&models.SagaOrder{})

	if opts.status != nil {
		query = query.Where("status = ?", *opts.status)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.SagaOrder
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus advances the order from one status to the next. The
// transition must be a legal forward edge, and the previous status
// guards the write so a concurrent transition loses.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("order status transition %s -> %s not allowed", from, to)
	}
	result := r.db.WithContext(ctx).
		Model(&models.SagaOrder{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// Complete marks the order completed. Only a payment_processed order
// can complete.
func (r *repository) Complete(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.SagaOrder{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusPaymentProcessed).
		Updates(map[string]any{
			"status":       enums.OrderStatusCompleted,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// Cancel marks the order cancelled from any non-terminal status. The
// persisted status may trail the workflow's progress when an earlier
// transition write failed, so cancellation only excludes terminal rows.
func (r *repository) Cancel(ctx context.Context, id uuid.UUID, reason string, cancelledAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.SagaOrder{}).
		Where("id = ? AND status NOT IN ?", id, enums.TerminalOrderStatuses()).
		Updates(map[string]any{
			"status":         enums.OrderStatusCancelled,
			"failure_reason": reason,
			"cancelled_at":   cancelledAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
