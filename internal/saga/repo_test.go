package saga

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/sagaflow-backend/pkg/db/models"
	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/sagaflow-backend/pkg/pagination"
)

func setupSagaTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS saga_orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'created',
  failure_reason TEXT,
  cancelled_at DATETIME,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	require.NoError(t, db.Exec("DELETE FROM saga_orders").Error)
	return db
}

func insertOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, createdAt time.Time) *models.SagaOrder {
	t.Helper()
	order := &models.SagaOrder{
		ID:         uuid.New(),
		CustomerID: "CUST-1",
		ProductID:  "WIDGET",
		Quantity:   1,
		Price:      decimal.NewFromFloat(50.00),
		Status:     status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepoCreateAndFind(t *testing.T) {
	db := setupSagaTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.SagaOrder{
		ID:         uuid.New(),
		CustomerID: "CUST-7",
		ProductID:  "WIDGET",
		Quantity:   2,
		Price:      decimal.NewFromFloat(50.00),
		Status:     enums.OrderStatusCreated,
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "CUST-7", found.CustomerID)
	assert.Equal(t, enums.OrderStatusCreated, found.Status)
	assert.True(t, found.Price.Equal(decimal.NewFromFloat(50.00)))
}

func TestRepoFindMissing(t *testing.T) {
	db := setupSagaTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoUpdateStatusGuarded(t *testing.T) {
	db := setupSagaTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	order := insertOrder(t, db, enums.OrderStatusCreated, time.Now().UTC())

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCreated, enums.OrderStatusInventoryReserved))

	// Second write with the stale guard must lose.
	err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCreated, enums.OrderStatusInventoryReserved)
	require.ErrorIs(t, err, ErrStaleStatus)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusInventoryReserved, found.Status)
}

func TestRepoUpdateStatusRejectsIllegalTransition(t *testing.T) {
	db := setupSagaTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	order := insertOrder(t, db, enums.OrderStatusCreated, time.Now().UTC())

	err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCreated, enums.OrderStatusCompleted)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrStaleStatus)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCreated, found.Status)
}

func TestRepoCompleteRequiresPaymentProcessed(t *testing.T) {
	db := setupSagaTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pending := insertOrder(t, db, enums.OrderStatusCreated, time.Now().UTC())
	require.ErrorIs(t, repo.Complete(ctx, pending.ID, time.Now().UTC()), ErrStaleStatus)

	paid := insertOrder(t, db, enums.OrderStatusPaymentProcessed, time.Now().UTC())
	completedAt := time.Now().UTC()
	require.NoError(t, repo.Complete(ctx, paid.ID, completedAt))

	found, err := repo.FindByID(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, found.Status)
	require.NotNil(t, found.CompletedAt)
}

func TestRepoCancelFromAnyNonTerminalStatus(t *testing.T) {
	db := setupSagaTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for _, status := range []enums.OrderStatus{
		enums.OrderStatusCreated,
		enums.OrderStatusInventoryReserved,
		enums.OrderStatusPaymentProcessed,
	} {
		order := insertOrder(t, db, status, time.Now().UTC())
		require.NoError(t, repo.Cancel(ctx, order.ID, "charge limit exceeded", time.Now().UTC()), status)

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, enums.OrderStatusCancelled, found.Status)
		require.NotNil(t, found.FailureReason)
		assert.Equal(t, "charge limit exceeded", *found.FailureReason)
		require.NotNil(t, found.CancelledAt)
	}
}

func TestRepoCancelRejectsTerminalOrders(t *testing.T) {
	db := setupSagaTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	completed := insertOrder(t, db, enums.OrderStatusCompleted, time.Now().UTC())
	require.ErrorIs(t, repo.Cancel(ctx, completed.ID, "late failure", time.Now().UTC()), ErrStaleStatus)

	cancelled := insertOrder(t, db, enums.OrderStatusCancelled, time.Now().UTC())
	require.ErrorIs(t, repo.Cancel(ctx, cancelled.ID, "again", time.Now().UTC()), ErrStaleStatus)
}

func TestRepoListPaginatesNewestFirst(t *testing.T) {
	db := setupSagaTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var orders []*models.SagaOrder
	for i := 0; i < 5; i++ {
		orders = append(orders, insertOrder(t, db, enums.OrderStatusCompleted, base.Add(time.Duration(i)*time.Minute)))
	}

	page, err := repo.List(ctx, listQuery{limit: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, orders[4].ID, page[0].ID)
	assert.Equal(t, orders[2].ID, page[2].ID)

	next, err := repo.List(ctx, listQuery{
		limit: 3,
		cursor: &pkgpagination.Cursor{
			CreatedAt: page[2].CreatedAt,
			ID:        page[2].ID,
		},
	})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, orders[1].ID, next[0].ID)
	assert.Equal(t, orders[0].ID, next[1].ID)
}

func TestRepoListFiltersByStatus(t *testing.T) {
	db := setupSagaTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	insertOrder(t, db, enums.OrderStatusCompleted, time.Now().UTC())
	cancelled := insertOrder(t, db, enums.OrderStatusCancelled, time.Now().UTC())

	status := enums.OrderStatusCancelled
	rows, err := repo.List(ctx, listQuery{limit: 10, status: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, cancelled.ID, rows[0].ID)
}
