package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/sagaflow-backend/pkg/errors"
)

func TestReserveSucceedsForStockedProduct(t *testing.T) {
	svc := NewService(nil, "")

	require.NoError(t, svc.Reserve(context.Background(), "WIDGET", 2))
}

func TestReserveFailsForOutOfStockProduct(t *testing.T) {
	svc := NewService(nil, "")

	err := svc.Reserve(context.Background(), DefaultOutOfStockSKU, 1)
	require.ErrorIs(t, err, ErrOutOfStock)
}

func TestReserveHonorsConfiguredSKU(t *testing.T) {
	svc := NewService(nil, "GONE")

	require.NoError(t, svc.Reserve(context.Background(), DefaultOutOfStockSKU, 1))
	require.ErrorIs(t, svc.Reserve(context.Background(), "GONE", 1), ErrOutOfStock)
}

func TestReserveValidatesInput(t *testing.T) {
	svc := NewService(nil, "")

	var appErr *pkgerrors.Error
	err := svc.Reserve(context.Background(), "", 1)
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	err = svc.Reserve(context.Background(), "WIDGET", 0)
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestReleaseAlwaysSucceedsForValidInput(t *testing.T) {
	svc := NewService(nil, "")

	require.NoError(t, svc.Release(context.Background(), DefaultOutOfStockSKU, 3))
	require.NoError(t, svc.Release(context.Background(), "WIDGET", 1))
}
