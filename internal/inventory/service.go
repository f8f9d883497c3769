package inventory

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/sagaflow-backend/pkg/errors"
	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
)

// ErrOutOfStock is returned when a reservation cannot be satisfied.
var ErrOutOfStock = errors.New("product out of stock")

// DefaultOutOfStockSKU is the product id that always fails reservation.
const DefaultOutOfStockSKU = "OUT_OF_STOCK"

// Service reserves and releases stock for order workflows. Reservations
// are simulated against a reject-list: reserving the configured
// out-of-stock SKU always fails, everything else succeeds.
type Service struct {
	logg          *logger.Logger
	outOfStockSKU string
}

// NewService builds the inventory service. outOfStockSKU may be empty,
// in which case the default sentinel is used.
func NewService(logg *logger.Logger, outOfStockSKU string) *Service {
	if strings.TrimSpace(outOfStockSKU) == "" {
		outOfStockSKU = DefaultOutOfStockSKU
	}
	return &Service{logg: logg, outOfStockSKU: outOfStockSKU}
}

// Reserve holds qty units of the product for the calling workflow.
func (s *Service) Reserve(ctx context.Context, productID string, qty int) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if productID == s.outOfStockSKU {
		return ErrOutOfStock
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"product_id": productID, "quantity": qty})
		s.logg.Info(logCtx, "inventory reserved")
	}
	return nil
}

// Release returns previously reserved units. Releasing is always
// accepted so compensation can never be rejected by this service.
func (s *Service) Release(ctx context.Context, productID string, qty int) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"product_id": productID, "quantity": qty})
		s.logg.Info(logCtx, "inventory released")
	}
	return nil
}
