package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/sagaflow-backend/pkg/errors"
	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
)

// ErrChargeLimitExceeded is returned when a charge is over the per-order limit.
var ErrChargeLimitExceeded = errors.New("charge limit exceeded")

// DefaultChargeLimit caps single charges when no limit is configured.
var DefaultChargeLimit = decimal.NewFromInt(1000)

// Service captures and refunds payments for order workflows. Charges
// above the configured limit are declined, everything else succeeds.
type Service struct {
	logg        *logger.Logger
	chargeLimit decimal.Decimal
}

// NewService builds the payment service. chargeLimit is the decimal
// string from configuration; empty or invalid values fall back to the
// default limit.
func NewService(logg *logger.Logger, chargeLimit string) *Service {
	limit := DefaultChargeLimit
	if trimmed := strings.TrimSpace(chargeLimit); trimmed != "" {
		if parsed, err := decimal.NewFromString(trimmed); err == nil && parsed.IsPositive() {
			limit = parsed
		}
	}
	return &Service{logg: logg, chargeLimit: limit}
}

// Charge captures amount against the customer's payment method.
func (s *Service) Charge(ctx context.Context, customerID string, amount decimal.Decimal) error {
	if strings.TrimSpace(customerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if amount.GreaterThan(s.chargeLimit) {
		return ErrChargeLimitExceeded
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"customer_id": customerID, "amount": amount.String()})
		s.logg.Info(logCtx, "payment captured")
	}
	return nil
}

// Refund reverses a previously captured charge. Refunds are always
// accepted so compensation can never be rejected by this service.
func (s *Service) Refund(ctx context.Context, customerID string, amount decimal.Decimal) error {
	if strings.TrimSpace(customerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"customer_id": customerID, "amount": amount.String()})
		s.logg.Info(logCtx, "payment refunded")
	}
	return nil
}
