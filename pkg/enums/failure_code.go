package enums

// FailureCode labels why an order was cancelled. It rides in the
// cancellation event payload and the order's failure reason; it is
// never a persisted status of its own.
type FailureCode string

const (
	FailureInventory FailureCode = "inventory_failed"
	FailurePayment   FailureCode = "payment_failed"
	FailureInternal  FailureCode = "internal_error"
)

// String implements fmt.Stringer.
func (f FailureCode) String() string {
	return string(f)
}
