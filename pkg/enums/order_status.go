package enums

import "fmt"

// OrderStatus tracks how far an order progressed through the workflow.
// completed and cancelled are terminal; cancelled absorbs every failure
// path regardless of where the failure happened.
type OrderStatus string

const (
	OrderStatusCreated           OrderStatus = "created"
	OrderStatusInventoryReserved OrderStatus = "inventory_reserved"
	OrderStatusPaymentProcessed  OrderStatus = "payment_processed"
	OrderStatusCompleted         OrderStatus = "completed"
	OrderStatusCancelled         OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusInventoryReserved,
	OrderStatusPaymentProcessed,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// orderStatusTransitions is the allowed forward edge per status. Any
// non-terminal status may additionally transition to cancelled.
var orderStatusTransitions = map[OrderStatus]OrderStatus{
	OrderStatusCreated:           OrderStatusInventoryReserved,
	OrderStatusInventoryReserved: OrderStatusPaymentProcessed,
	OrderStatusPaymentProcessed:  OrderStatusCompleted,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// TerminalOrderStatuses lists the statuses with no outgoing transitions.
func TerminalOrderStatuses() []OrderStatus {
	var terminal []OrderStatus
	for _, candidate := range validOrderStatuses {
		if candidate.IsTerminal() {
			terminal = append(terminal, candidate)
		}
	}
	return terminal
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return orderStatusTransitions[s] == next
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
