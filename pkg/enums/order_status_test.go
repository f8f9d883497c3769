package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	for _, status := range validOrderStatuses {
		parsed, err := ParseOrderStatus(string(status))
		if err != nil {
			t.Fatalf("expected %s to parse, got %v", status, err)
		}
		if parsed != status {
			t.Fatalf("expected %s got %s", status, parsed)
		}
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if OrderStatus("shipped").IsValid() {
		t.Fatal("unknown status must not validate")
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusCreated, OrderStatusInventoryReserved, true},
		{OrderStatusInventoryReserved, OrderStatusPaymentProcessed, true},
		{OrderStatusPaymentProcessed, OrderStatusCompleted, true},
		{OrderStatusCreated, OrderStatusPaymentProcessed, false},
		{OrderStatusCreated, OrderStatusCompleted, false},
		{OrderStatusCreated, OrderStatusCancelled, true},
		{OrderStatusInventoryReserved, OrderStatusCancelled, true},
		{OrderStatusPaymentProcessed, OrderStatusCancelled, true},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusCreated, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestTerminalOrderStatuses(t *testing.T) {
	terminal := TerminalOrderStatuses()
	if len(terminal) != 2 {
		t.Fatalf("expected 2 terminal statuses got %v", terminal)
	}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Fatalf("%s reported non-terminal", status)
		}
	}
	if OrderStatusPaymentProcessed.IsTerminal() {
		t.Fatal("payment_processed must not be terminal")
	}
}
