package enums

import "fmt"

// OrderStatus tracks the lifecycle of a purchase order. The wire values match
// what the inventory-management system exchanges, including the space in
// "To Ship".
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusRejected  OrderStatus = "Rejected"
	OrderStatusToShip    OrderStatus = "To Ship"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusReceived  OrderStatus = "Received"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusRejected,
	OrderStatusToShip,
	OrderStatusDelivered,
	OrderStatusReceived,
}

// Forward-only transition table. Rejected and Received are terminal.
var orderStatusSuccessors = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusRejected},
	OrderStatusConfirmed: {OrderStatusToShip},
	OrderStatusToShip:    {OrderStatusDelivered},
	OrderStatusDelivered: {OrderStatusReceived},
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

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return len(orderStatusSuccessors[s]) == 0
}

// CanTransitionTo reports whether target is a legal successor of s. The
// machine never skips states and never moves backwards.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, candidate := range orderStatusSuccessors[s] {
		if candidate == target {
			return true
		}
	}
	return false
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
