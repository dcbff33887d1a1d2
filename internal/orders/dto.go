package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vmshq/vms-backend/pkg/enums"
)

// ReceiveOrderInput captures an inbound purchase order from the external
// system. The destination is referenced either by an existing customer id or
// by name, in which case the customer is registered lazily.
type ReceiveOrderInput struct {
	CustomerID    *uuid.UUID
	CustomerName  string
	WarehouseName string
	Address       string
	VendorID      *uuid.UUID
	OrderDate     time.Time
	Items         []ReceiveOrderItem
}

// ReceiveOrderItem is one requested line.
type ReceiveOrderItem struct {
	ProductID    uuid.UUID
	Quantity     int
	ExpectedDate *time.Time
}

// Decision represents the vendor's answer to a pending order.
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionReject  Decision = "reject"
)

// DecisionInput carries the confirm/reject request for a pending order.
type DecisionInput struct {
	OrderID  uuid.UUID
	Decision Decision
}

// DirectStatusInput is the administrative status override.
type DirectStatusInput struct {
	OrderID     uuid.UUID
	Status      enums.OrderStatus
	ActorUserID uuid.UUID
	Reason      string
}

// OrderSummary is one order line joined with its product and destination,
// as rendered in the dashboard list.
type OrderSummary struct {
	OrderID          uuid.UUID         `json:"order_id"`
	Status           enums.OrderStatus `json:"status"`
	OrderDate        time.Time         `json:"order_date"`
	ProductName      string            `json:"product_name"`
	Size             string            `json:"size"`
	Category         string            `json:"category"`
	Quantity         int               `json:"quantity"`
	TotalPrice       decimal.Decimal   `json:"total_price"`
	CustomerName     string            `json:"customer_name"`
	WarehouseAddress string            `json:"warehouse_address"`
	ImagePath        string            `json:"image_path,omitempty"`
}
