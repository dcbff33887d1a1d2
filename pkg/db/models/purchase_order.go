package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vmshq/vms-backend/pkg/enums"
)

// PurchaseOrder is the aggregate the lifecycle engine owns. Status is only
// written through compare-and-swap updates keyed on the expected predecessor
// status; StatusDate records the moment of the last transition.
type PurchaseOrder struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID   *uuid.UUID            `gorm:"column:vendor_id;type:uuid"`
	CustomerID uuid.UUID             `gorm:"column:customer_id;type:uuid;not null"`
	OrderDate  time.Time             `gorm:"column:order_date;not null"`
	Status     enums.OrderStatus     `gorm:"column:status;not null;default:'Pending'"`
	StatusDate time.Time             `gorm:"column:status_date;not null"`
	Details    []PurchaseOrderDetail `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
