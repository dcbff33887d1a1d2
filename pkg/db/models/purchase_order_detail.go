package models

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseOrderDetail is one immutable line item, written once at intake.
type PurchaseOrderDetail struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	OrderQuantity int        `gorm:"column:order_quantity;not null"`
	ExpectedDate  *time.Time `gorm:"column:expected_date"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
