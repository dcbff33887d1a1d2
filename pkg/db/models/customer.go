package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer holds the warehouse destination metadata attached to orders.
// Customers are created lazily the first time an order arrives for them.
type Customer struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	WarehouseName string    `gorm:"column:warehouse_name;not null;default:''"`
	Address       string    `gorm:"column:address;not null;default:''"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
