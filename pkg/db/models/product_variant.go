package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is a single serialized physical unit identified by barcode.
// Variants are created in batches when quantity is added and are never
// deleted; once allocated to a delivered order the availability flag is
// cleared permanently. Sequence preserves insertion order so allocation is
// deterministic (oldest unit first).
type ProductVariant struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Sequence    int64     `gorm:"column:sequence;autoIncrement;uniqueIndex"`
	Barcode     string    `gorm:"column:barcode;not null;uniqueIndex"`
	ProductCode string    `gorm:"column:product_code;not null"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	IsAvailable bool      `gorm:"column:is_available;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
