package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is one (name, size, category) listing. CurrentStock is the
// aggregate count of sellable units; it only decreases when a delivery is
// committed and is guarded against going negative at the SQL level.
type Product struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string           `gorm:"column:name;not null"`
	Description  string           `gorm:"column:description;not null;default:''"`
	Size         string           `gorm:"column:size;not null"`
	Category     string           `gorm:"column:category;not null"`
	Color        string           `gorm:"column:color;not null;default:''"`
	UnitPrice    decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CurrentStock int              `gorm:"column:current_stock;not null;default:0"`
	ImagePath    string           `gorm:"column:image_path;not null;default:''"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	Variants     []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
