package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/pkg/db/models"
)

// Repository defines persistence operations for serialized stock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	SelectAvailable(ctx context.Context, productID uuid.UUID, limit int) ([]models.ProductVariant, error)
	CountAvailable(ctx context.Context, productID uuid.UUID) (int64, error)
	MarkUnavailable(ctx context.Context, variantIDs []uuid.UUID) error
	DeductStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error)
	CreateVariants(ctx context.Context, variants []models.ProductVariant) error
	AddStock(ctx context.Context, productID uuid.UUID, qty int) error
}
