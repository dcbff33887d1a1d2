package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// SelectAvailable returns the oldest available units first so allocation is
// deterministic across retries. The read does not mutate anything.
func (r *repository) SelectAvailable(ctx context.Context, productID uuid.UUID, limit int) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_available = ?", productID, true).
		Order("sequence ASC").
		Limit(limit).
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *repository) CountAvailable(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("product_id = ? AND is_available = ?", productID, true).
		Count(&count).Error
	return count, err
}

// MarkUnavailable clears the availability flag. Re-running it over already
// consumed units is a no-op.
func (r *repository) MarkUnavailable(ctx context.Context, variantIDs []uuid.UUID) error {
	if len(variantIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id IN ?", variantIDs).
		Update("is_available", false).Error
}

// DeductStock decrements the aggregate counter only when enough stock remains;
// the caller inspects the affected row count to detect a shortfall.
func (r *repository) DeductStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET current_stock = current_stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_stock >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) CreateVariants(ctx context.Context, variants []models.ProductVariant) error {
	if len(variants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&variants).Error
}

func (r *repository) AddStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET current_stock = current_stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, productID).Error
}
