package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/pkg/db/models"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
)

// Allocator reserves serialized units for delivered orders. Allocation runs
// inside the caller's transaction so a failed downstream sync rolls everything
// back.
type Allocator interface {
	Allocate(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) ([]models.ProductVariant, error)
	EnsureAvailable(ctx context.Context, productID uuid.UUID, qty int) error
}

type allocator struct {
	repo Repository
}

// NewAllocator builds the default allocator over the inventory repository.
func NewAllocator(repo Repository) (Allocator, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &allocator{repo: repo}, nil
}

// Allocate picks the oldest available units, marks them unavailable, and
// decrements the aggregate stock counter. The select phase is non-destructive:
// nothing is mutated until enough units are known to exist, and the stock
// decrement is guarded so concurrent allocations cannot drive it negative.
func (a *allocator) Allocate(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) ([]models.ProductVariant, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := a.repo.WithTx(tx)

	variants, err := repo.SelectAvailable(ctx, productID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "select available variants")
	}
	if len(variants) < qty {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientInventory,
			fmt.Sprintf("product %s has %d of %d requested units", productID, len(variants), qty)).
			WithDetails(map[string]any{
				"product_id": productID,
				"available":  len(variants),
				"requested":  qty,
			})
	}

	ids := make([]uuid.UUID, 0, len(variants))
	for _, v := range variants {
		ids = append(ids, v.ID)
	}
	if err := repo.MarkUnavailable(ctx, ids); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark variants unavailable")
	}

	affected, err := repo.DeductStock(ctx, productID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deduct stock")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientInventory,
			fmt.Sprintf("product %s stock counter below %d", productID, qty))
	}

	return variants, nil
}

// EnsureAvailable checks sufficiency without reserving anything. Callers use
// it to fail fast before a side effect that would be awkward to undo.
func (a *allocator) EnsureAvailable(ctx context.Context, productID uuid.UUID, qty int) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	available, err := a.repo.CountAvailable(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count available variants")
	}
	if available < int64(qty) {
		return pkgerrors.New(pkgerrors.CodeInsufficientInventory,
			fmt.Sprintf("product %s has %d of %d requested units", productID, available, qty)).
			WithDetails(map[string]any{
				"product_id": productID,
				"available":  available,
				"requested":  qty,
			})
	}
	return nil
}
