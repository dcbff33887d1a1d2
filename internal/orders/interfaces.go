package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/pkg/db/models"
	"github.com/vmshq/vms-backend/pkg/enums"
)

// Repository defines persistence operations for purchase orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.PurchaseOrder) (*models.PurchaseOrder, error)
	CreateOrderDetails(ctx context.Context, details []models.PurchaseOrderDetail) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error)
	FindDetailsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PurchaseOrderDetail, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	UpdateStatusIfCurrent(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, statusDate time.Time) (int64, error)
	UpdateStatusDirect(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, statusDate time.Time) (int64, error)
	ListSummaries(ctx context.Context, status *enums.OrderStatus) ([]OrderSummary, error)
}
