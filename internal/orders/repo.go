package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/pkg/db/models"
	"github.com/vmshq/vms-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderDetails(ctx context.Context, details []models.PurchaseOrderDetail) error {
	if len(details) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&details).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Details").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindDetailsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PurchaseOrderDetail, error) {
	var details []models.PurchaseOrderDetail
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *repository) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	result := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

// UpdateStatusIfCurrent commits a transition only when the row still carries
// the expected predecessor status. Zero affected rows means another writer
// moved the order first.
func (r *repository) UpdateStatusIfCurrent(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, statusDate time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]any{
			"status":      to,
			"status_date": statusDate,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// UpdateStatusDirect writes the status unconditionally. Reserved for the
// administrative override path.
func (r *repository) UpdateStatusDirect(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, statusDate time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"status":      to,
			"status_date": statusDate,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) ListSummaries(ctx context.Context, status *enums.OrderStatus) ([]OrderSummary, error) {
	query := r.db.WithContext(ctx).
		Table("purchase_orders AS po").
		Select(`po.id AS order_id,
			po.status AS status,
			po.order_date AS order_date,
			p.name AS product_name,
			p.size AS size,
			p.category AS category,
			pod.order_quantity AS quantity,
			p.unit_price * pod.order_quantity AS total_price,
			c.name AS customer_name,
			c.address AS warehouse_address,
			p.image_path AS image_path`).
		Joins("JOIN purchase_order_details pod ON pod.order_id = po.id").
		Joins("JOIN products p ON p.id = pod.product_id").
		Joins("JOIN customers c ON c.id = po.customer_id").
		Order("po.order_date DESC, pod.created_at ASC")

	if status != nil {
		query = query.Where("po.status = ?", *status)
	}

	var summaries []OrderSummary
	if err := query.Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}
