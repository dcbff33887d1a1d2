package orders

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/internal/customers"
	"github.com/vmshq/vms-backend/internal/inventory"
	"github.com/vmshq/vms-backend/pkg/db/models"
	"github.com/vmshq/vms-backend/pkg/enums"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
	"github.com/vmshq/vms-backend/pkg/logger"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{`
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  warehouse_name TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  size TEXT NOT NULL,
  category TEXT NOT NULL,
  color TEXT NOT NULL DEFAULT '',
  unit_price NUMERIC NOT NULL,
  current_stock INTEGER NOT NULL DEFAULT 0,
  image_path TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  sequence INTEGER NOT NULL UNIQUE,
  barcode TEXT NOT NULL UNIQUE,
  product_code TEXT NOT NULL,
  product_id TEXT NOT NULL,
  is_available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS purchase_orders (
  id TEXT PRIMARY KEY,
  vendor_id TEXT,
  customer_id TEXT NOT NULL,
  order_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'Pending',
  status_date DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS purchase_order_details (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  order_quantity INTEGER NOT NULL,
  expected_date DATETIME,
  created_at DATETIME
);`}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, name string) *models.Customer {
	t.Helper()
	customer := &models.Customer{ID: uuid.New(), Name: name, WarehouseName: "North DC", Address: "500 Dock Rd"}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:           uuid.New(),
		Name:         name,
		Size:         "M",
		Category:     "packaging",
		UnitPrice:    decimal.NewFromFloat(price),
		CurrentStock: stock,
		ImagePath:    "images_upload/abc.png",
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedOrder(t *testing.T, db *gorm.DB, customerID uuid.UUID, status enums.OrderStatus) *models.PurchaseOrder {
	t.Helper()
	order := &models.PurchaseOrder{
		ID:         uuid.New(),
		CustomerID: customerID,
		OrderDate:  time.Now().UTC(),
		Status:     status,
		StatusDate: time.Now().UTC(),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedDetail(t *testing.T, db *gorm.DB, orderID, productID uuid.UUID, qty int) *models.PurchaseOrderDetail {
	t.Helper()
	detail := &models.PurchaseOrderDetail{
		ID:            uuid.New(),
		OrderID:       orderID,
		ProductID:     productID,
		OrderQuantity: qty,
	}
	require.NoError(t, db.Create(detail).Error)
	return detail
}

func TestUpdateStatusIfCurrentMatches(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "Acme")
	order := seedOrder(t, db, customer.ID, enums.OrderStatusPending)

	affected, err := repo.UpdateStatusIfCurrent(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusConfirmed, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var reloaded models.PurchaseOrder
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.Status)
}

func TestUpdateStatusIfCurrentStaleStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "Acme")
	order := seedOrder(t, db, customer.ID, enums.OrderStatusConfirmed)

	// a second writer expecting Pending loses
	affected, err := repo.UpdateStatusIfCurrent(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusRejected, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	var reloaded models.PurchaseOrder
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.Status)
}

func TestListSummariesJoinsAndFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "Acme")
	boxes := seedProduct(t, db, "Shipping Box", 4.50, 10)
	tape := seedProduct(t, db, "Packing Tape", 1.25, 10)

	pending := seedOrder(t, db, customer.ID, enums.OrderStatusPending)
	seedDetail(t, db, pending.ID, boxes.ID, 2)
	seedDetail(t, db, pending.ID, tape.ID, 4)

	confirmed := seedOrder(t, db, customer.ID, enums.OrderStatusConfirmed)
	seedDetail(t, db, confirmed.ID, boxes.ID, 1)

	all, err := repo.ListSummaries(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	status := enums.OrderStatusPending
	got, err := repo.ListSummaries(ctx, &status)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, pending.ID, got[0].OrderID)
	assert.Equal(t, "Shipping Box", got[0].ProductName)
	assert.Equal(t, 2, got[0].Quantity)
	assert.True(t, got[0].TotalPrice.Equal(decimal.NewFromFloat(9.0)),
		"expected 9.0, got %s", got[0].TotalPrice)
	assert.Equal(t, "Acme", got[0].CustomerName)
	assert.Equal(t, "500 Dock Rd", got[0].WarehouseAddress)
	assert.Equal(t, "images_upload/abc.png", got[0].ImagePath)

	assert.Equal(t, "Packing Tape", got[1].ProductName)
	assert.True(t, got[1].TotalPrice.Equal(decimal.NewFromFloat(5.0)))
}

// gormTxRunner drives the service against a real sqlite transaction so the
// rollback path can be observed end to end.
type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func TestMarkDeliveredRollsBackEverythingWhenSyncExhausts(t *testing.T) {
	db := setupOrdersTestDB(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, "Acme")
	product := seedProduct(t, db, "Shipping Box", 4.50, 2)
	order := seedOrder(t, db, customer.ID, enums.OrderStatusToShip)
	seedDetail(t, db, order.ID, product.ID, 2)

	variants := []models.ProductVariant{
		{ID: uuid.New(), Sequence: 1, Barcode: "AAAA11112222B", ProductCode: "PC000001", ProductID: product.ID, IsAvailable: true},
		{ID: uuid.New(), Sequence: 2, Barcode: "AAAA11112223B", ProductCode: "PC000001", ProductID: product.ID, IsAvailable: true},
	}
	require.NoError(t, db.Create(&variants).Error)

	allocator, err := inventory.NewAllocator(inventory.NewRepository(db))
	require.NoError(t, err)

	notifier := &stubNotifier{
		manifestErr: pkgerrors.New(pkgerrors.CodeSyncExhausted, "ims gave up"),
	}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, allocator, notifier, customers.NewRepository(db), nil, logg)
	require.NoError(t, err)

	err = svc.MarkDelivered(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeSyncExhausted))

	// status, variants, and stock all reverted together
	var reloaded models.PurchaseOrder
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusToShip, reloaded.Status)

	var available int64
	require.NoError(t, db.Model(&models.ProductVariant{}).
		Where("product_id = ? AND is_available = ?", product.ID, true).
		Count(&available).Error)
	assert.Equal(t, int64(2), available)

	var reloadedProduct models.Product
	require.NoError(t, db.First(&reloadedProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 2, reloadedProduct.CurrentStock)
}

func TestMarkDeliveredCommitsWhenSyncSucceeds(t *testing.T) {
	db := setupOrdersTestDB(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, "Acme")
	product := seedProduct(t, db, "Shipping Box", 4.50, 3)
	order := seedOrder(t, db, customer.ID, enums.OrderStatusToShip)
	seedDetail(t, db, order.ID, product.ID, 2)

	variants := make([]models.ProductVariant, 0, 3)
	for i := 0; i < 3; i++ {
		variants = append(variants, models.ProductVariant{
			ID:          uuid.New(),
			Sequence:    int64(i + 1),
			Barcode:     fmt.Sprintf("BC%011d", i+1),
			ProductCode: "PC000001",
			ProductID:   product.ID,
			IsAvailable: true,
		})
	}
	require.NoError(t, db.Create(&variants).Error)

	allocator, err := inventory.NewAllocator(inventory.NewRepository(db))
	require.NoError(t, err)

	notifier := &stubNotifier{}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, allocator, notifier, customers.NewRepository(db), nil, logg)
	require.NoError(t, err)

	require.NoError(t, svc.MarkDelivered(ctx, order.ID))

	var reloaded models.PurchaseOrder
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusDelivered, reloaded.Status)

	var available int64
	require.NoError(t, db.Model(&models.ProductVariant{}).
		Where("product_id = ? AND is_available = ?", product.ID, true).
		Count(&available).Error)
	assert.Equal(t, int64(1), available)

	var reloadedProduct models.Product
	require.NoError(t, db.First(&reloadedProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 1, reloadedProduct.CurrentStock)

	// oldest units were consumed first
	require.Len(t, notifier.manifests, 1)
	require.Len(t, notifier.manifests[0], 2)
	assert.Equal(t, variants[0].Barcode, notifier.manifests[0][0].Barcode)
	assert.Equal(t, variants[1].Barcode, notifier.manifests[0][1].Barcode)
}
