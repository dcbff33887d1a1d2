package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/pkg/db/models"
)

// Repository defines persistence operations for order destinations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByName(ctx context.Context, name string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	FindOrCreate(ctx context.Context, name, warehouseName, address string) (*models.Customer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// FindOrCreate returns the existing customer by name or lazily registers it
// with the destination metadata supplied on the first order.
func (r *repository) FindOrCreate(ctx context.Context, name, warehouseName, address string) (*models.Customer, error) {
	existing, err := r.FindByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return r.Create(ctx, &models.Customer{
		ID:            uuid.New(),
		Name:          name,
		WarehouseName: warehouseName,
		Address:       address,
	})
}
