package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/internal/inventory"
	"github.com/vmshq/vms-backend/pkg/db/models"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
	"github.com/vmshq/vms-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type imageSaver interface {
	SaveBase64(encoded string) (string, error)
}

// Service exposes product catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, category string, activeOnly bool) ([]models.Product, error)
	AddQuantity(ctx context.Context, productID uuid.UUID, quantity int) ([]models.ProductVariant, error)
	DeactivateProduct(ctx context.Context, productID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name            string
	Description     string
	Size            string
	Category        string
	Color           string
	UnitPrice       decimal.Decimal
	InitialQuantity int
	ImageBase64     string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Color       *string
	UnitPrice   *decimal.Decimal
	ImageBase64 *string
}

type service struct {
	repo      Repository
	inventory inventory.Repository
	tx        txRunner
	images    imageSaver
	logg      *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo Repository, inventoryRepo inventory.Repository, tx txRunner, images imageSaver, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if images == nil {
		return nil, fmt.Errorf("image store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		inventory: inventoryRepo,
		tx:        tx,
		images:    images,
		logg:      logg,
	}, nil
}

// CreateProduct registers a listing and mints the initial variant batch.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Size == "" || input.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product size and category required")
	}
	if input.UnitPrice.IsNegative() || input.UnitPrice.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
	}
	if input.InitialQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity cannot be negative")
	}

	imagePath := ""
	if input.ImageBase64 != "" {
		path, err := s.images.SaveBase64(input.ImageBase64)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store product image")
		}
		imagePath = path
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Size:        input.Size,
		Category:    input.Category,
		Color:       input.Color,
		UnitPrice:   input.UnitPrice,
		ImagePath:   imagePath,
		IsActive:    true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		if input.InitialQuantity > 0 {
			if _, err := s.mintVariants(ctx, tx, product.ID, input.InitialQuantity); err != nil {
				return err
			}
			product.CurrentStock = input.InitialQuantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID.String()), "product created")
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() || input.UnitPrice.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
		}
		updates["unit_price"] = *input.UnitPrice
	}
	if input.ImageBase64 != nil && *input.ImageBase64 != "" {
		path, err := s.images.SaveBase64(*input.ImageBase64)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store product image")
		}
		updates["image_path"] = path
	}

	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.loadProduct(ctx, productID)
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.loadProduct(ctx, productID)
}

func (s *service) ListProducts(ctx context.Context, category string, activeOnly bool) ([]models.Product, error) {
	products, err := s.repo.List(ctx, category, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

// AddQuantity mints a batch of serialized units and bumps the stock counter
// in the same transaction.
func (s *service) AddQuantity(ctx context.Context, productID uuid.UUID, quantity int) ([]models.ProductVariant, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}

	var created []models.ProductVariant
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		created, err = s.mintVariants(ctx, tx, productID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"product_id": productID.String(),
		"quantity":   quantity,
	})
	s.logg.Info(ctx, "stock added")
	return created, nil
}

func (s *service) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, productID, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func (s *service) mintVariants(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) ([]models.ProductVariant, error) {
	productCode, err := NewProductCode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate product code")
	}

	variants := make([]models.ProductVariant, 0, quantity)
	for i := 0; i < quantity; i++ {
		barcode, err := NewBarcode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate barcode")
		}
		variants = append(variants, models.ProductVariant{
			ID:          uuid.New(),
			Barcode:     barcode,
			ProductCode: productCode,
			ProductID:   productID,
			IsAvailable: true,
		})
	}

	invRepo := s.inventory.WithTx(tx)
	if err := invRepo.CreateVariants(ctx, variants); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variants")
	}
	if err := invRepo.AddStock(ctx, productID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add stock")
	}
	return variants, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
