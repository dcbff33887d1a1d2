package products

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/internal/inventory"
	"github.com/vmshq/vms-backend/pkg/db/models"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
	"github.com/vmshq/vms-backend/pkg/logger"
)

type stubProductsRepo struct {
	products map[uuid.UUID]*models.Product
	created  []*models.Product
	updates  map[string]any
	inactive []uuid.UUID
	findErr  error
}

var _ Repository = (*stubProductsRepo)(nil)

func (s *stubProductsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProductsRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.created = append(s.created, product)
	return product, nil
}

func (s *stubProductsRepo) FindByAttributes(ctx context.Context, name, size, category string) (*models.Product, error) {
	for _, p := range s.products {
		if p.Name == name && p.Size == size && p.Category == category {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubProductsRepo) List(ctx context.Context, category string, activeOnly bool) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubProductsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubProductsRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if !active {
		s.inactive = append(s.inactive, id)
	}
	return nil
}

type stubInventoryRepo struct {
	variants   []models.ProductVariant
	stockAdded int
	createErr  error
}

var _ inventory.Repository = (*stubInventoryRepo)(nil)

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) inventory.Repository { return s }

func (s *stubInventoryRepo) SelectAvailable(ctx context.Context, productID uuid.UUID, limit int) ([]models.ProductVariant, error) {
	return nil, nil
}

func (s *stubInventoryRepo) CountAvailable(ctx context.Context, productID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *stubInventoryRepo) MarkUnavailable(ctx context.Context, variantIDs []uuid.UUID) error {
	return nil
}

func (s *stubInventoryRepo) DeductStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	return 0, nil
}

func (s *stubInventoryRepo) CreateVariants(ctx context.Context, variants []models.ProductVariant) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.variants = append(s.variants, variants...)
	return nil
}

func (s *stubInventoryRepo) AddStock(ctx context.Context, productID uuid.UUID, qty int) error {
	s.stockAdded += qty
	return nil
}

type stubTxRunner struct{}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubImageSaver struct {
	saved []string
	path  string
	err   error
}

func (s *stubImageSaver) SaveBase64(encoded string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, encoded)
	return s.path, nil
}

func newTestService(t *testing.T, repo *stubProductsRepo, inv *stubInventoryRepo, images *stubImageSaver) Service {
	t.Helper()
	if repo == nil {
		repo = &stubProductsRepo{products: map[uuid.UUID]*models.Product{}}
	}
	if inv == nil {
		inv = &stubInventoryRepo{}
	}
	if images == nil {
		images = &stubImageSaver{path: "images/stub.png"}
	}
	logg := logger.New(logger.Options{ServiceName: "products-test", Output: io.Discard})
	svc, err := NewService(repo, inv, &stubTxRunner{}, images, logg)
	require.NoError(t, err)
	return svc
}

func TestCreateProductMintsInitialVariants(t *testing.T) {
	repo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{}}
	inv := &stubInventoryRepo{}
	svc := newTestService(t, repo, inv, nil)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:            "Trail Jacket",
		Size:            "M",
		Category:        "Outerwear",
		UnitPrice:       decimal.NewFromInt(120),
		InitialQuantity: 3,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.True(t, product.IsActive)
	assert.Equal(t, 3, product.CurrentStock)
	assert.Equal(t, 3, inv.stockAdded)
	require.Len(t, inv.variants, 3)

	// All units of a batch share a product code; serials are unique.
	code := inv.variants[0].ProductCode
	seen := map[string]bool{}
	for _, v := range inv.variants {
		assert.Equal(t, code, v.ProductCode)
		assert.Len(t, v.Barcode, 13)
		assert.True(t, v.IsAvailable)
		assert.False(t, seen[v.Barcode])
		seen[v.Barcode] = true
	}
}

func TestCreateProductWithoutInitialQuantity(t *testing.T) {
	repo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{}}
	inv := &stubInventoryRepo{}
	svc := newTestService(t, repo, inv, nil)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:      "Belt",
		Size:      "OS",
		Category:  "Accessories",
		UnitPrice: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, product.CurrentStock)
	assert.Empty(t, inv.variants)
	assert.Equal(t, 0, inv.stockAdded)
}

func TestCreateProductStoresImage(t *testing.T) {
	images := &stubImageSaver{path: "images/abc.png"}
	svc := newTestService(t, nil, nil, images)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "Cap",
		Size:        "OS",
		Category:    "Accessories",
		UnitPrice:   decimal.NewFromInt(15),
		ImageBase64: "aGVsbG8=",
	})
	require.NoError(t, err)
	assert.Equal(t, "images/abc.png", product.ImagePath)
	require.Len(t, images.saved, 1)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)

	cases := []CreateProductInput{
		{Size: "M", Category: "Tops", UnitPrice: decimal.NewFromInt(10)},
		{Name: "Tee", Category: "Tops", UnitPrice: decimal.NewFromInt(10)},
		{Name: "Tee", Size: "M", Category: "Tops"},
		{Name: "Tee", Size: "M", Category: "Tops", UnitPrice: decimal.NewFromInt(10), InitialQuantity: -1},
	}
	for _, input := range cases {
		_, err := svc.CreateProduct(context.Background(), input)
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "input %+v", input)
	}
}

func TestCreateProductRejectsBadImage(t *testing.T) {
	images := &stubImageSaver{err: errors.New("not base64")}
	svc := newTestService(t, nil, nil, images)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "Cap",
		Size:        "OS",
		Category:    "Accessories",
		UnitPrice:   decimal.NewFromInt(15),
		ImageBase64: "!!!",
	})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestUpdateProductAppliesFields(t *testing.T) {
	productID := uuid.New()
	repo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{
		productID: {ID: productID, Name: "Old", IsActive: true},
	}}
	svc := newTestService(t, repo, nil, nil)

	name := "New Name"
	price := decimal.NewFromInt(99)
	_, err := svc.UpdateProduct(context.Background(), productID, UpdateProductInput{
		Name:      &name,
		UnitPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", repo.updates["name"])
	assert.Equal(t, price, repo.updates["unit_price"])
}

func TestUpdateProductUnknownID(t *testing.T) {
	repo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{}}
	svc := newTestService(t, repo, nil, nil)

	name := "New"
	_, err := svc.UpdateProduct(context.Background(), uuid.New(), UpdateProductInput{Name: &name})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestUpdateProductRejectsEmptyName(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)

	empty := ""
	_, err := svc.UpdateProduct(context.Background(), uuid.New(), UpdateProductInput{Name: &empty})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestAddQuantityMintsBatch(t *testing.T) {
	productID := uuid.New()
	repo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{
		productID: {ID: productID, Name: "Tee", IsActive: true},
	}}
	inv := &stubInventoryRepo{}
	svc := newTestService(t, repo, inv, nil)

	created, err := svc.AddQuantity(context.Background(), productID, 5)
	require.NoError(t, err)
	require.Len(t, created, 5)
	assert.Equal(t, 5, inv.stockAdded)
	for _, v := range created {
		assert.Equal(t, productID, v.ProductID)
		assert.True(t, v.IsAvailable)
	}
}

func TestAddQuantityValidation(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)

	_, err := svc.AddQuantity(context.Background(), uuid.Nil, 5)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.AddQuantity(context.Background(), uuid.New(), 0)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestAddQuantityUnknownProduct(t *testing.T) {
	repo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{}}
	inv := &stubInventoryRepo{}
	svc := newTestService(t, repo, inv, nil)

	_, err := svc.AddQuantity(context.Background(), uuid.New(), 2)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	assert.Empty(t, inv.variants)
}

func TestDeactivateProduct(t *testing.T) {
	productID := uuid.New()
	repo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{
		productID: {ID: productID, IsActive: true},
	}}
	svc := newTestService(t, repo, nil, nil)

	require.NoError(t, svc.DeactivateProduct(context.Background(), productID))
	assert.Equal(t, []uuid.UUID{productID}, repo.inactive)
}

func TestGetProductNotFound(t *testing.T) {
	repo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{}}
	svc := newTestService(t, repo, nil, nil)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}
