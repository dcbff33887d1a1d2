package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/internal/customers"
	"github.com/vmshq/vms-backend/internal/inventory"
	"github.com/vmshq/vms-backend/pkg/db/models"
	"github.com/vmshq/vms-backend/pkg/enums"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
	"github.com/vmshq/vms-backend/pkg/ims"
	"github.com/vmshq/vms-backend/pkg/logger"
	"github.com/vmshq/vms-backend/pkg/metrics"
)

// defaultExpectedLeadTime fills in a line item's expected date when the
// sender omits it.
const defaultExpectedLeadTime = 7 * 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the purchase order lifecycle operations.
type Service interface {
	ReceiveOrder(ctx context.Context, input ReceiveOrderInput) (*models.PurchaseOrder, error)
	ConfirmOrReject(ctx context.Context, input DecisionInput) error
	MarkToShip(ctx context.Context, orderID uuid.UUID) error
	MarkDelivered(ctx context.Context, orderID uuid.UUID) error
	MarkReceived(ctx context.Context, orderID uuid.UUID) error
	UpdateStatusDirect(ctx context.Context, input DirectStatusInput) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error)
	ListOrderSummaries(ctx context.Context, status *enums.OrderStatus) ([]OrderSummary, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	allocator inventory.Allocator
	notifier  ims.Notifier
	customers customers.Repository
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the order lifecycle service with the required dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	allocator inventory.Allocator,
	notifier ims.Notifier,
	customerRepo customers.Repository,
	m *metrics.OrderMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("inventory allocator required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("ims notifier required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		allocator: allocator,
		notifier:  notifier,
		customers: customerRepo,
		metrics:   m,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// ReceiveOrder registers an inbound purchase order in Pending state. A
// customer id must reference an existing customer; a name-only destination is
// created lazily on first sight.
func (s *service) ReceiveOrder(ctx context.Context, input ReceiveOrderInput) (*models.PurchaseOrder, error) {
	if input.CustomerID == nil && input.CustomerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer reference required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = s.now()
	}

	var created *models.PurchaseOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		productIDs := make([]uuid.UUID, 0, len(input.Items))
		for _, item := range input.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		products, err := repo.FindProductsByIDs(ctx, productIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		for _, item := range input.Items {
			if _, ok := products[item.ProductID]; !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("product %s not found", item.ProductID))
			}
		}

		customer, err := s.resolveCustomer(ctx, tx, input)
		if err != nil {
			return err
		}

		order := &models.PurchaseOrder{
			ID:         uuid.New(),
			VendorID:   input.VendorID,
			CustomerID: customer.ID,
			OrderDate:  orderDate,
			Status:     enums.OrderStatusPending,
			StatusDate: s.now(),
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		details := make([]models.PurchaseOrderDetail, 0, len(input.Items))
		for _, item := range input.Items {
			expected := item.ExpectedDate
			if expected == nil {
				fallback := s.now().Add(defaultExpectedLeadTime)
				expected = &fallback
			}
			details = append(details, models.PurchaseOrderDetail{
				ID:            uuid.New(),
				OrderID:       order.ID,
				ProductID:     item.ProductID,
				OrderQuantity: item.Quantity,
				ExpectedDate:  expected,
			})
		}
		if err := repo.CreateOrderDetails(ctx, details); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order details")
		}

		order.Details = details
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(enums.OrderStatusPending.String())
	ctx = s.logg.WithOrderID(ctx, created.ID.String())
	s.logg.Info(ctx, "purchase order received")
	return created, nil
}

func (s *service) resolveCustomer(ctx context.Context, tx *gorm.DB, input ReceiveOrderInput) (*models.Customer, error) {
	repo := s.customers.WithTx(tx)
	if input.CustomerID != nil {
		customer, err := repo.FindByID(ctx, *input.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("customer %s not found", *input.CustomerID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve customer")
		}
		return customer, nil
	}
	customer, err := repo.FindOrCreate(ctx, input.CustomerName, input.WarehouseName, input.Address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve customer")
	}
	return customer, nil
}

// ConfirmOrReject resolves a pending order. The external system is notified
// first and the transition only commits after a successful acknowledgement,
// so an unreachable peer leaves the order Pending.
func (s *service) ConfirmOrReject(ctx context.Context, input DecisionInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	target, err := mapDecisionToStatus(input.Decision)
	if err != nil {
		return err
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s, decision requires Pending", order.Status))
	}

	// Confirming promises fulfillment, so check sufficiency for every line
	// before the external system hears about the decision. Nothing is
	// reserved yet; the actual allocation happens at delivery.
	if target == enums.OrderStatusConfirmed {
		details, err := s.repo.FindDetailsByOrder(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order details")
		}
		for _, detail := range details {
			if err := s.allocator.EnsureAvailable(ctx, detail.ProductID, detail.OrderQuantity); err != nil {
				return err
			}
		}
	}

	if err := s.notifier.SendConfirm(ctx, input.OrderID.String(), target.String()); err != nil {
		return err
	}

	if err := s.commitTransition(ctx, input.OrderID, enums.OrderStatusPending, target); err != nil {
		return err
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("order %s", target))
	return nil
}

// MarkToShip commits Confirmed -> To Ship and then notifies the external
// system. The commit stands even when the notification fails; the error is
// surfaced so the caller can retry the webhook out of band.
func (s *service) MarkToShip(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	if err := s.commitTransition(ctx, orderID, enums.OrderStatusConfirmed, enums.OrderStatusToShip); err != nil {
		return err
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(ctx, "order marked to ship")

	if err := s.notifier.SendToShip(ctx, orderID.String()); err != nil {
		s.logg.Error(ctx, "to-ship notification failed after commit", err)
		return err
	}
	return nil
}

// MarkDelivered allocates serialized units for every line, reports the
// manifest to the external system, and commits To Ship -> Delivered. All of it
// runs in one transaction: if the manifest sync exhausts its retries the
// allocation and the status change are rolled back together.
func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.UpdateStatusIfCurrent(ctx, orderID, enums.OrderStatusToShip, enums.OrderStatusDelivered, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if affected == 0 {
			return s.transitionConflict(ctx, repo, orderID, enums.OrderStatusToShip)
		}

		details, err := repo.FindDetailsByOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order details")
		}
		if len(details) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "order has no line items")
		}

		productIDs := make([]uuid.UUID, 0, len(details))
		for _, d := range details {
			productIDs = append(productIDs, d.ProductID)
		}
		products, err := repo.FindProductsByIDs(ctx, productIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}

		var manifest []ims.VariantManifest
		for _, d := range details {
			product, ok := products[d.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("product %s not found", d.ProductID))
			}

			variants, err := s.allocator.Allocate(ctx, tx, d.ProductID, d.OrderQuantity)
			if err != nil {
				return err
			}
			for _, v := range variants {
				manifest = append(manifest, ims.VariantManifest{
					Barcode:     v.Barcode,
					ProductCode: v.ProductCode,
					ProductName: product.Name,
					Category:    product.Category,
					Size:        product.Size,
				})
			}
		}

		return s.notifier.SendDeliveredManifest(ctx, orderID.String(), manifest)
	})
	if err != nil {
		return err
	}

	s.metrics.IncTransition(enums.OrderStatusDelivered.String())
	ctx = s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(ctx, "order delivered and inventory committed")
	return nil
}

// MarkReceived closes the order once the warehouse confirms physical receipt.
func (s *service) MarkReceived(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	if err := s.commitTransition(ctx, orderID, enums.OrderStatusDelivered, enums.OrderStatusReceived); err != nil {
		return err
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(ctx, "order received")
	return nil
}

// UpdateStatusDirect sets the status unconditionally, bypassing the forward
// transition rules. Administrative use only; every call is audit-logged with
// the acting user.
func (s *service) UpdateStatusDirect(ctx context.Context, input DirectStatusInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid order status %q", input.Status))
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return err
	}
	if order.Status == input.Status {
		s.logg.Info(ctx, fmt.Sprintf("order already %s, nothing to do", input.Status))
		return nil
	}

	affected, err := s.repo.UpdateStatusDirect(ctx, input.OrderID, input.Status, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	s.metrics.IncTransition(input.Status.String())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":  input.OrderID.String(),
		"status":    input.Status.String(),
		"actor_id":  input.ActorUserID.String(),
		"reason":    input.Reason,
	})
	s.logg.Warn(ctx, "order status overridden directly")
	return nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.loadOrder(ctx, orderID)
}

func (s *service) ListOrderSummaries(ctx context.Context, status *enums.OrderStatus) ([]OrderSummary, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid order status %q", *status))
	}
	summaries, err := s.repo.ListSummaries(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order summaries")
	}
	return summaries, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// commitTransition performs the compare-and-swap status write and resolves
// zero-row outcomes into NotFound or StateConflict.
func (s *service) commitTransition(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) error {
	affected, err := s.repo.UpdateStatusIfCurrent(ctx, orderID, from, to, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if affected == 0 {
		return s.transitionConflict(ctx, s.repo, orderID, from)
	}

	s.metrics.IncTransition(to.String())
	return nil
}

func (s *service) transitionConflict(ctx context.Context, repo Repository, orderID uuid.UUID, expected enums.OrderStatus) error {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("order is %s, transition requires %s", order.Status, expected))
}

func mapDecisionToStatus(decision Decision) (enums.OrderStatus, error) {
	switch decision {
	case DecisionConfirm:
		return enums.OrderStatusConfirmed, nil
	case DecisionReject:
		return enums.OrderStatusRejected, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "decision must be confirm or reject")
	}
}
