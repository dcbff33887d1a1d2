package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vmshq/vms-backend/api/middleware"
	"github.com/vmshq/vms-backend/api/responses"
	"github.com/vmshq/vms-backend/api/validators"
	internalorders "github.com/vmshq/vms-backend/internal/orders"
	"github.com/vmshq/vms-backend/internal/products"
	"github.com/vmshq/vms-backend/pkg/enums"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
	"github.com/vmshq/vms-backend/pkg/logger"
)

type receiveOrderItemRequest struct {
	ProductID    *uuid.UUID `json:"productID"`
	ProductName  string     `json:"productName"`
	Size         string     `json:"size"`
	Category     string     `json:"category"`
	Quantity     int        `json:"quantity" validate:"required,min=1"`
	ExpectedDate *time.Time `json:"expectedDate"`
}

type receiveOrderRequest struct {
	CustomerID       *uuid.UUID                `json:"customerID"`
	CustomerName     string                    `json:"customerName"`
	WarehouseName    string                    `json:"warehouseName"`
	WarehouseAddress string                    `json:"warehouseAddress"`
	VendorID         *uuid.UUID                `json:"vendorID"`
	OrderDate        *time.Time                `json:"orderDate"`
	Products         []receiveOrderItemRequest `json:"products" validate:"required,min=1,dive"`
}

type decisionRequest struct {
	OrderStatus string `json:"orderStatus" validate:"required"`
}

type directStatusRequest struct {
	OrderID string `json:"orderID" validate:"required"`
	Status  string `json:"status" validate:"required"`
	Reason  string `json:"reason"`
}

// ReceiveOrder is the intake endpoint. The destination is referenced by
// customerID or by customerName; line items may reference a product by ID or
// by its (name, size, category) listing attributes.
func ReceiveOrder(svc internalorders.Service, catalog products.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req receiveOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.ReceiveOrderInput{
			CustomerID:    req.CustomerID,
			CustomerName:  req.CustomerName,
			WarehouseName: req.WarehouseName,
			Address:       req.WarehouseAddress,
			VendorID:      req.VendorID,
		}
		if req.OrderDate != nil {
			input.OrderDate = *req.OrderDate
		} else {
			input.OrderDate = time.Now().UTC()
		}

		for _, item := range req.Products {
			productID, err := resolveProduct(r, catalog, item)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Items = append(input.Items, internalorders.ReceiveOrderItem{
				ProductID:    productID,
				Quantity:     item.Quantity,
				ExpectedDate: item.ExpectedDate,
			})
		}

		order, err := svc.ReceiveOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message": "purchase order created",
			"orderID": order.ID,
		})
	}
}

func resolveProduct(r *http.Request, catalog products.Repository, item receiveOrderItemRequest) (uuid.UUID, error) {
	if item.ProductID != nil {
		return *item.ProductID, nil
	}
	if item.ProductName == "" || item.Size == "" || item.Category == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "each product needs a productID or productName/size/category")
	}
	product, err := catalog.FindByAttributes(r.Context(), item.ProductName, item.Size, item.Category)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product")
	}
	return product.ID, nil
}

func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *enums.OrderStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		summaries, err := svc.ListOrderSummaries(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summaries)
	}
}

// ConfirmOrder handles the vendor decision on a pending order. The body names
// the target status: Confirmed or Rejected.
func ConfirmOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req decisionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var decision internalorders.Decision
		switch enums.OrderStatus(req.OrderStatus) {
		case enums.OrderStatusConfirmed:
			decision = internalorders.DecisionConfirm
		case enums.OrderStatusRejected:
			decision = internalorders.DecisionReject
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "orderStatus must be Confirmed or Rejected"))
			return
		}

		if err := svc.ConfirmOrReject(r.Context(), internalorders.DecisionInput{OrderID: orderID, Decision: decision}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message": "order " + strings.ToLower(req.OrderStatus),
			"orderID": orderID,
		})
	}
}

func MarkOrderToShip(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc.MarkToShip, "order marked to ship", logg)
}

func MarkOrderDelivered(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc.MarkDelivered, "order delivered", logg)
}

func MarkOrderReceived(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc.MarkReceived, "order received", logg)
}

// UpdateOrderStatus is the administrative override; routing restricts it to
// the admin role.
func UpdateOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req directStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		actorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		err = svc.UpdateStatusDirect(r.Context(), internalorders.DirectStatusInput{
			OrderID:     orderID,
			Status:      status,
			ActorUserID: actorID,
			Reason:      req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message": "order status updated",
			"orderID": orderID,
			"status":  status,
		})
	}
}

func transitionHandler(fn func(ctx context.Context, orderID uuid.UUID) error, message string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := fn(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message": message,
			"orderID": orderID,
		})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}
