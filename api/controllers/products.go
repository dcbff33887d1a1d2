package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vmshq/vms-backend/api/responses"
	"github.com/vmshq/vms-backend/api/validators"
	"github.com/vmshq/vms-backend/internal/products"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
	"github.com/vmshq/vms-backend/pkg/logger"
)

type createProductRequest struct {
	Name            string  `json:"productName" validate:"required"`
	Description     string  `json:"productDescription"`
	Size            string  `json:"size" validate:"required"`
	Category        string  `json:"category" validate:"required"`
	Color           string  `json:"color"`
	UnitPrice       float64 `json:"unitPrice" validate:"required,gt=0"`
	InitialQuantity int     `json:"quantity" validate:"min=0"`
	ImageBase64     string  `json:"image"`
}

type addQuantityRequest struct {
	ProductID string `json:"productID" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type updateProductRequest struct {
	Name        *string  `json:"productName"`
	Description *string  `json:"productDescription"`
	Color       *string  `json:"color"`
	UnitPrice   *float64 `json:"unitPrice"`
	ImageBase64 *string  `json:"image"`
}

func CreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), products.CreateProductInput{
			Name:            req.Name,
			Description:     req.Description,
			Size:            req.Size,
			Category:        req.Category,
			Color:           req.Color,
			UnitPrice:       decimal.NewFromFloat(req.UnitPrice),
			InitialQuantity: req.InitialQuantity,
			ImageBase64:     req.ImageBase64,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AddProductQuantity(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		variants, err := svc.AddQuantity(r.Context(), productID, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message":  "quantity added",
			"quantity": len(variants),
		})
	}
}

func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := strings.TrimSpace(r.URL.Query().Get("category"))
		activeOnly := r.URL.Query().Get("include_inactive") == ""

		list, err := svc.ListProducts(r.Context(), category, activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func UpdateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := products.UpdateProductInput{
			Name:        req.Name,
			Description: req.Description,
			Color:       req.Color,
			ImageBase64: req.ImageBase64,
		}
		if req.UnitPrice != nil {
			price := decimal.NewFromFloat(*req.UnitPrice)
			input.UnitPrice = &price
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeactivateProduct soft-deletes a listing; serialized units already sold
// keep their references.
func DeactivateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message":   "product deactivated",
			"productID": productID,
		})
	}
}

func parseProductID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "productID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}
