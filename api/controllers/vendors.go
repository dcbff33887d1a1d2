package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vmshq/vms-backend/api/responses"
	"github.com/vmshq/vms-backend/api/validators"
	"github.com/vmshq/vms-backend/internal/vendors"
	"github.com/vmshq/vms-backend/pkg/db/models"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
	"github.com/vmshq/vms-backend/pkg/logger"
)

type createVendorRequest struct {
	Name string `json:"vendorName" validate:"required"`
}

func ListVendors(repo vendors.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.List(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CreateVendor(repo vendors.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createVendorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor := &models.Vendor{
			ID:       uuid.New(),
			Name:     req.Name,
			IsActive: true,
		}
		if _, err := repo.Create(r.Context(), vendor); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vendor)
	}
}
