package handlers

import (
	"net/http"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MaintenanceHandlers handles maintenance requests on properties.
type MaintenanceHandlers struct {
	maintenance services.MaintenanceService
}

func NewMaintenanceHandlers(maintenance services.MaintenanceService) *MaintenanceHandlers {
	return &MaintenanceHandlers{maintenance: maintenance}
}

func (h *MaintenanceHandlers) ListForProperty(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	propertyID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return err
	}
	requests, err := h.maintenance.ListForProperty(c.Request().Context(), sess, propertyID, limit, offset)
	if err != nil {
		return err
	}
	return list(c, requests, limit, offset)
}

// Create godoc
// @Summary  Open a maintenance request
// @Description Open to the property's active tenants and to anyone who manages the property.
// @Tags     maintenance
// @Accept   json
// @Produce  json
// @Param    id      path string             true "Property ID"
// @Param    request body services.MaintenanceInput true "Request"
// @Success  201 {object} models.MaintenanceRequest
// @Security BearerAuth
// @Router   /properties/{id}/maintenance [post]
func (h *MaintenanceHandlers) Create(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	propertyID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var input services.MaintenanceInput
	if err := bind(c, &input); err != nil {
		return err
	}
	created, err := h.maintenance.Create(c.Request().Context(), sess, propertyID, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

type maintenanceStatusRequest struct {
	Status models.MaintenanceStatus `json:"status"`
}

func (h *MaintenanceHandlers) UpdateStatus(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req maintenanceStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.maintenance.UpdateStatus(c.Request().Context(), sess, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

type assignVendorRequest struct {
	VendorID uuid.UUID `json:"vendor_id"`
}

func (h *MaintenanceHandlers) AssignVendor(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req assignVendorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.VendorID == uuid.Nil {
		return common.NewValidationError("vendor_id", "vendor_id is required")
	}
	updated, err := h.maintenance.AssignVendor(c.Request().Context(), sess, id, req.VendorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}
