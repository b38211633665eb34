package handlers

import (
	"net/http"
	"strconv"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/services"

	"github.com/labstack/echo/v4"
)

// PropertyHandlers handles HTTP requests for property listings
type PropertyHandlers struct {
	properties services.PropertyService
	leases     services.LeaseService
}

func NewPropertyHandlers(properties services.PropertyService, leases services.LeaseService) *PropertyHandlers {
	return &PropertyHandlers{properties: properties, leases: leases}
}

// ListProperties godoc
// @Summary  Search property listings
// @Tags     properties
// @Produce  json
// @Param    city          query string false "City"
// @Param    property_type query string false "Property type"
// @Param    purpose       query string false "sale or rent"
// @Param    status        query string false "Listing status"
// @Param    min_price     query string false "Minimum price"
// @Param    max_price     query string false "Maximum price"
// @Param    min_bedrooms  query int    false "Minimum bedrooms"
// @Param    owner_id      query string false "Owner ID, or 'me'"
// @Param    limit         query int    false "Page size"
// @Param    offset        query int    false "Page offset"
// @Success  200 {object} ListResponse[models.Property]
// @Security BearerAuth
// @Router   /properties [get]
func (h *PropertyHandlers) ListProperties(c echo.Context) error {
	filter := models.PropertyFilter{
		City:         c.QueryParam("city"),
		PropertyType: models.PropertyType(c.QueryParam("property_type")),
		Purpose:      models.PropertyPurpose(c.QueryParam("purpose")),
		Status:       models.PropertyStatus(c.QueryParam("status")),
	}

	var err error
	if filter.MinPrice, err = decimalQuery(c, "min_price"); err != nil {
		return err
	}
	if filter.MaxPrice, err = decimalQuery(c, "max_price"); err != nil {
		return err
	}
	if raw := c.QueryParam("min_bedrooms"); raw != "" {
		if filter.MinBedrooms, err = strconv.Atoi(raw); err != nil || filter.MinBedrooms < 0 {
			return common.NewValidationError("min_bedrooms", "min_bedrooms must be a non-negative integer")
		}
	}
	switch owner := c.QueryParam("owner_id"); owner {
	case "":
	case "me":
		sess, err := session(c)
		if err != nil {
			return err
		}
		id := sess.UserID()
		filter.OwnerID = &id
	default:
		id, err := common.ValidateUUID(owner, "owner_id")
		if err != nil {
			return err
		}
		filter.OwnerID = &id
	}
	if filter.Limit, filter.Offset, err = common.PaginationFromQuery(c); err != nil {
		return err
	}

	properties, err := h.properties.Search(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return list(c, properties, filter.Limit, filter.Offset)
}

// CreateProperty godoc
// @Summary  Create a listing owned by the caller
// @Tags     properties
// @Accept   json
// @Produce  json
// @Param    property body models.PropertyInput true "Property"
// @Success  201 {object} models.Property
// @Failure  400 {object} common.ErrorResponse
// @Failure  403 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /properties [post]
func (h *PropertyHandlers) CreateProperty(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	var input models.PropertyInput
	if err := bind(c, &input); err != nil {
		return err
	}
	property, err := h.properties.Create(c.Request().Context(), sess, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, property)
}

func (h *PropertyHandlers) GetProperty(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	property, err := h.properties.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, property)
}

// UpdateProperty godoc
// @Summary  Edit a listing
// @Description Allowed for the owner, a delegate holding edit rights, or an admin. The owner never changes.
// @Tags     properties
// @Accept   json
// @Produce  json
// @Param    id       path string true "Property ID"
// @Param    property body models.PropertyInput true "Property"
// @Success  200 {object} models.Property
// @Failure  403 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /properties/{id} [put]
func (h *PropertyHandlers) UpdateProperty(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var input models.PropertyInput
	if err := bind(c, &input); err != nil {
		return err
	}
	property, err := h.properties.Update(c.Request().Context(), sess, id, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, property)
}

type propertyStatusRequest struct {
	Status models.PropertyStatus `json:"status"`
}

func (h *PropertyHandlers) UpdatePropertyStatus(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req propertyStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	property, err := h.properties.UpdateStatus(c.Request().Context(), sess, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, property)
}

func (h *PropertyHandlers) DeleteProperty(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.properties.Delete(c.Request().Context(), sess, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CurrentTenants lists the tenants holding an active lease on the property.
func (h *PropertyHandlers) CurrentTenants(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	tenants, err := h.properties.CurrentTenants(c.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	if tenants == nil {
		tenants = []*models.Profile{}
	}
	return c.JSON(http.StatusOK, tenants)
}

func (h *PropertyHandlers) ListLeases(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return err
	}
	leases, err := h.leases.ListForProperty(c.Request().Context(), sess, id, limit, offset)
	if err != nil {
		return err
	}
	return list(c, leases, limit, offset)
}
