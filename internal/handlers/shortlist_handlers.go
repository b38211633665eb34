package handlers

import (
	"net/http"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ShortlistHandlers serves the comparison and favorites lists. The list kind is fixed per route.
type ShortlistHandlers struct {
	shortlists services.ShortlistService
}

func NewShortlistHandlers(shortlists services.ShortlistService) *ShortlistHandlers {
	return &ShortlistHandlers{shortlists: shortlists}
}

type shortlistAddRequest struct {
	PropertyID uuid.UUID `json:"property_id"`
}

type shortlistAddResponse struct {
	Result     string    `json:"result"`
	PropertyID uuid.UUID `json:"property_id"`
	Capacity   int       `json:"capacity,omitempty"`
}

// Add godoc
// @Summary  Add a property to the comparison or favorites list
// @Description A full comparison list is left unchanged and the result is at_capacity.
// @Tags     shortlists
// @Accept   json
// @Produce  json
// @Param    kind     path string              true "comparison or favorites"
// @Param    property body shortlistAddRequest true "Property"
// @Success  200 {object} shortlistAddResponse
// @Security BearerAuth
// @Router   /shortlists/{kind} [post]
func (h *ShortlistHandlers) Add(kind models.ShortlistKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session(c)
		if err != nil {
			return err
		}
		var req shortlistAddRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if req.PropertyID == uuid.Nil {
			return common.NewValidationError("property_id", "property_id is required")
		}
		result, err := h.shortlists.Add(c.Request().Context(), sess, kind, req.PropertyID)
		if err != nil {
			return err
		}
		resp := shortlistAddResponse{Result: result.String(), PropertyID: req.PropertyID}
		if kind == models.ShortlistComparison {
			resp.Capacity = models.ComparisonCapacity
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func (h *ShortlistHandlers) List(kind models.ShortlistKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session(c)
		if err != nil {
			return err
		}
		items, err := h.shortlists.List(c.Request().Context(), sess, kind)
		if err != nil {
			return err
		}
		if items == nil {
			items = []models.PropertySnapshot{}
		}
		return c.JSON(http.StatusOK, items)
	}
}

func (h *ShortlistHandlers) Contains(kind models.ShortlistKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session(c)
		if err != nil {
			return err
		}
		propertyID, err := pathUUID(c, "propertyId")
		if err != nil {
			return err
		}
		ok, err := h.shortlists.Contains(c.Request().Context(), sess, kind, propertyID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]bool{"contains": ok})
	}
}

func (h *ShortlistHandlers) Remove(kind models.ShortlistKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session(c)
		if err != nil {
			return err
		}
		propertyID, err := pathUUID(c, "propertyId")
		if err != nil {
			return err
		}
		if err := h.shortlists.Remove(c.Request().Context(), sess, kind, propertyID); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (h *ShortlistHandlers) Clear(kind models.ShortlistKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session(c)
		if err != nil {
			return err
		}
		if err := h.shortlists.Clear(c.Request().Context(), sess, kind); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
