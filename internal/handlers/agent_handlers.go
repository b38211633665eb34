package handlers

import (
	"net/http"

	"estatehub/internal/models"
	"estatehub/internal/services"

	"github.com/labstack/echo/v4"
)

// AgentHandlers serves an agent's own territories and specializations.
type AgentHandlers struct {
	territories services.TerritoryService
}

func NewAgentHandlers(territories services.TerritoryService) *AgentHandlers {
	return &AgentHandlers{territories: territories}
}

type territoryRequest struct {
	Name      string  `json:"name"`
	Region    *string `json:"region"`
	IsPrimary bool    `json:"is_primary"`
}

func (h *AgentHandlers) ListTerritories(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	territories, err := h.territories.ListTerritories(c.Request().Context(), sess.UserID())
	if err != nil {
		return err
	}
	if territories == nil {
		territories = []*models.AgentTerritory{}
	}
	return c.JSON(http.StatusOK, territories)
}

// AddTerritory godoc
// @Summary  Add a territory for the calling agent
// @Description The first territory becomes primary. Adding one with is_primary demotes the previous primary.
// @Tags     agents
// @Accept   json
// @Produce  json
// @Param    territory body territoryRequest true "Territory"
// @Success  201 {object} models.AgentTerritory
// @Security BearerAuth
// @Router   /agents/me/territories [post]
func (h *AgentHandlers) AddTerritory(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	var req territoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	territory, err := h.territories.AddTerritory(c.Request().Context(), sess, req.Name, req.Region, req.IsPrimary)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, territory)
}

func (h *AgentHandlers) SetPrimaryTerritory(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.territories.SetPrimary(c.Request().Context(), sess, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AgentHandlers) DeleteTerritory(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.territories.DeleteTerritory(c.Request().Context(), sess, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type specializationRequest struct {
	PropertyType    models.PropertyType `json:"property_type"`
	Certification   map[string]any      `json:"certification"`
	YearsExperience int                 `json:"years_experience"`
}

func (h *AgentHandlers) ListSpecializations(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	specs, err := h.territories.ListSpecializations(c.Request().Context(), sess.UserID())
	if err != nil {
		return err
	}
	if specs == nil {
		specs = []*models.AgentSpecialization{}
	}
	return c.JSON(http.StatusOK, specs)
}

// UpsertSpecialization creates or replaces the specialization for one property type.
func (h *AgentHandlers) UpsertSpecialization(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	var req specializationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	spec, err := h.territories.UpsertSpecialization(c.Request().Context(), sess, req.PropertyType, req.Certification, req.YearsExperience)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, spec)
}

func (h *AgentHandlers) DeleteSpecialization(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	propertyType := models.PropertyType(c.Param("type"))
	if err := h.territories.DeleteSpecialization(c.Request().Context(), sess, propertyType); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
