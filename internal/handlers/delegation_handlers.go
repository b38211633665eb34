package handlers

import (
	"net/http"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// DelegationHandlers manages agent and manager assignments on properties.
type DelegationHandlers struct {
	delegation services.DelegationService
}

func NewDelegationHandlers(delegation services.DelegationService) *DelegationHandlers {
	return &DelegationHandlers{delegation: delegation}
}

type assignAgentRequest struct {
	AgentID              uuid.UUID       `json:"agent_id"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	IsExclusive          bool            `json:"is_exclusive"`
	StartDate            string          `json:"start_date"`
	EndDate              string          `json:"end_date"`
}

func (h *DelegationHandlers) ListAgents(c echo.Context) error {
	propertyID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	agents, err := h.delegation.ListAgents(c.Request().Context(), propertyID)
	if err != nil {
		return err
	}
	if agents == nil {
		agents = []*models.AgentAssignment{}
	}
	return c.JSON(http.StatusOK, agents)
}

// AssignAgent godoc
// @Summary  Assign or re-assign an agent to a property
// @Description Re-assigning the same agent updates the existing assignment. An exclusive assignment ends the others.
// @Tags     delegation
// @Accept   json
// @Produce  json
// @Param    id         path string             true "Property ID"
// @Param    assignment body assignAgentRequest true "Assignment"
// @Success  200 {object} models.AgentAssignment
// @Failure  409 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /properties/{id}/agents [put]
func (h *DelegationHandlers) AssignAgent(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	propertyID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req assignAgentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.AgentID == uuid.Nil {
		return common.NewValidationError("agent_id", "agent_id is required")
	}

	terms := models.AgentTerms{
		CommissionPercentage: req.CommissionPercentage,
		IsExclusive:          req.IsExclusive,
	}
	start, err := optionalDate(req.StartDate, "start_date")
	if err != nil {
		return err
	}
	if start != nil {
		terms.StartDate = *start
	}
	if terms.EndDate, err = optionalDate(req.EndDate, "end_date"); err != nil {
		return err
	}

	assignment, err := h.delegation.AssignAgent(c.Request().Context(), sess, propertyID, req.AgentID, terms)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignment)
}

func (h *DelegationHandlers) RemoveAgent(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	propertyID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	agentID, err := pathUUID(c, "agentId")
	if err != nil {
		return err
	}
	if err := h.delegation.RemoveAgent(c.Request().Context(), sess, propertyID, agentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DelegationHandlers) GetManager(c echo.Context) error {
	propertyID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	manager, err := h.delegation.GetManager(c.Request().Context(), propertyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, manager)
}

type assignManagerRequest struct {
	ManagerID uuid.UUID `json:"manager_id"`
}

// AssignManager replaces the property's manager.
func (h *DelegationHandlers) AssignManager(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	propertyID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req assignManagerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ManagerID == uuid.Nil {
		return common.NewValidationError("manager_id", "manager_id is required")
	}
	assignment, err := h.delegation.AssignManager(c.Request().Context(), sess, propertyID, req.ManagerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignment)
}

func (h *DelegationHandlers) RemoveManager(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	propertyID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.delegation.RemoveManager(c.Request().Context(), sess, propertyID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MyAgentProperties lists the properties the calling agent is assigned to.
func (h *DelegationHandlers) MyAgentProperties(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return err
	}
	properties, err := h.delegation.ListAgentProperties(c.Request().Context(), sess.UserID(), limit, offset)
	if err != nil {
		return err
	}
	return list(c, properties, limit, offset)
}

func (h *DelegationHandlers) MyManagedProperties(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return err
	}
	properties, err := h.delegation.ListManagedProperties(c.Request().Context(), sess.UserID(), limit, offset)
	if err != nil {
		return err
	}
	return list(c, properties, limit, offset)
}
