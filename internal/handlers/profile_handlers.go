package handlers

import (
	"net/http"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ProfileHandlers serves the caller's profile, avatar and roles, plus admin role grants.
type ProfileHandlers struct {
	identity services.IdentityService
}

func NewProfileHandlers(identity services.IdentityService) *ProfileHandlers {
	return &ProfileHandlers{identity: identity}
}

// GetMe godoc
// @Summary  Get the caller's profile
// @Tags     profile
// @Produce  json
// @Success  200 {object} models.Profile
// @Failure  404 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /me/profile [get]
func (h *ProfileHandlers) GetMe(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	profile, err := h.identity.GetProfile(c.Request().Context(), sess.UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// CreateMe godoc
// @Summary  Create or replace the caller's profile
// @Tags     profile
// @Accept   json
// @Produce  json
// @Param    profile body models.ProfileInput true "Profile"
// @Success  201 {object} models.Profile
// @Security BearerAuth
// @Router   /me/profile [post]
func (h *ProfileHandlers) CreateMe(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	var input models.ProfileInput
	if err := bind(c, &input); err != nil {
		return err
	}
	profile, err := h.identity.UpsertOwnProfile(c.Request().Context(), sess, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, profile)
}

// UpdateMe godoc
// @Summary  Update the caller's profile
// @Tags     profile
// @Accept   json
// @Produce  json
// @Param    profile body models.ProfileInput true "Profile"
// @Success  200 {object} models.Profile
// @Failure  409 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /me/profile [put]
func (h *ProfileHandlers) UpdateMe(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	var input models.ProfileInput
	if err := bind(c, &input); err != nil {
		return err
	}
	profile, err := h.identity.UpdateOwnProfile(c.Request().Context(), sess, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandlers) DeactivateMe(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	if err := h.identity.DeactivateOwnProfile(c.Request().Context(), sess); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadAvatar godoc
// @Summary  Upload the caller's avatar
// @Tags     profile
// @Accept   multipart/form-data
// @Produce  json
// @Param    avatar formData file true "Avatar image"
// @Success  200 {object} models.Profile
// @Security BearerAuth
// @Router   /me/avatar [post]
func (h *ProfileHandlers) UploadAvatar(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	file, err := formFile(c, "avatar")
	if err != nil {
		return err
	}
	profile, err := h.identity.UploadAvatar(c.Request().Context(), sess, file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// MyRoles returns the held roles and the role the request is acting as.
func (h *ProfileHandlers) MyRoles(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.View())
}

func (h *ProfileHandlers) GetProfile(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.identity.GetProfile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

type roleRequest struct {
	Role string `json:"role"`
}

type roleTarget struct {
	userID uuid.UUID
	role   models.Role
}

func (h *ProfileHandlers) roleChange(c echo.Context, apply func(models.Session, roleTarget) error) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	userID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	raw := c.QueryParam("role")
	if raw == "" {
		var req roleRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		raw = req.Role
	}
	if err := common.ValidateRequiredString(raw, "role"); err != nil {
		return err
	}
	role, err := models.ParseRole(raw)
	if err != nil {
		return err
	}
	if err := apply(sess, roleTarget{userID: userID, role: role}); err != nil {
		return err
	}
	roles, err := h.identity.HeldRoles(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user_id": userID, "held_roles": roles.Sorted()})
}

// AssignRole godoc
// @Summary  Grant a role to a user
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    id   path string true "User ID"
// @Param    role body roleRequest true "Role"
// @Success  200 {object} map[string]any
// @Failure  403 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /admin/users/{id}/roles [post]
func (h *ProfileHandlers) AssignRole(c echo.Context) error {
	return h.roleChange(c, func(sess models.Session, t roleTarget) error {
		return h.identity.AssignRole(c.Request().Context(), sess, t.userID, t.role)
	})
}

// RevokeRole accepts the role as a query parameter or a JSON body.
func (h *ProfileHandlers) RevokeRole(c echo.Context) error {
	return h.roleChange(c, func(sess models.Session, t roleTarget) error {
		return h.identity.RevokeRole(c.Request().Context(), sess, t.userID, t.role)
	})
}
