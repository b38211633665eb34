package handlers

import (
	"net/http"

	"estatehub/internal/common"
	"estatehub/internal/services"

	"github.com/labstack/echo/v4"
)

// OnboardingHandlers drives the tenant credential flow.
type OnboardingHandlers struct {
	onboarding services.OnboardingService
}

func NewOnboardingHandlers(onboarding services.OnboardingService) *OnboardingHandlers {
	return &OnboardingHandlers{onboarding: onboarding}
}

func (h *OnboardingHandlers) State(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	state, err := h.onboarding.State(c.Request().Context(), sess.UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// IssueCredential godoc
// @Summary  Issue a signed onboarding credential and its QR image
// @Description Requires the tenant role and an approved KYC record. Issuing again supersedes the previous credential.
// @Tags     onboarding
// @Produce  json
// @Success  201 {object} models.IssuedCredential
// @Failure  403 {object} common.ErrorResponse
// @Failure  429 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /onboarding/credential [post]
func (h *OnboardingHandlers) IssueCredential(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	credential, err := h.onboarding.IssueCredential(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, credential)
}

type scanRequest struct {
	Token string `json:"token"`
}

// ScanCredential godoc
// @Summary  Exchange a tenant credential for an active lease
// @Description Scanning again for a pair with an active lease returns the existing lease with a notice.
// @Tags     onboarding
// @Accept   json
// @Produce  json
// @Param    id   path string      true "Property ID"
// @Param    scan body scanRequest true "Scanned credential"
// @Success  201 {object} models.OnboardResult
// @Success  200 {object} models.OnboardResult
// @Failure  422 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /properties/{id}/onboard [post]
func (h *OnboardingHandlers) ScanCredential(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	propertyID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req scanRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(req.Token, "token"); err != nil {
		return err
	}

	result, err := h.onboarding.ScanCredential(c.Request().Context(), sess, req.Token, propertyID)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, result)
}
