package handlers

import (
	"net/http"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/services"

	"github.com/labstack/echo/v4"
)

// KYCHandlers handles identity verification submissions and reviews.
type KYCHandlers struct {
	kyc services.KYCService
}

func NewKYCHandlers(kyc services.KYCService) *KYCHandlers {
	return &KYCHandlers{kyc: kyc}
}

// GetKYC returns the caller's record. Reviewers may pass user_id to read another user's.
func (h *KYCHandlers) GetKYC(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	userID := sess.UserID()
	if raw := c.QueryParam("user_id"); raw != "" {
		if userID, err = common.ValidateUUID(raw, "user_id"); err != nil {
			return err
		}
	}
	record, err := h.kyc.Get(c.Request().Context(), sess, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

// SubmitKYC godoc
// @Summary  Submit identity documents for verification
// @Tags     kyc
// @Accept   multipart/form-data
// @Produce  json
// @Param    id_type   formData string true "passport, national_id, drivers_license or residence_permit"
// @Param    id_number formData string true "Document number"
// @Param    front     formData file   true "Document front"
// @Param    back      formData file   true "Document back"
// @Success  201 {object} models.KYCVerification
// @Failure  409 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /kyc [post]
func (h *KYCHandlers) SubmitKYC(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	submission := services.KYCSubmission{
		IDType:   models.IDType(c.FormValue("id_type")),
		IDNumber: c.FormValue("id_number"),
	}
	if submission.Front, err = formFile(c, "front"); err != nil {
		return err
	}
	if submission.Back, err = formFile(c, "back"); err != nil {
		return err
	}

	record, err := h.kyc.Submit(c.Request().Context(), sess, submission)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, record)
}

type kycReviewRequest struct {
	Approve bool    `json:"approve"`
	Reason  *string `json:"reason"`
}

// ReviewKYC godoc
// @Summary  Approve or reject a pending verification
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    userId path string           true "User ID"
// @Param    review body kycReviewRequest true "Decision"
// @Success  200 {object} models.KYCVerification
// @Failure  403 {object} common.ErrorResponse
// @Failure  409 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /admin/kyc/{userId}/review [post]
func (h *KYCHandlers) ReviewKYC(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return err
	}
	var req kycReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	record, err := h.kyc.Review(c.Request().Context(), sess, userID, req.Approve, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}
