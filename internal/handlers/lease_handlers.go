package handlers

import (
	"fmt"
	"net/http"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// LeaseHandlers handles leases and their rent payments.
type LeaseHandlers struct {
	leases   services.LeaseService
	payments services.PaymentService
}

func NewLeaseHandlers(leases services.LeaseService, payments services.PaymentService) *LeaseHandlers {
	return &LeaseHandlers{leases: leases, payments: payments}
}

func (h *LeaseHandlers) GetLease(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	lease, err := h.leases.Get(c.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lease)
}

// MyLeases lists the caller's leases as a tenant.
func (h *LeaseHandlers) MyLeases(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return err
	}
	leases, err := h.leases.ListForTenant(c.Request().Context(), sess, limit, offset)
	if err != nil {
		return err
	}
	return list(c, leases, limit, offset)
}

type leaseTermsRequest struct {
	MonthlyRent   decimal.Decimal `json:"monthly_rent"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
}

// UpdateLease godoc
// @Summary  Set the rent, deposit and term of an active lease
// @Tags     leases
// @Accept   json
// @Produce  json
// @Param    id    path string            true "Lease ID"
// @Param    terms body leaseTermsRequest true "Terms, dates as YYYY-MM-DD"
// @Success  200 {object} models.Lease
// @Failure  409 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /leases/{id} [put]
func (h *LeaseHandlers) UpdateLease(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req leaseTermsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	terms := models.LeaseTerms{MonthlyRent: req.MonthlyRent, DepositAmount: req.DepositAmount}
	if terms.StartDate, err = common.ParseDate(req.StartDate, "start_date"); err != nil {
		return err
	}
	if terms.EndDate, err = common.ParseDate(req.EndDate, "end_date"); err != nil {
		return err
	}

	lease, err := h.leases.UpdateTerms(c.Request().Context(), sess, id, terms)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lease)
}

func (h *LeaseHandlers) EndLease(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	lease, err := h.leases.End(c.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lease)
}

// Agreement godoc
// @Summary  Download the lease agreement as a PDF
// @Tags     leases
// @Produce  application/pdf
// @Param    id path string true "Lease ID"
// @Success  200 {file} binary
// @Security BearerAuth
// @Router   /leases/{id}/agreement [get]
func (h *LeaseHandlers) Agreement(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	pdf, err := h.leases.RenderAgreement(c.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="lease-%s.pdf"`, id))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *LeaseHandlers) ListPayments(c echo.Context) error {
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
	payments, err := h.payments.ListForLease(c.Request().Context(), sess, id, limit, offset)
	if err != nil {
		return err
	}
	return list(c, payments, limit, offset)
}

type recordPaymentRequest struct {
	PaidAt string `json:"paid_at"`
}

// RecordPayment marks an installment paid. paid_at defaults to today.
func (h *LeaseHandlers) RecordPayment(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req recordPaymentRequest
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	paidAt, err := optionalDate(req.PaidAt, "paid_at")
	if err != nil {
		return err
	}
	payment, err := h.payments.Record(c.Request().Context(), sess, id, paidAt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *LeaseHandlers) CancelPayment(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	payment, err := h.payments.Cancel(c.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}
