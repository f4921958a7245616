package handlers

import (
	"net/http"
	"strconv"
	"time"

	"rentfolio/internal/common"
	"rentfolio/internal/models"
	"rentfolio/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// 10 MB cap for receipt images/PDFs
const maxReceiptSize = 10 << 20

type PaymentHandlers struct {
	paymentService  services.PaymentService
	leaseService    services.LeaseService
	propertyService services.PropertyService
}

func NewPaymentHandlers(paymentService services.PaymentService, leaseService services.LeaseService, propertyService services.PropertyService) *PaymentHandlers {
	return &PaymentHandlers{
		paymentService:  paymentService,
		leaseService:    leaseService,
		propertyService: propertyService,
	}
}

// PaymentRequest represents the create payload
type PaymentRequest struct {
	LeaseID       string  `json:"lease_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"required"`
	DueDate       string  `json:"due_date" validate:"required"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	Status        string  `json:"status"`
	Notes         *string `json:"notes"`
}

// Create records a payment against a lease owned by the caller
func (h *PaymentHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	leaseID, err := common.ValidateUUID(req.LeaseID, "lease_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requireLeaseOwner(c, leaseID); err != nil {
		return err
	}

	if err := common.ValidateDateFormat(req.DueDate, "due_date"); err != nil {
		return common.SendValidationError(c, "due_date", err.Error())
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return common.SendValidationError(c, "due_date", "due_date must be in YYYY-MM-DD format")
	}

	payment := &models.Payment{
		LeaseID:       leaseID,
		Amount:        req.Amount,
		DueDate:       dueDate,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		Notes:         req.Notes,
	}

	if err := h.paymentService.Create(ctx, payment); err != nil {
		return common.SendValidationError(c, "payment", err.Error())
	}

	return c.JSON(http.StatusCreated, payment)
}

// Get returns a single payment to either side of its lease
func (h *PaymentHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payment, err := h.paymentService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Payment")
	}

	if err := h.requireLeaseParticipant(c, payment.LeaseID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payment)
}

// ListByLease returns a lease's payments
func (h *PaymentHandlers) ListByLease(c echo.Context) error {
	ctx := c.Request().Context()

	leaseID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requireLeaseParticipant(c, leaseID); err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err = common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payments, err := h.paymentService.ListByLease(ctx, leaseID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list payments")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"limit":    limit,
		"offset":   offset,
	})
}

// UpdateStatusRequest carries the new payment status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus transitions a payment's status. Moving to paid stamps the
// payment date. Only the owner of the leased property may do this.
func (h *PaymentHandlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payment, err := h.paymentService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Payment")
	}
	if err := h.requireLeaseOwner(c, payment.LeaseID); err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.paymentService.UpdateStatus(ctx, id, req.Status); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Payment")
		}
		return common.SendValidationError(c, "status", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Status updated"})
}

// UploadReceipt attaches a receipt file to the payment. The renter on the
// lease or the property owner may upload one.
func (h *PaymentHandlers) UploadReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payment, err := h.paymentService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Payment")
	}
	if err := h.requireLeaseParticipant(c, payment.LeaseID); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxReceiptSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds the 10MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read uploaded file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	receiptURL, err := h.paymentService.AttachReceipt(ctx, id, fileHeader.Filename, file, fileHeader.Size, contentType)
	if err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Payment")
		}
		return common.SendValidationError(c, "receipt", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"receipt_url": receiptURL})
}

// ReceiptURL returns a short-lived presigned URL for the stored receipt
func (h *PaymentHandlers) ReceiptURL(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payment, err := h.paymentService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Payment")
	}
	if err := h.requireLeaseParticipant(c, payment.LeaseID); err != nil {
		return err
	}

	url, err := h.paymentService.GetReceiptURL(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Payment")
		}
		return common.SendValidationError(c, "receipt", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// Delete removes a payment record
func (h *PaymentHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payment, err := h.paymentService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Payment")
	}
	if err := h.requireLeaseOwner(c, payment.LeaseID); err != nil {
		return err
	}

	if err := h.paymentService.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Payment")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete payment")
	}

	return c.NoContent(http.StatusNoContent)
}

// requireLeaseOwner restricts an action to the owner of the leased property
func (h *PaymentHandlers) requireLeaseOwner(c echo.Context, leaseID uuid.UUID) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	lease, err := h.leaseService.GetByID(ctx, leaseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lease not found")
	}
	property, err := h.propertyService.GetByID(ctx, lease.PropertyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}
	if property.OwnerID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not your lease")
	}
	return nil
}

// requireLeaseParticipant allows the renter on the lease or the owner of
// its property
func (h *PaymentHandlers) requireLeaseParticipant(c echo.Context, leaseID uuid.UUID) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	lease, err := h.leaseService.GetByID(ctx, leaseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lease not found")
	}
	if lease.TenantID == userID {
		return nil
	}

	property, err := h.propertyService.GetByID(ctx, lease.PropertyID)
	if err == nil && property.OwnerID == userID {
		return nil
	}
	return echo.NewHTTPError(http.StatusForbidden, "Not your lease")
}
