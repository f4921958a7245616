package handlers

import (
	"net/http"
	"strconv"
	"time"

	"rentfolio/internal/common"
	"rentfolio/internal/models"
	"rentfolio/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type LeaseHandlers struct {
	leaseService    services.LeaseService
	propertyService services.PropertyService
}

func NewLeaseHandlers(leaseService services.LeaseService, propertyService services.PropertyService) *LeaseHandlers {
	return &LeaseHandlers{
		leaseService:    leaseService,
		propertyService: propertyService,
	}
}

// LeaseRequest represents the create/update payload
type LeaseRequest struct {
	PropertyID string  `json:"property_id" validate:"required"`
	TenantID   string  `json:"tenant_id" validate:"required"`
	StartDate  string  `json:"start_date" validate:"required"`
	EndDate    string  `json:"end_date" validate:"required"`
	RentAmount float64 `json:"rent_amount" validate:"required"`
	PaymentDay int     `json:"payment_day"`
	Status     string  `json:"status"`
}

func (r *LeaseRequest) toModel() (*models.Lease, error) {
	propertyID, err := common.ValidateUUID(r.PropertyID, "property_id")
	if err != nil {
		return nil, err
	}
	tenantID, err := common.ValidateUUID(r.TenantID, "tenant_id")
	if err != nil {
		return nil, err
	}

	if err := common.ValidateDateFormat(r.StartDate, "start_date"); err != nil {
		return nil, err
	}
	if err := common.ValidateDateFormat(r.EndDate, "end_date"); err != nil {
		return nil, err
	}
	startDate, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return nil, err
	}

	return &models.Lease{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  startDate,
		EndDate:    endDate,
		RentAmount: r.RentAmount,
		PaymentDay: r.PaymentDay,
		Status:     r.Status,
	}, nil
}

// Create adds a lease on a property owned by the caller
func (h *LeaseHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req LeaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	lease, err := req.toModel()
	if err != nil {
		return common.SendValidationError(c, "lease", err.Error())
	}

	property, err := h.propertyService.GetByID(ctx, lease.PropertyID)
	if err != nil {
		return common.SendNotFoundError(c, "Property")
	}
	if property.OwnerID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not your property")
	}

	if err := h.leaseService.Create(ctx, lease); err != nil {
		return common.SendValidationError(c, "lease", err.Error())
	}

	return c.JSON(http.StatusCreated, lease)
}

// Get returns a single lease
func (h *LeaseHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lease, err := h.leaseService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Lease")
	}

	if err := h.requireParticipant(c, lease); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lease)
}

// ListByProperty returns leases attached to a property
func (h *LeaseHandlers) ListByProperty(c echo.Context) error {
	ctx := c.Request().Context()

	propertyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err = common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	leases, err := h.leaseService.ListByProperty(ctx, propertyID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list leases")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"leases": leases,
		"limit":  limit,
		"offset": offset,
	})
}

// ListMine returns the caller's leases as a renter
func (h *LeaseHandlers) ListMine(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	leases, err := h.leaseService.ListByTenant(ctx, userID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list leases")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"leases": leases,
		"limit":  limit,
		"offset": offset,
	})
}

// Update replaces the mutable fields of a lease
func (h *LeaseHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	existing, err := h.leaseService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Lease")
	}

	if err := h.requireOwner(c, existing); err != nil {
		return err
	}

	var req LeaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	lease, err := req.toModel()
	if err != nil {
		return common.SendValidationError(c, "lease", err.Error())
	}
	lease.ID = id

	if err := h.leaseService.Update(ctx, lease); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Lease")
		}
		return common.SendValidationError(c, "lease", err.Error())
	}

	return c.JSON(http.StatusOK, lease)
}

// Delete removes a lease
func (h *LeaseHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lease, err := h.leaseService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Lease")
	}

	if err := h.requireOwner(c, lease); err != nil {
		return err
	}

	if err := h.leaseService.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Lease")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete lease")
	}

	return c.NoContent(http.StatusNoContent)
}

// requireOwner restricts an action to the owner of the leased property
func (h *LeaseHandlers) requireOwner(c echo.Context, lease *models.Lease) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	property, err := h.propertyService.GetByID(ctx, lease.PropertyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}
	if property.OwnerID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not your property")
	}
	return nil
}

// requireParticipant allows either side of the lease to read it
func (h *LeaseHandlers) requireParticipant(c echo.Context, lease *models.Lease) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
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
