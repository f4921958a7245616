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

type PropertyHandlers struct {
	propertyService services.PropertyService
	tenancyService  services.TenancyService
}

func NewPropertyHandlers(propertyService services.PropertyService, tenancyService services.TenancyService) *PropertyHandlers {
	return &PropertyHandlers{
		propertyService: propertyService,
		tenancyService:  tenancyService,
	}
}

// PropertyRequest represents the create/update payload
type PropertyRequest struct {
	Name            string   `json:"name" validate:"required"`
	Address         string   `json:"address" validate:"required"`
	City            string   `json:"city" validate:"required"`
	State           string   `json:"state" validate:"required"`
	ZipCode         string   `json:"zip_code" validate:"required"`
	Bedrooms        int      `json:"bedrooms"`
	Bathrooms       float64  `json:"bathrooms"`
	SquareFeet      int      `json:"square_feet"`
	MonthlyRent     float64  `json:"monthly_rent" validate:"required"`
	SecurityDeposit float64  `json:"security_deposit"`
	AvailableFrom   string   `json:"available_from"`
	Description     *string  `json:"description"`
	Amenities       []string `json:"amenities"`
}

func (r *PropertyRequest) apply(property *models.Property) error {
	property.Name = r.Name
	property.Address = r.Address
	property.City = r.City
	property.State = r.State
	property.ZipCode = r.ZipCode
	property.Bedrooms = r.Bedrooms
	property.Bathrooms = r.Bathrooms
	property.SquareFeet = r.SquareFeet
	property.MonthlyRent = r.MonthlyRent
	property.SecurityDeposit = r.SecurityDeposit
	property.Description = r.Description
	property.Amenities = r.Amenities

	if r.AvailableFrom != "" {
		if err := common.ValidateDateFormat(r.AvailableFrom, "available_from"); err != nil {
			return err
		}
		availableFrom, err := time.Parse("2006-01-02", r.AvailableFrom)
		if err != nil {
			return err
		}
		property.AvailableFrom = availableFrom
	}
	return nil
}

// Create adds a property owned by the caller
func (h *PropertyHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req PropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	property := &models.Property{}
	if err := req.apply(property); err != nil {
		return common.SendValidationError(c, "available_from", err.Error())
	}

	if err := h.propertyService.Create(ctx, userID, property); err != nil {
		return common.SendValidationError(c, "property", err.Error())
	}

	return c.JSON(http.StatusCreated, property)
}

// Get returns a single property; only its owner or assigned renter may read it
func (h *PropertyHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	property, err := h.propertyService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Property")
	}

	userID, _ := common.GetUserIDFromContext(ctx)
	if property.OwnerID != userID && (property.TenantID == nil || *property.TenantID != userID) {
		return echo.NewHTTPError(http.StatusForbidden, "Not your property")
	}

	return c.JSON(http.StatusOK, property)
}

// List returns the caller's properties: owned ones for owners, the assigned
// ones for renters.
func (h *PropertyHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	role, _ := common.GetRoleFromContext(ctx)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	properties, err := h.propertyService.ListForProfile(ctx, userID, role, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list properties")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"properties": properties,
		"limit":      limit,
		"offset":     offset,
	})
}

// Update replaces the mutable fields of a property owned by the caller
func (h *PropertyHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	property, err := h.propertyService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Property")
	}
	if property.OwnerID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not your property")
	}

	var req PropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := req.apply(property); err != nil {
		return common.SendValidationError(c, "available_from", err.Error())
	}

	if err := h.propertyService.Update(ctx, property); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Property")
		}
		return common.SendValidationError(c, "property", err.Error())
	}

	return c.JSON(http.StatusOK, property)
}

// Delete removes a property owned by the caller. Deleting an id that is
// already gone is a 404, never a silent success.
func (h *PropertyHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	property, err := h.propertyService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Property")
	}
	if property.OwnerID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not your property")
	}

	if err := h.propertyService.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Property")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete property")
	}

	return c.NoContent(http.StatusNoContent)
}

// AssignTenantRequest names an existing renter profile
type AssignTenantRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
}

// AssignTenant links an existing renter to the property
func (h *PropertyHandlers) AssignTenant(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requireOwnership(c, id); err != nil {
		return err
	}

	var req AssignTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	profileID, err := common.ValidateUUID(req.ProfileID, "profile_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.tenancyService.AssignRenter(ctx, id, profileID); err != nil {
		return common.SendValidationError(c, "profile_id", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Tenant assigned"})
}

// ProvisionTenantRequest creates a brand-new renter and attaches them
type ProvisionTenantRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
	Username string `json:"username" validate:"required"`
}

// ProvisionTenant creates a renter account and assigns it to the property in
// one transaction.
func (h *PropertyHandlers) ProvisionTenant(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requireOwnership(c, id); err != nil {
		return err
	}

	var req ProvisionTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	profile, err := h.tenancyService.ProvisionRenter(ctx, &services.ProvisionRenterRequest{
		PropertyID: id,
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Username:   req.Username,
	})
	if err != nil {
		return common.SendValidationError(c, "tenant", err.Error())
	}

	return c.JSON(http.StatusCreated, profile)
}

// RemoveTenant clears the tenant assignment on the property
func (h *PropertyHandlers) RemoveTenant(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requireOwnership(c, id); err != nil {
		return err
	}

	if err := h.tenancyService.RemoveRenter(ctx, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remove tenant")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PropertyHandlers) requireOwnership(c echo.Context, propertyID uuid.UUID) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	property, err := h.propertyService.GetByID(ctx, propertyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}
	if property.OwnerID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not your property")
	}
	return nil
}
