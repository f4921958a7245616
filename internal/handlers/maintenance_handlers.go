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

// 10 MB cap per maintenance photo
const maxMaintenanceImageSize = 10 << 20

type MaintenanceHandlers struct {
	maintenanceService services.MaintenanceService
	propertyService    services.PropertyService
}

func NewMaintenanceHandlers(maintenanceService services.MaintenanceService, propertyService services.PropertyService) *MaintenanceHandlers {
	return &MaintenanceHandlers{
		maintenanceService: maintenanceService,
		propertyService:    propertyService,
	}
}

// MaintenanceRequestPayload represents the create payload
type MaintenanceRequestPayload struct {
	PropertyID  string `json:"property_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Create raises a maintenance request against a property the caller owns or
// rents.
func (h *MaintenanceHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req MaintenanceRequestPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	propertyID, err := common.ValidateUUID(req.PropertyID, "property_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requirePropertyAccess(c, propertyID); err != nil {
		return err
	}

	request := &models.MaintenanceRequest{
		PropertyID:  propertyID,
		RequestedBy: userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}

	if err := h.maintenanceService.Create(ctx, request); err != nil {
		return common.SendValidationError(c, "maintenance", err.Error())
	}

	return c.JSON(http.StatusCreated, request)
}

// Get returns a single maintenance request to the requester or either side
// of the property
func (h *MaintenanceHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	request, err := h.maintenanceService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Maintenance request")
	}

	if err := h.requireRequestAccess(c, request); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, request)
}

// ListByProperty returns a property's maintenance requests
func (h *MaintenanceHandlers) ListByProperty(c echo.Context) error {
	ctx := c.Request().Context()

	propertyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requirePropertyAccess(c, propertyID); err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err = common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	requests, err := h.maintenanceService.ListByProperty(ctx, propertyID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list maintenance requests")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

// ListMine returns requests raised by the caller
func (h *MaintenanceHandlers) ListMine(c echo.Context) error {
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

	requests, err := h.maintenanceService.ListByRequester(ctx, userID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list maintenance requests")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

// MaintenanceUpdatePayload carries the fields an owner can change
type MaintenanceUpdatePayload struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Priority      *string `json:"priority"`
	Status        *string `json:"status"`
	ScheduledDate *string `json:"scheduled_date"`
}

// Update changes priority, status or scheduling of a request. Owner only.
func (h *MaintenanceHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	request, err := h.maintenanceService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Maintenance request")
	}

	if err := h.requirePropertyOwner(c, request.PropertyID); err != nil {
		return err
	}

	var req MaintenanceUpdatePayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Title != nil {
		request.Title = *req.Title
	}
	if req.Description != nil {
		request.Description = *req.Description
	}
	if req.Priority != nil {
		request.Priority = *req.Priority
	}
	if req.Status != nil {
		request.Status = *req.Status
	}
	if req.ScheduledDate != nil {
		if err := common.ValidateDateFormat(*req.ScheduledDate, "scheduled_date"); err != nil {
			return common.SendValidationError(c, "scheduled_date", err.Error())
		}
		scheduled, err := time.Parse("2006-01-02", *req.ScheduledDate)
		if err != nil {
			return common.SendValidationError(c, "scheduled_date", "scheduled_date must be in YYYY-MM-DD format")
		}
		request.ScheduledDate = &scheduled
	}

	if err := h.maintenanceService.Update(ctx, request); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Maintenance request")
		}
		return common.SendValidationError(c, "maintenance", err.Error())
	}

	return c.JSON(http.StatusOK, request)
}

// Delete removes a maintenance request. Owner only.
func (h *MaintenanceHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	request, err := h.maintenanceService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Maintenance request")
	}

	if err := h.requirePropertyOwner(c, request.PropertyID); err != nil {
		return err
	}

	if err := h.maintenanceService.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Maintenance request")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete maintenance request")
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadImage attaches a before/after photo to the request
func (h *MaintenanceHandlers) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	request, err := h.maintenanceService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Maintenance request")
	}
	if err := h.requireRequestAccess(c, request); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxMaintenanceImageSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds the 10MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read uploaded file")
	}
	defer file.Close()

	image := &models.MaintenanceImage{
		MaintenanceID: id,
		ImageType:     c.FormValue("image_type"),
		UploadedBy:    userID,
	}
	if notes := c.FormValue("notes"); notes != "" {
		image.Notes = &notes
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.maintenanceService.AttachImage(ctx, image, fileHeader.Filename, file, fileHeader.Size, contentType); err != nil {
		return common.SendValidationError(c, "image", err.Error())
	}

	return c.JSON(http.StatusCreated, image)
}

// ListImages returns the photos attached to a request
func (h *MaintenanceHandlers) ListImages(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	request, err := h.maintenanceService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Maintenance request")
	}
	if err := h.requireRequestAccess(c, request); err != nil {
		return err
	}

	images, err := h.maintenanceService.ListImages(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list images")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"images": images})
}

// requirePropertyAccess allows the owner or the assigned renter of the
// property
func (h *MaintenanceHandlers) requirePropertyAccess(c echo.Context, propertyID uuid.UUID) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	property, err := h.propertyService.GetByID(ctx, propertyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}
	if property.OwnerID != userID && (property.TenantID == nil || *property.TenantID != userID) {
		return echo.NewHTTPError(http.StatusForbidden, "Not your property")
	}
	return nil
}

// requirePropertyOwner restricts an action to the property owner
func (h *MaintenanceHandlers) requirePropertyOwner(c echo.Context, propertyID uuid.UUID) error {
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

// requireRequestAccess lets the requester through, otherwise falls back to
// property membership
func (h *MaintenanceHandlers) requireRequestAccess(c echo.Context, request *models.MaintenanceRequest) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if request.RequestedBy == userID {
		return nil
	}
	return h.requirePropertyAccess(c, request.PropertyID)
}
