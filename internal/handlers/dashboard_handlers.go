package handlers

import (
	"net/http"

	"rentfolio/internal/common"
	"rentfolio/internal/models"
	"rentfolio/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type DashboardHandlers struct {
	propertyService    services.PropertyService
	maintenanceService services.MaintenanceService
	messageService     services.MessageService
}

func NewDashboardHandlers(propertyService services.PropertyService, maintenanceService services.MaintenanceService, messageService services.MessageService) *DashboardHandlers {
	return &DashboardHandlers{
		propertyService:    propertyService,
		maintenanceService: maintenanceService,
		messageService:     messageService,
	}
}

// Summary returns the role-matched dashboard view. An unknown or missing
// role falls back to the owner variant.
func (h *DashboardHandlers) Summary(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	role, _ := common.GetRoleFromContext(ctx)

	switch role {
	case models.RoleRenter:
		return h.renterSummary(c, userID)
	default:
		return h.ownerSummary(c, userID)
	}
}

func (h *DashboardHandlers) ownerSummary(c echo.Context, userID uuid.UUID) error {
	ctx := c.Request().Context()

	properties, err := h.propertyService.ListForProfile(ctx, userID, models.RoleOwner, 50, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load dashboard")
	}

	vacant := 0
	pendingMaintenance := 0
	for _, p := range properties {
		if p.TenantID == nil {
			vacant++
		}
		requests, err := h.maintenanceService.ListByProperty(ctx, p.ID, 50, 0)
		if err != nil {
			continue
		}
		for _, r := range requests {
			if r.Status == "pending" || r.Status == "in_progress" {
				pendingMaintenance++
			}
		}
	}

	unread, _ := h.messageService.CountUnread(ctx, userID)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"role":                "tenant",
		"properties":          properties,
		"property_count":      len(properties),
		"vacant_count":        vacant,
		"pending_maintenance": pendingMaintenance,
		"unread_messages":     unread,
	})
}

func (h *DashboardHandlers) renterSummary(c echo.Context, userID uuid.UUID) error {
	ctx := c.Request().Context()

	properties, err := h.propertyService.ListForProfile(ctx, userID, models.RoleRenter, 50, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load dashboard")
	}

	openRequests := 0
	requests, err := h.maintenanceService.ListByRequester(ctx, userID, 50, 0)
	if err == nil {
		for _, r := range requests {
			if r.Status == "pending" || r.Status == "in_progress" {
				openRequests++
			}
		}
	}

	unread, _ := h.messageService.CountUnread(ctx, userID)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"role":             "renter",
		"properties":       properties,
		"open_maintenance": openRequests,
		"unread_messages":  unread,
	})
}
