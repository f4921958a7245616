package handlers

import (
	"net/http"
	"strconv"

	"rentfolio/internal/common"
	"rentfolio/internal/services"

	"github.com/labstack/echo/v4"
)

const maxAvatarSize = 5 << 20

type ProfileHandlers struct {
	profileService services.ProfileService
}

func NewProfileHandlers(profileService services.ProfileService) *ProfileHandlers {
	return &ProfileHandlers{profileService: profileService}
}

// GetMe returns the caller's own profile
func (h *ProfileHandlers) GetMe(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	profile, err := h.profileService.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "Profile")
	}

	return c.JSON(http.StatusOK, profile)
}

// UpdateMeRequest carries the mutable profile fields. Role is not among
// them; role changes go through their own endpoint.
type UpdateMeRequest struct {
	Username  *string `json:"username"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateMe updates the caller's own profile
func (h *ProfileHandlers) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req UpdateMeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	profile, err := h.profileService.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "Profile")
	}

	if req.Username != nil {
		profile.Username = req.Username
	}
	if req.FullName != nil {
		profile.FullName = req.FullName
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}

	if err := h.profileService.Update(ctx, profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	return c.JSON(http.StatusOK, profile)
}

// UploadAvatar stores a profile picture in the object store and records its
// object key on the caller's profile.
func (h *ProfileHandlers) UploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxAvatarSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds the 5MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read uploaded file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	avatarURL, err := h.profileService.SetAvatar(ctx, userID, fileHeader.Filename, file, fileHeader.Size, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store avatar")
	}

	return c.JSON(http.StatusOK, map[string]string{"avatar_url": avatarURL})
}

// SearchRenters finds renter profiles by partial username match, used when
// assigning a tenant to a property.
func (h *ProfileHandlers) SearchRenters(c echo.Context) error {
	ctx := c.Request().Context()

	username := common.SanitizeSearchQuery(c.QueryParam("username"))

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profiles, err := h.profileService.SearchRenters(ctx, username, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to search profiles")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"limit":    limit,
		"offset":   offset,
	})
}
