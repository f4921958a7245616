package handlers

import (
	"net/http"
	"strconv"

	"rentfolio/internal/common"
	"rentfolio/internal/models"
	"rentfolio/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// 25 MB upload cap per document
const maxDocumentSize = 25 << 20

type DocumentHandlers struct {
	documentService services.DocumentService
	propertyService services.PropertyService
}

func NewDocumentHandlers(documentService services.DocumentService, propertyService services.PropertyService) *DocumentHandlers {
	return &DocumentHandlers{
		documentService: documentService,
		propertyService: propertyService,
	}
}

// Upload accepts a multipart form with the file plus property_id, name and
// document_type fields.
func (h *DocumentHandlers) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	propertyID, err := common.ValidateUUID(c.FormValue("property_id"), "property_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requirePropertyAccess(c, propertyID); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxDocumentSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds the 25MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read uploaded file")
	}
	defer file.Close()

	name := c.FormValue("name")
	if name == "" {
		name = fileHeader.Filename
	}

	document := &models.Document{
		PropertyID:   propertyID,
		Name:         name,
		DocumentType: c.FormValue("document_type"),
		UploadedBy:   userID,
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.documentService.Upload(ctx, document, file, fileHeader.Size, contentType); err != nil {
		return common.SendValidationError(c, "document", err.Error())
	}

	return c.JSON(http.StatusCreated, document)
}

// List returns a property's documents
func (h *DocumentHandlers) List(c echo.Context) error {
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

	documents, err := h.documentService.ListByProperty(ctx, propertyID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list documents")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"documents": documents,
		"limit":     limit,
		"offset":    offset,
	})
}

// DownloadURL returns a short-lived presigned URL for the stored object
func (h *DocumentHandlers) DownloadURL(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	document, err := h.documentService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Document")
	}
	if err := h.requirePropertyAccess(c, document.PropertyID); err != nil {
		return err
	}

	url, err := h.documentService.GetDownloadURL(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Document")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate download URL")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// Delete removes the document row and its stored object
func (h *DocumentHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	document, err := h.documentService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Document")
	}

	property, err := h.propertyService.GetByID(ctx, document.PropertyID)
	if err == nil && property.OwnerID != userID && document.UploadedBy != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not your document")
	}

	if err := h.documentService.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Document")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete document")
	}

	return c.NoContent(http.StatusNoContent)
}

// requirePropertyAccess allows the owner or the assigned renter of the
// property
func (h *DocumentHandlers) requirePropertyAccess(c echo.Context, propertyID uuid.UUID) error {
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
