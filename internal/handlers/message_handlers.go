package handlers

import (
	"net/http"
	"strconv"

	"rentfolio/internal/common"
	"rentfolio/internal/models"
	"rentfolio/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type MessageHandlers struct {
	messageService services.MessageService
}

func NewMessageHandlers(messageService services.MessageService) *MessageHandlers {
	return &MessageHandlers{messageService: messageService}
}

// SendMessageRequest represents the send payload
type SendMessageRequest struct {
	ReceiverID string  `json:"receiver_id" validate:"required"`
	PropertyID *string `json:"property_id"`
	Subject    string  `json:"subject" validate:"required"`
	Message    string  `json:"message" validate:"required"`
}

// Send creates a message from the caller to another profile
func (h *MessageHandlers) Send(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	receiverID, err := common.ValidateUUID(req.ReceiverID, "receiver_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	message := &models.Message{
		SenderID:   userID,
		ReceiverID: receiverID,
		Subject:    req.Subject,
		Message:    req.Message,
	}
	if req.PropertyID != nil && *req.PropertyID != "" {
		propertyID, err := common.ValidateUUID(*req.PropertyID, "property_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		message.PropertyID = &propertyID
	}

	if err := h.messageService.Send(ctx, message); err != nil {
		return common.SendValidationError(c, "message", err.Error())
	}

	return c.JSON(http.StatusCreated, message)
}

// Inbox returns messages sent to the caller
func (h *MessageHandlers) Inbox(c echo.Context) error {
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

	messages, err := h.messageService.ListInbox(ctx, userID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list messages")
	}

	unread, err := h.messageService.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
		"unread":   unread,
		"limit":    limit,
		"offset":   offset,
	})
}

// Sent returns messages the caller authored
func (h *MessageHandlers) Sent(c echo.Context) error {
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

	messages, err := h.messageService.ListSent(ctx, userID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list messages")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
		"limit":    limit,
		"offset":   offset,
	})
}

// MarkRead marks a received message as read
func (h *MessageHandlers) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.messageService.MarkRead(ctx, id, userID); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Message")
		}
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Marked as read"})
}

// Delete removes a message the caller participates in
func (h *MessageHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	message, err := h.messageService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Message")
	}
	if message.SenderID != userID && message.ReceiverID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not your message")
	}

	if err := h.messageService.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return common.SendNotFoundError(c, "Message")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete message")
	}

	return c.NoContent(http.StatusNoContent)
}
