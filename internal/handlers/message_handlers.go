package handlers

import (
	"net/http"

	"estatehub/internal/common"
	"estatehub/internal/models"
	"estatehub/internal/services"

	"github.com/labstack/echo/v4"
)

// MessageHandlers handles direct messages between users.
type MessageHandlers struct {
	messaging services.MessagingService
}

func NewMessageHandlers(messaging services.MessagingService) *MessageHandlers {
	return &MessageHandlers{messaging: messaging}
}

// Send godoc
// @Summary  Send a message
// @Description A message attached to a lease or maintenance request requires both users to take part in it.
// @Tags     messages
// @Accept   json
// @Produce  json
// @Param    message body models.MessageInput true "Message"
// @Success  201 {object} models.Message
// @Failure  403 {object} common.ErrorResponse
// @Security BearerAuth
// @Router   /messages [post]
func (h *MessageHandlers) Send(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	var input models.MessageInput
	if err := bind(c, &input); err != nil {
		return err
	}
	message, err := h.messaging.Send(c.Request().Context(), sess, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, message)
}

func (h *MessageHandlers) Inbox(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return err
	}
	messages, err := h.messaging.Inbox(c.Request().Context(), sess, limit, offset)
	if err != nil {
		return err
	}
	return list(c, messages, limit, offset)
}

func (h *MessageHandlers) Conversation(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	otherID, err := pathUUID(c, "userId")
	if err != nil {
		return err
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return err
	}
	messages, err := h.messaging.Conversation(c.Request().Context(), sess, otherID, limit, offset)
	if err != nil {
		return err
	}
	return list(c, messages, limit, offset)
}

func (h *MessageHandlers) MarkRead(c echo.Context) error {
	sess, err := session(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	message, err := h.messaging.MarkRead(c.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message)
}
