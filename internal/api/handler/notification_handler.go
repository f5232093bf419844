package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fsrp/document-portal/internal/core/ports"
)

// NotificationHandler hands queued toasts to the page.
type NotificationHandler struct {
	notify ports.NotificationService
}

func NewNotificationHandler(notify ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notify: notify}
}

// List handles GET /api/notifications. Returned toasts are removed from the
// queue.
//
// @Summary      Drain queued notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  domain.NotificationFeed
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.notify.Drain(st))
}

// DismissPrompt handles DELETE /api/notifications/prompt.
//
// @Summary      Dismiss the save-login prompt
// @Tags         notifications
// @Success      204
// @Router       /api/notifications/prompt [delete]
func (h *NotificationHandler) DismissPrompt(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	h.notify.DismissPrompt(st)
	return c.NoContent(http.StatusNoContent)
}
