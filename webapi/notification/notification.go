// Package notification exposes the user's alert inbox over HTTP.
package notification

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/config"
	"github.com/veltris/banking/pkg/middleware"
	"github.com/veltris/banking/pkg/service/notificationsvc"
	"github.com/veltris/banking/webapi/common"
)

// Routes registers the notification endpoints.
func Routes(app *fiber.App, svc *notificationsvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Jwt)
	app.Get("/notifications", protected, List(svc))
	app.Put("/notifications/:id/read", protected, MarkRead(svc))
	app.Delete("/notifications/:id", protected, Delete(svc))
	app.Delete("/notifications", protected, Clear(svc))
}

// NotificationResponse is the public view of one notification.
type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the user's notifications, newest first.
func List(svc *notificationsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		list, err := svc.List(c.Context(), userID)
		if err != nil {
			return common.ProblemJSON(c, "Lookup failed", err)
		}
		out := make([]NotificationResponse, 0, len(list))
		for _, n := range list {
			out = append(out, NotificationResponse{
				ID:        n.ID,
				Message:   n.Message,
				Read:      n.Read,
				CreatedAt: n.CreatedAt,
			})
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "OK", out)
	}
}

// MarkRead flips the read flag on one notification.
func MarkRead(svc *notificationsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid notification ID", err.Error())
		}
		if err := svc.MarkRead(c.Context(), id); err != nil {
			return common.ProblemJSON(c, "Update failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Marked read", nil)
	}
}

// Delete removes one notification.
func Delete(svc *notificationsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid notification ID", err.Error())
		}
		if err := svc.Delete(c.Context(), id); err != nil {
			return common.ProblemJSON(c, "Delete failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Deleted", nil)
	}
}

// Clear removes all of the user's notifications.
func Clear(svc *notificationsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		if err := svc.Clear(c.Context(), userID); err != nil {
			return common.ProblemJSON(c, "Clear failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Cleared", nil)
	}
}
