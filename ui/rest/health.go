package rest

import (
	"time"

	domainSession "github.com/AzielCF/piebot/domains/session"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Session domainSession.ISessionUsecase
}

func InitRestHealth(app fiber.Router, session domainSession.ISessionUsecase) Health {
	handler := Health{Session: session}
	app.Get("/health", handler.Status)
	return handler
}

// Status answers liveness checks. It is always 200 so the platform keeps the
// process alive while the session reconnects.
func (handler *Health) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"ready":     handler.Session.IsReady(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
