package rest

import (
	"html/template"

	domainSession "github.com/AzielCF/piebot/domains/session"
	"github.com/AzielCF/piebot/pkg/qr"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type QR struct {
	Session domainSession.ISessionUsecase
}

func InitRestQR(app fiber.Router, session domainSession.ISessionUsecase) QR {
	handler := QR{Session: session}
	app.Get("/qr", handler.Page)
	return handler
}

// Page shows the pending QR code, a waiting page that polls until one
// arrives, or a confirmation once the session is ready.
func (handler *QR) Page(c *fiber.Ctx) error {
	if handler.Session.IsReady() {
		return renderPage(c, "connected", nil)
	}

	code := handler.Session.CurrentQR()
	if code == "" {
		return renderPage(c, "waiting", nil)
	}

	image, err := qr.PNGDataURL(code, qr.DefaultSize)
	if err != nil {
		logrus.WithError(err).Error("[REST] Failed to render QR code")
		return c.Status(fiber.StatusInternalServerError).SendString("Erro ao gerar QR.")
	}
	// data: URLs are rejected by html/template unless marked safe.
	return renderPage(c, "qr", map[string]any{"Image": template.URL(image)})
}
