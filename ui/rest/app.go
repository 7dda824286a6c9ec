package rest

import (
	"fmt"

	pkgError "github.com/AzielCF/piebot/pkg/error"
	"github.com/AzielCF/piebot/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// InitRestNotFound answers every unmatched route. It must be registered last.
func InitRestNotFound(app fiber.Router) {
	app.Use(func(c *fiber.Ctx) error {
		err := pkgError.NotFoundError(fmt.Sprintf("route %s %s not found", c.Method(), c.Path()))
		return c.Status(err.StatusCode()).JSON(utils.ResponseData{
			Status:  err.StatusCode(),
			Code:    err.ErrCode(),
			Message: err.Error(),
		})
	})
}
