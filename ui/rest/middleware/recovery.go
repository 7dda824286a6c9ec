package middleware

import (
	pkgError "github.com/AzielCF/piebot/pkg/error"
	"github.com/AzielCF/piebot/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Recovery turns handler panics into a JSON error response. Typed errors
// keep their status and code; anything else is a generic 500.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			logrus.WithField("request_id", ctx.Locals("requestid")).
				Errorf("[REST] Panic recovered on %s %s: %v", ctx.Method(), ctx.Path(), recovered)

			var typed pkgError.GenericError = pkgError.InternalServerError("internal server error")
			if generic, ok := recovered.(pkgError.GenericError); ok {
				typed = generic
			}

			_ = ctx.Status(typed.StatusCode()).JSON(utils.ResponseData{
				Status:  typed.StatusCode(),
				Code:    typed.ErrCode(),
				Message: typed.Error(),
			})
		}()

		return ctx.Next()
	}
}
