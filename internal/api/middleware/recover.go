package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

// Recover turns a handler panic into a 500. Stage panics inside the frame
// pipeline never get here; they become insufficient_data envelopes.
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				attrs := append(requestAttrs(c),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				logger.Error("panic recovered", attrs...)

				err = c.Status(fiber.StatusInternalServerError).
					JSON(errorJSON(domain.ErrInternal.Code, domain.ErrInternal.Message))
			}
		}()
		return c.Next()
	}
}
