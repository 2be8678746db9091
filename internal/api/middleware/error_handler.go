package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

// statusOf maps a handler error to the status ErrorHandler will send.
func statusOf(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return fiber.StatusInternalServerError
}

func errorJSON(code, message string) fiber.Map {
	return fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	}
}

// ErrorHandler renders every error as {"error":{"code","message"}}. Server
// side failures are logged with the request id so they can be matched to the
// access log line.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(errorJSON("HTTP_ERROR", fiberErr.Message))
		}

		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			if appErr.StatusCode >= 500 {
				attrs := append(requestAttrs(c),
					slog.String("code", appErr.Code),
					slog.Any("error", appErr.Err),
				)
				logger.Error("internal error", attrs...)
			}
			return c.Status(appErr.StatusCode).JSON(errorJSON(appErr.Code, appErr.Message))
		}

		logger.Error("unhandled error", append(requestAttrs(c), slog.Any("error", err))...)

		return c.Status(fiber.StatusInternalServerError).
			JSON(errorJSON(domain.ErrInternal.Code, domain.ErrInternal.Message))
	}
}
