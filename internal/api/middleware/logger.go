package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// quietRoutes are polled by probes and scrapers; they log at debug.
var quietRoutes = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// requestID returns the id set by the requestid middleware, if any.
func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// requestAttrs identifies a request in logs. The path is the route pattern
// so session ids stay out of it; the id itself goes in session_id.
func requestAttrs(c *fiber.Ctx) []any {
	attrs := []any{
		slog.String("request_id", requestID(c)),
		slog.String("method", c.Method()),
		slog.String("route", c.Route().Path),
	}
	if id := c.Params("session_id"); id != "" {
		attrs = append(attrs, slog.String("session_id", id))
	}
	return attrs
}

func Logger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		// The error handler has not written the response yet.
		if err != nil {
			status = statusOf(err)
		}

		logLevel := slog.LevelInfo
		switch {
		case status >= 500:
			logLevel = slog.LevelError
		case status >= 400:
			logLevel = slog.LevelWarn
		case quietRoutes[c.Route().Path]:
			logLevel = slog.LevelDebug
		}

		attrs := append(requestAttrs(c),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.IP()),
		)
		logger.Log(c.Context(), logLevel, "http request", attrs...)

		return err
	}
}
