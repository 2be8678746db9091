package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/saturnino-fabrica-de-software/poise/internal/observe"
)

// Metrics records request latency labelled by the matched route pattern,
// so session ids never become label values.
func Metrics(m *observe.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestDuration.Record(c.UserContext(), time.Since(start).Seconds(),
			metric.WithAttributes(
				attribute.String("method", c.Method()),
				attribute.String("path", path),
			),
		)
		return err
	}
}
