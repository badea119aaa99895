package serverutils

import (
	"time"

	"aura-be/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records count and latency per matched route. It must
// sit outside the error handler so the final status is observed.
func MetricsMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		route := ctx.Route().Path
		metrics.RecordAPIRequest(ctx.Method(), route, ctx.Response().StatusCode(), time.Since(start))
		return err
	}
}
