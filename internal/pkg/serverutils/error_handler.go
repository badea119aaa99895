package serverutils

import (
	"errors"

	"aura-be/internal/metrics"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns any error returned down the chain into the
// response envelope. Only apperror messages reach the client.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, log, err)
	}
}

func WriteError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
	}

	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(err)
	}
	status := appErr.Kind.Status()

	if status >= fiber.StatusInternalServerError {
		details := map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"kind":   appErr.Kind.String(),
			"error":  err,
		}
		if code, class := apperror.SQLState(err); code != "" {
			details["sqlstate"] = code
			details["sqlstate_class"] = class
			metrics.RecordStorageError(class)
			if code == "42P01" {
				details["hint"] = "schema missing, run cmd/migrate"
			}
		}
		log.Error("HTTP", "Request failed", details)
	}

	return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
}
