package controller

import (
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// bindJSON parses the body into req and runs struct validation.
func bindJSON(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.InvalidInput("Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted.
func bindOptionalJSON(ctx *fiber.Ctx, req interface{}) error {
	if len(ctx.Body()) == 0 {
		return serverutils.ValidateRequest(req)
	}
	return bindJSON(ctx, req)
}

func bindQuery(ctx *fiber.Ctx, q interface{}) error {
	if err := ctx.QueryParser(q); err != nil {
		return apperror.InvalidInput("Invalid query parameters")
	}
	return nil
}
