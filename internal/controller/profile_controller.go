// FILE: internal/controller/profile_controller.go
package controller

import (
	"aura-be/internal/dto"
	"aura-be/internal/pkg/serverutils"
	"aura-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProfileController interface {
	RegisterRoutes(r fiber.Router)
	ChangeUsername(ctx *fiber.Ctx) error
	ChangeEmail(ctx *fiber.Ctx) error
	ChangePhoto(ctx *fiber.Ctx) error
}

type profileController struct {
	service service.IUserService
	auth    fiber.Handler
}

func NewProfileController(service service.IUserService, auth fiber.Handler) IProfileController {
	return &profileController{service: service, auth: auth}
}

func (c *profileController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/profile", c.auth)
	h.Put("/username", c.ChangeUsername)
	h.Put("/email", c.ChangeEmail)
	h.Put("/photo", c.ChangePhoto)
}

func (c *profileController) ChangeUsername(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.ChangeUsernameRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ChangeUsername(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Username updated", res))
}

func (c *profileController) ChangeEmail(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.ChangeEmailRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ChangeEmail(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Email updated, verification sent", res))
}

func (c *profileController) ChangePhoto(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.ChangePhotoRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ChangePhoto(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Photo updated", res))
}
