// FILE: internal/controller/user_controller.go
package controller

import (
	"aura-be/internal/dto"
	"aura-be/internal/pkg/serverutils"
	"aura-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
	DeleteAccount(ctx *fiber.Ctx) error
	BlockUser(ctx *fiber.Ctx) error
	ReportUser(ctx *fiber.Ctx) error
	UpdatePreferences(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
	auth    fiber.Handler
}

func NewUserController(service service.IUserService, auth fiber.Handler) IUserController {
	return &userController{service: service, auth: auth}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user", c.auth)
	h.Get("/profile/:id", c.GetProfile)
	h.Put("/profile/update", c.UpdateProfile)
	h.Delete("/delete", c.DeleteAccount)
	h.Post("/block/:id", c.BlockUser)
	h.Post("/report/:id", c.ReportUser)
	h.Put("/preferences", c.UpdatePreferences)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	requesterId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}

	targetId := requesterId
	if ctx.Params("id") != "me" {
		if targetId, err = serverutils.ParseUUIDParam(ctx, "id"); err != nil {
			return err
		}
	}

	res, err := c.service.GetProfile(ctx.UserContext(), requesterId, targetId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile retrieved", res))
}

func (c *userController) UpdateProfile(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateProfile(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile updated", res))
}

func (c *userController) DeleteAccount(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	if err := c.service.DeleteAccount(ctx.UserContext(), userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Account deleted", nil))
}

func (c *userController) BlockUser(ctx *fiber.Ctx) error {
	userId, targetId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	if err := c.service.BlockUser(ctx.UserContext(), userId, targetId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("User blocked", nil))
}

func (c *userController) ReportUser(ctx *fiber.Ctx) error {
	userId, targetId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	var req dto.ReportRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		return err
	}
	if err := c.service.ReportUser(ctx.UserContext(), userId, targetId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("User reported", nil))
}

func (c *userController) UpdatePreferences(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdatePreferencesRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdatePreferences(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Preferences updated", res))
}

// actorAndTarget reads the caller and the :id path parameter.
func actorAndTarget(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	targetId, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userId, targetId, nil
}
