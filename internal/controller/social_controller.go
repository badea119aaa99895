// FILE: internal/controller/social_controller.go
package controller

import (
	"aura-be/internal/dto"
	"aura-be/internal/pkg/serverutils"
	"aura-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISocialController interface {
	RegisterRoutes(r fiber.Router)
	Follow(ctx *fiber.Ctx) error
	Unfollow(ctx *fiber.Ctx) error
	Followers(ctx *fiber.Ctx) error
	Following(ctx *fiber.Ctx) error
	Counts(ctx *fiber.Ctx) error
	Suggestions(ctx *fiber.Ctx) error
	Mutual(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type socialController struct {
	service service.ISocialService
	auth    fiber.Handler
}

func NewSocialController(service service.ISocialService, auth fiber.Handler) ISocialController {
	return &socialController{service: service, auth: auth}
}

func (c *socialController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/social", c.auth)
	h.Post("/follow/:id", c.Follow)
	h.Post("/unfollow/:id", c.Unfollow)
	h.Get("/followers/:id", c.Followers)
	h.Get("/following/:id", c.Following)
	h.Get("/counts/:id", c.Counts)
	h.Get("/suggestions", c.Suggestions)
	h.Get("/mutual/:id", c.Mutual)
	h.Get("/follow-status/:id", c.Status)
}

func (c *socialController) Follow(ctx *fiber.Ctx) error {
	userId, targetId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Follow(ctx.UserContext(), userId, targetId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Followed", res))
}

func (c *socialController) Unfollow(ctx *fiber.Ctx) error {
	userId, targetId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Unfollow(ctx.UserContext(), userId, targetId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Unfollowed", res))
}

func (c *socialController) Followers(ctx *fiber.Ctx) error {
	targetId, q, err := targetAndPage(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Followers(ctx.UserContext(), targetId, q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Followers retrieved", res))
}

func (c *socialController) Following(ctx *fiber.Ctx) error {
	targetId, q, err := targetAndPage(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Following(ctx.UserContext(), targetId, q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Following retrieved", res))
}

func (c *socialController) Counts(ctx *fiber.Ctx) error {
	targetId, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Counts(ctx.UserContext(), targetId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Counts retrieved", res))
}

func (c *socialController) Suggestions(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var q dto.PageQuery
	if err := bindQuery(ctx, &q); err != nil {
		return err
	}
	res, err := c.service.Suggestions(ctx.UserContext(), userId, &q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Suggestions retrieved", res))
}

func (c *socialController) Mutual(ctx *fiber.Ctx) error {
	userId, otherId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Mutual(ctx.UserContext(), userId, otherId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Mutual followers retrieved", res))
}

func (c *socialController) Status(ctx *fiber.Ctx) error {
	userId, otherId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Status(ctx.UserContext(), userId, otherId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Follow status retrieved", res))
}

// targetAndPage reads the :id path parameter and the limit/offset query.
func targetAndPage(ctx *fiber.Ctx) (uuid.UUID, *dto.PageQuery, error) {
	targetId, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return uuid.Nil, nil, err
	}
	var q dto.PageQuery
	if err := bindQuery(ctx, &q); err != nil {
		return uuid.Nil, nil, err
	}
	return targetId, &q, nil
}
