// FILE: internal/controller/search_controller.go
package controller

import (
	"aura-be/internal/dto"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/serverutils"
	"aura-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Users(ctx *fiber.Ctx) error
	Posts(ctx *fiber.Ctx) error
	Suggest(ctx *fiber.Ctx) error
}

type searchController struct {
	service service.ISearchService
	auth    fiber.Handler
}

func NewSearchController(service service.ISearchService, auth fiber.Handler) ISearchController {
	return &searchController{service: service, auth: auth}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search", c.auth)
	h.Get("", c.Search)
	h.Get("/users", c.Users)
	h.Get("/posts", c.Posts)
	h.Get("/suggest", c.Suggest)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	userId, q, err := searchParams(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Search(ctx.UserContext(), userId, q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

func (c *searchController) Users(ctx *fiber.Ctx) error {
	userId, q, err := searchParams(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Users(ctx.UserContext(), userId, q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User results", res))
}

func (c *searchController) Posts(ctx *fiber.Ctx) error {
	userId, q, err := searchParams(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Posts(ctx.UserContext(), userId, q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Post results", res))
}

func (c *searchController) Suggest(ctx *fiber.Ctx) error {
	userId, q, err := searchParams(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Suggest(ctx.UserContext(), userId, q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Suggestions", res))
}

func searchParams(ctx *fiber.Ctx) (uuid.UUID, *dto.SearchQuery, error) {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return uuid.Nil, nil, err
	}
	var q dto.SearchQuery
	if err := ctx.QueryParser(&q); err != nil {
		return uuid.Nil, nil, apperror.InvalidInput("Invalid query parameters")
	}
	return userId, &q, nil
}
