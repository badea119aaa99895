// FILE: internal/controller/post_controller.go
package controller

import (
	"aura-be/internal/dto"
	"aura-be/internal/pkg/serverutils"
	"aura-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPostController interface {
	RegisterRoutes(r fiber.Router)
	Feed(ctx *fiber.Ctx) error
	Trending(ctx *fiber.Ctx) error
	VibeMatch(ctx *fiber.Ctx) error
	Saved(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	ByUser(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	ToggleLike(ctx *fiber.Ctx) error
	Comment(ctx *fiber.Ctx) error
	Comments(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Share(ctx *fiber.Ctx) error
	ToggleSave(ctx *fiber.Ctx) error
	Report(ctx *fiber.Ctx) error
}

type postController struct {
	service service.IPostService
	auth    fiber.Handler
}

func NewPostController(service service.IPostService, auth fiber.Handler) IPostController {
	return &postController{service: service, auth: auth}
}

func (c *postController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/posts", c.auth)
	// static paths before /:id
	h.Get("/feed", c.Feed)
	h.Get("/trending", c.Trending)
	h.Get("/vibe-match", c.VibeMatch)
	h.Get("/saved", c.Saved)

	h.Post("/create", c.Create)
	h.Get("/user/:userId", c.ByUser)
	h.Get("/:id", c.Get)
	h.Post("/like/:id", c.ToggleLike)
	h.Post("/comment/:id", c.Comment)
	h.Get("/comments/:id", c.Comments)
	h.Delete("/delete/:id", c.Delete)
	h.Post("/share/:id", c.Share)
	h.Post("/save/:id", c.ToggleSave)
	h.Post("/report/:id", c.Report)
}

func (c *postController) Feed(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Feed(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Feed retrieved", res))
}

func (c *postController) Trending(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Trending(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Trending posts retrieved", res))
}

func (c *postController) VibeMatch(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.VibeMatch(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Vibe matches retrieved", res))
}

func (c *postController) Saved(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Saved(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Saved posts retrieved", res))
}

func (c *postController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.CreatePostRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Post created", res))
}

func (c *postController) ByUser(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	authorId, err := serverutils.ParseUUIDParam(ctx, "userId")
	if err != nil {
		return err
	}

	res, err := c.service.ByUser(ctx.UserContext(), userId, authorId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Posts retrieved", res))
}

func (c *postController) Get(ctx *fiber.Ctx) error {
	userId, postId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Get(ctx.UserContext(), userId, postId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Post retrieved", res))
}

func (c *postController) ToggleLike(ctx *fiber.Ctx) error {
	userId, postId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ToggleLike(ctx.UserContext(), userId, postId)
	if err != nil {
		return err
	}

	msg := "Post unliked"
	if res.Liked {
		msg = "Post liked"
	}
	return ctx.JSON(serverutils.SuccessResponse(msg, res))
}

func (c *postController) Comment(ctx *fiber.Ctx) error {
	userId, postId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Comment(ctx.UserContext(), userId, postId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Comment added", res))
}

func (c *postController) Comments(ctx *fiber.Ctx) error {
	postId, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Comments(ctx.UserContext(), postId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Comments retrieved", res))
}

func (c *postController) Delete(ctx *fiber.Ctx) error {
	userId, postId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.UserContext(), userId, postId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Post deleted", nil))
}

func (c *postController) Share(ctx *fiber.Ctx) error {
	userId, postId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	var req dto.ShareRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Share(ctx.UserContext(), userId, postId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Post shared", res))
}

func (c *postController) ToggleSave(ctx *fiber.Ctx) error {
	userId, postId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ToggleSave(ctx.UserContext(), userId, postId)
	if err != nil {
		return err
	}

	msg := "Post unsaved"
	if res.Saved {
		msg = "Post saved"
	}
	return ctx.JSON(serverutils.SuccessResponse(msg, res))
}

func (c *postController) Report(ctx *fiber.Ctx) error {
	userId, postId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	var req dto.ReportRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		return err
	}
	if err := c.service.Report(ctx.UserContext(), userId, postId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Post reported", nil))
}
