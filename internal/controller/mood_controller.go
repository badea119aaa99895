// FILE: internal/controller/mood_controller.go
package controller

import (
	"aura-be/internal/dto"
	"aura-be/internal/pkg/serverutils"
	"aura-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMoodController interface {
	RegisterRoutes(r fiber.Router)
	AnalyzeText(ctx *fiber.Ctx) error
	AnalyzeImage(ctx *fiber.Ctx) error
	AnalyzeVideo(ctx *fiber.Ctx) error
	AnalyzeFeed(ctx *fiber.Ctx) error
	Current(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Trends(ctx *fiber.Ctx) error
	Weekly(ctx *fiber.Ctx) error
}

type moodController struct {
	service service.IMoodService
	auth    fiber.Handler
	limiter *serverutils.UserRateLimiter
}

func NewMoodController(service service.IMoodService, auth fiber.Handler, limiter *serverutils.UserRateLimiter) IMoodController {
	return &moodController{service: service, auth: auth, limiter: limiter}
}

func (c *moodController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/mood", c.auth)
	h.Post("/analyze-text", c.limiter.Middleware("mood_analyze_text"), c.AnalyzeText)
	h.Post("/analyze-image", c.limiter.Middleware("mood_analyze_image"), c.AnalyzeImage)
	h.Post("/analyze-video", c.limiter.Middleware("mood_analyze_video"), c.AnalyzeVideo)
	h.Get("/analyze-feed", c.AnalyzeFeed)
	h.Get("/current", c.Current)
	h.Post("/update", c.Update)
	h.Get("/trends", c.Trends)
	h.Get("/summary/weekly", c.Weekly)
}

func (c *moodController) AnalyzeText(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.AnalyzeTextRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.AnalyzeText(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Mood detected", res))
}

func (c *moodController) AnalyzeImage(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.AnalyzeImageRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.AnalyzeImage(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Image analyzed", res))
}

func (c *moodController) AnalyzeVideo(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.AnalyzeVideo(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Video analyzed", res))
}

func (c *moodController) AnalyzeFeed(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.AnalyzeFeed(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Feed analyzed", res))
}

func (c *moodController) Current(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.CurrentMood(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Current mood", res))
}

func (c *moodController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateMoodRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateMood(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Mood updated", res))
}

func (c *moodController) Trends(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Trends(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Mood trends", res))
}

func (c *moodController) Weekly(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.WeeklySummary(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Weekly summary", res))
}
