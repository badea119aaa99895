// FILE: internal/controller/auth_controller.go
package controller

import (
	"aura-be/internal/dto"
	"aura-be/internal/pkg/serverutils"
	"aura-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	VerifyEmail(ctx *fiber.Ctx) error
	ForgotPassword(ctx *fiber.Ctx) error
	ResetPassword(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
	auth    fiber.Handler
}

func NewAuthController(service service.IAuthService, auth fiber.Handler) IAuthController {
	return &authController{service: service, auth: auth}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/logout", c.auth, c.Logout)
	h.Post("/verify-email", c.VerifyEmail)
	h.Post("/forgot-password", c.ForgotPassword)
	h.Put("/reset-password", c.ResetPassword)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Registered. Check your email to verify your account.", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.UserContext(), &req, ctx.Get(fiber.HeaderUserAgent))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	sessionId, err := serverutils.GetSessionID(ctx)
	if err != nil {
		return err
	}
	if err := c.service.Logout(ctx.UserContext(), sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Logged out", nil))
}

func (c *authController) VerifyEmail(ctx *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}
	if err := c.service.VerifyEmail(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Email verified", nil))
}

func (c *authController) ForgotPassword(ctx *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}
	if err := c.service.ForgotPassword(ctx.UserContext(), &req); err != nil {
		return err
	}
	// Same answer whether or not the address exists
	return ctx.JSON(serverutils.SuccessResponse[any]("If the email exists, a reset link has been sent", nil))
}

func (c *authController) ResetPassword(ctx *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}
	if err := c.service.ResetPassword(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Password updated", nil))
}
