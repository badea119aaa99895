// FILE: internal/controller/oauth_controller.go
package controller

import (
	"net/url"
	"time"

	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const oauthStateCookie = "aura_oauth_state"

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service   service.IOAuthService
	clientURL string
	log       logger.ILogger
}

func NewOAuthController(service service.IOAuthService, clientURL string, log logger.ILogger) IOAuthController {
	return &oauthController{service: service, clientURL: clientURL, log: log}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	// e.g., /auth/oauth/google
	h := r.Group("/auth/oauth")
	h.Get("/:provider", c.Login)
	h.Get("/:provider/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	loginURL, state, err := c.service.GetLoginURL(provider)
	if err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.Redirect(loginURL, fiber.StatusTemporaryRedirect)
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	code := ctx.Query("code")
	if code == "" {
		return apperror.InvalidInput("Missing code")
	}

	state := ctx.Query("state")
	if state == "" || state != ctx.Cookies(oauthStateCookie) {
		c.log.Warn("OAUTH", "State mismatch on callback", map[string]interface{}{"provider": provider})
		return apperror.InvalidInput("Invalid OAuth state")
	}
	ctx.ClearCookie(oauthStateCookie)

	res, err := c.service.HandleCallback(ctx.UserContext(), provider, code, ctx.Get(fiber.HeaderUserAgent))
	if err != nil {
		return err
	}

	c.log.Info("OAUTH", "Social login succeeded", map[string]interface{}{"provider": provider, "user_id": res.User.Id})
	redirect := c.clientURL + "/auth/callback?token=" + url.QueryEscape(res.AccessToken)
	return ctx.Redirect(redirect, fiber.StatusTemporaryRedirect)
}
