// FILE: internal/controller/dm_controller.go
package controller

import (
	"strings"

	"aura-be/internal/dto"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/pkg/serverutils"
	"aura-be/internal/service"
	internalWS "aura-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IDMController interface {
	RegisterRoutes(r fiber.Router)
	CreateThread(ctx *fiber.Ctx) error
	Threads(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	MarkRead(ctx *fiber.Ctx) error
	Typing(ctx *fiber.Ctx) error
	AddMember(ctx *fiber.Ctx) error
	RemoveMember(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type dmController struct {
	service  service.IDMService
	auth     fiber.Handler
	sessions serverutils.SessionAuthenticator
	hub      *internalWS.Hub
	log      logger.ILogger
}

func NewDMController(service service.IDMService, auth fiber.Handler, sessions serverutils.SessionAuthenticator, hub *internalWS.Hub, log logger.ILogger) IDMController {
	return &dmController{
		service:  service,
		auth:     auth,
		sessions: sessions,
		hub:      hub,
		log:      log,
	}
}

func (c *dmController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/dm")
	// browsers cannot set headers on the upgrade request
	h.Get("/ws", c.ServeWs)

	h.Use(c.auth)
	h.Post("/thread", c.CreateThread)
	h.Get("/threads", c.Threads)
	h.Get("/threads/:id/messages", c.Messages)
	h.Post("/threads/:id/message", c.Send)
	h.Post("/threads/:id/read", c.MarkRead)
	h.Post("/threads/:id/typing", c.Typing)
	h.Post("/threads/:id/add", c.AddMember)
	h.Post("/threads/:id/remove/:userId", c.RemoveMember)
}

func (c *dmController) CreateThread(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateThreadRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.CreateThread(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Thread created", res))
}

func (c *dmController) Threads(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}
	var q dto.PageQuery
	if err := bindQuery(ctx, &q); err != nil {
		return err
	}
	res, err := c.service.Threads(ctx.UserContext(), userId, &q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Threads retrieved", res))
}

func (c *dmController) Messages(ctx *fiber.Ctx) error {
	userId, threadId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	var q dto.MessageListQuery
	if err := bindQuery(ctx, &q); err != nil {
		return err
	}
	res, err := c.service.Messages(ctx.UserContext(), threadId, userId, &q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Messages retrieved", res))
}

func (c *dmController) Send(ctx *fiber.Ctx) error {
	userId, threadId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Send(ctx.UserContext(), threadId, userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *dmController) MarkRead(ctx *fiber.Ctx) error {
	userId, threadId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.MarkRead(ctx.UserContext(), threadId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Thread marked read", res))
}

func (c *dmController) Typing(ctx *fiber.Ctx) error {
	userId, threadId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	if err := c.service.Typing(ctx.UserContext(), threadId, userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Typing", fiber.Map{"typing": true}))
}

func (c *dmController) AddMember(ctx *fiber.Ctx) error {
	userId, threadId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	var req dto.AddMemberRequest
	if err := bindJSON(ctx, &req); err != nil {
		return err
	}
	if err := c.service.AddMember(ctx.UserContext(), threadId, userId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Member added", fiber.Map{"added": true}))
}

func (c *dmController) RemoveMember(ctx *fiber.Ctx) error {
	userId, threadId, err := actorAndTarget(ctx)
	if err != nil {
		return err
	}
	memberId, err := serverutils.ParseUUIDParam(ctx, "userId")
	if err != nil {
		return err
	}
	if err := c.service.RemoveMember(ctx.UserContext(), threadId, userId, memberId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Member removed", fiber.Map{"removed": true}))
}

// ServeWs authenticates the handshake against a live session, then registers
// the connection with the hub and blocks until it closes. The token comes from
// ?token= or the bearer header.
func (c *dmController) ServeWs(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	token := strings.TrimSpace(ctx.Query("token"))
	if token == "" {
		if bearer, ok := strings.CutPrefix(ctx.Get(fiber.HeaderAuthorization), "Bearer "); ok {
			token = strings.TrimSpace(bearer)
		}
	}
	if token == "" {
		return apperror.Unauthorized("Missing token")
	}

	session, err := c.sessions.Authenticate(ctx.UserContext(), token)
	if err != nil {
		c.log.Warn("DM", "Rejected websocket handshake", map[string]interface{}{"error": err.Error()})
		return err
	}

	userID := session.UserId
	return websocket.New(func(conn *websocket.Conn) {
		c.log.Info("DM", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		client := internalWS.NewClient(c.hub, conn, userID)
		c.hub.Register(client)
		go client.WritePump()
		client.ReadPump()
		c.log.Info("DM", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(ctx)
}
