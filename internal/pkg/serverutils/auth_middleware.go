package serverutils

import (
	"context"
	"strings"

	"aura-be/internal/entity"
	"aura-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocalUserID    = "user_id"
	LocalSessionID = "session_id"
)

type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.Session, error)
}

// AuthMiddleware admits a request only when its bearer token maps to a live session.
func AuthMiddleware(auth SessionAuthenticator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return apperror.Unauthorized("Missing token")
		}

		session, err := auth.Authenticate(ctx.UserContext(), strings.TrimSpace(token))
		if err != nil {
			return err
		}

		ctx.Locals(LocalUserID, session.UserId)
		ctx.Locals(LocalSessionID, session.Id)
		return ctx.Next()
	}
}

func GetUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, ok := ctx.Locals(LocalUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperror.Unauthorized("Unauthorized")
	}
	return id, nil
}

func GetSessionID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, ok := ctx.Locals(LocalSessionID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperror.Unauthorized("Unauthorized")
	}
	return id, nil
}

// ParseUUIDParam reads a path parameter as a uuid.
func ParseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.InvalidInput("Invalid identifier format")
	}
	return id, nil
}
