package service

import (
	"context"
	"regexp"
	"strings"

	"aura-be/internal/dto"
	"aura-be/internal/entity"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/repository/specification"
	"aura-be/internal/repository/unitofwork"
	"aura-be/pkg/events"

	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`(?i)^[a-z0-9_.]{3,30}$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// publishEvent is fire-and-forget; a nil publisher is allowed.
func publishEvent(ctx context.Context, pub events.Publisher, log logger.ILogger, evt events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, evt); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}

func toUserDTO(u *entity.User) dto.UserDTO {
	return dto.UserDTO{
		Id:             u.Id,
		Email:          u.Email,
		Username:       u.Username,
		Bio:            u.Bio,
		ProfilePic:     u.ProfilePic,
		MoodPreference: u.MoodPreference,
		Verified:       u.VerifiedAt != nil,
		CreatedAt:      u.CreatedAt,
	}
}

func requireLiveUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return apperror.FromStorage(err, "User not found")
	}
	if user == nil {
		return apperror.NotFound("User not found")
	}
	return nil
}
