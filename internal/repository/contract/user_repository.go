package contract

import (
	"context"
	"time"

	"aura-be/internal/entity"
	"aura-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// UpdateFields writes only the given columns and fails with NotFound if no live row matched.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindOneUnscoped(ctx context.Context, specs ...specification.Specification) (*entity.User, error) // Includes soft-deleted
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)

	// Token Management
	CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error
	FindPasswordResetToken(ctx context.Context, token string) (*entity.PasswordResetToken, error)
	MarkPasswordResetTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error

	CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error
	FindEmailVerificationToken(ctx context.Context, token string) (*entity.EmailVerificationToken, error)
	MarkEmailVerificationTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error

	// Provider
	SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error
	FindUserProvider(ctx context.Context, providerName, providerUserId string) (*entity.UserProvider, error)

	// Social graph
	CreateBlock(ctx context.Context, block *entity.UserBlock) error
	// BlockRelatedIDs returns every user that blocked userId or that userId blocked.
	BlockRelatedIDs(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error)
	CreateReport(ctx context.Context, report *entity.UserReport) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
	RevokeAllForUser(ctx context.Context, userId uuid.UUID, at time.Time) (int64, error)
}

type PreferenceRepository interface {
	FindByUserID(ctx context.Context, userId uuid.UUID) (*entity.UserPreference, error)
	// Upsert inserts pref or, on a user_id conflict, overwrites the named columns.
	Upsert(ctx context.Context, pref *entity.UserPreference, columns []string) error
}
