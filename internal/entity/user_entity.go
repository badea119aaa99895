package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID
	Email          string
	Username       string
	PasswordHash   *string // nil for social-only accounts
	Bio            string
	ProfilePic     string
	MoodPreference *string
	VerifiedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

func (u *User) IsDeleted() bool { return u.DeletedAt != nil }

type PasswordResetToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

type EmailVerificationToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

type UserProvider struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ProviderName   string
	ProviderUserId string
	AvatarURL      string
	CreatedAt      time.Time
}

type UserBlock struct {
	Id        uuid.UUID
	BlockerId uuid.UUID
	BlockedId uuid.UUID
	CreatedAt time.Time
}

type UserReport struct {
	Id         uuid.UUID
	ReporterId uuid.UUID
	ReportedId uuid.UUID
	Reason     *string
	CreatedAt  time.Time
}
