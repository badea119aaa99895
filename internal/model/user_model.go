package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ids are assigned in code (uuid.New) so the schema carries no
// database-specific default.

type User struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username       string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	PasswordHash   *string   `gorm:"type:varchar(255)"`
	Bio            string    `gorm:"type:text;not null;default:''"`
	ProfilePic     string    `gorm:"type:text;not null;default:''"`
	MoodPreference *string   `gorm:"type:varchar(20)"`
	VerifiedAt     *time.Time
	CreatedAt      time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

type PasswordResetToken struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

type EmailVerificationToken struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (EmailVerificationToken) TableName() string {
	return "email_verification_tokens"
}

type UserProvider struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	ProviderName   string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_provider_identity"`
	ProviderUserId string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_identity"`
	AvatarURL      string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (UserProvider) TableName() string {
	return "user_providers"
}

type UserPreference struct {
	Id            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserId        uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	PrivacyLevel  string            `gorm:"type:varchar(20);not null;default:'public'"`
	Notifications datatypes.JSONMap `gorm:"not null"`
	MoodEnabled   bool              `gorm:"not null;default:false"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}

type UserBlock struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BlockerId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_block_pair"`
	BlockedId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_block_pair;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserBlock) TableName() string {
	return "user_blocks"
}

type UserReport struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReporterId uuid.UUID `gorm:"type:uuid;not null;index"`
	ReportedId uuid.UUID `gorm:"type:uuid;not null;index"`
	Reason     *string   `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (UserReport) TableName() string {
	return "user_reports"
}

type Session struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	RevokedAt *time.Time
}

func (Session) TableName() string {
	return "sessions"
}
