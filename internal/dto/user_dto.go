package dto

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileRequest applies only the fields that are present.
type UpdateProfileRequest struct {
	Username       *string `json:"username" validate:"omitempty,min=3,max=30"`
	Bio            *string `json:"bio" validate:"omitempty,max=500"`
	MoodPreference *string `json:"mood_preference" validate:"omitempty,max=20"`
	ProfilePic     *string `json:"profile_pic" validate:"omitempty,max=2048"`
}

type UpdatePreferencesRequest struct {
	PrivacyLevel  *string                `json:"privacy_level" validate:"omitempty,oneof=public private"`
	Notifications map[string]interface{} `json:"notifications"`
	MoodEnabled   *bool                  `json:"mood_enabled"`
}

type PreferenceResponse struct {
	UserId        uuid.UUID              `json:"user_id"`
	PrivacyLevel  string                 `json:"privacy_level"`
	Notifications map[string]interface{} `json:"notifications"`
	MoodEnabled   bool                   `json:"mood_enabled"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type ReportRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=1000"`
}

type ChangeUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

type ChangeUsernameResponse struct {
	Id       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type ChangeEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ChangeEmailResponse struct {
	Email      string `json:"email"`
	VerifySent bool   `json:"verify_sent"`
}

type ChangePhotoRequest struct {
	ProfilePic string `json:"profile_pic" validate:"max=2048"`
}

type ChangePhotoResponse struct {
	Id         uuid.UUID `json:"id"`
	ProfilePic string    `json:"profile_pic"`
}
