package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

type UserPreference struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	PrivacyLevel  string
	Notifications map[string]interface{}
	MoodEnabled   bool
	UpdatedAt     time.Time
}

func DefaultNotifications() map[string]interface{} {
	return map[string]interface{}{"email": true, "push": true}
}

// DefaultPreference is what a user without a stored row effectively has.
func DefaultPreference(userId uuid.UUID) *UserPreference {
	return &UserPreference{
		UserId:        userId,
		PrivacyLevel:  PrivacyPublic,
		Notifications: DefaultNotifications(),
		MoodEnabled:   false,
	}
}
