package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session backs one issued access token; its Id is the token's jti.
type Session struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Revoked   bool
	CreatedAt time.Time
	RevokedAt *time.Time
}
