package entity

import (
	"time"

	"github.com/google/uuid"
)

// Connection is one side of a follow edge as shown in follower lists.
type Connection struct {
	UserId     uuid.UUID
	Username   string
	ProfilePic string
	Verified   bool
	Since      time.Time
}

const (
	ThreadRoleOwner  = "owner"
	ThreadRoleMember = "member"
)

type MessageThread struct {
	Id            uuid.UUID
	CreatorId     uuid.UUID
	Title         *string
	LastMessage   *string
	LastMessageAt *time.Time
	CreatedAt     time.Time
}

type ThreadMember struct {
	ThreadId    uuid.UUID
	UserId      uuid.UUID
	Role        string
	UnreadCount int
	LastReadAt  *time.Time
	JoinedAt    time.Time
}

// ThreadSummary is a thread as listed for one member.
type ThreadSummary struct {
	MessageThread
	Unread     int
	LastReadAt *time.Time
}

type Message struct {
	Id        uuid.UUID
	ThreadId  uuid.UUID
	SenderId  uuid.UUID
	Content   string
	CreatedAt time.Time
}
