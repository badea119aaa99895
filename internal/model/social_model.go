package model

import (
	"time"

	"github.com/google/uuid"
)

// Follow is a directed edge: FollowerId follows FollowingId.
type Follow struct {
	FollowerId  uuid.UUID `gorm:"type:uuid;primaryKey"`
	FollowingId uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (Follow) TableName() string {
	return "follows"
}

type MessageThread struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatorId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         *string   `gorm:"type:varchar(120)"`
	LastMessage   *string   `gorm:"type:text"`
	LastMessageAt *time.Time `gorm:"index"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (MessageThread) TableName() string {
	return "message_threads"
}

type ThreadMember struct {
	ThreadId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId      uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Role        string    `gorm:"type:varchar(20);not null;default:'member'"`
	UnreadCount int       `gorm:"not null;default:0"`
	LastReadAt  *time.Time
	JoinedAt    time.Time `gorm:"autoCreateTime"`
}

func (ThreadMember) TableName() string {
	return "thread_members"
}

type Message struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ThreadId  uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_thread_created,priority:1"`
	SenderId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_messages_thread_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}
