package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateThreadRequest struct {
	Participants []uuid.UUID `json:"participants" validate:"required,min=1,max=50"`
	Title        *string     `json:"title" validate:"omitempty,max=120"`
}

type ThreadResponse struct {
	Id            uuid.UUID   `json:"id"`
	CreatorId     uuid.UUID   `json:"creator_id"`
	Title         *string     `json:"title"`
	LastMessage   *string     `json:"last_message"`
	LastMessageAt *time.Time  `json:"last_message_at"`
	CreatedAt     time.Time   `json:"created_at"`
	Members       []uuid.UUID `json:"members"`
}

type ThreadSummaryResponse struct {
	Id            uuid.UUID  `json:"id"`
	Title         *string    `json:"title"`
	LastMessage   *string    `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
	Unread        int        `json:"unread"`
	LastReadAt    *time.Time `json:"last_read_at"`
}

type AddMemberRequest struct {
	UserId uuid.UUID `json:"user_id" validate:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	ThreadId  uuid.UUID `json:"thread_id"`
	SenderId  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageListQuery pages backwards through a thread; Before is an RFC 3339
// timestamp taken from the oldest message already shown.
type MessageListQuery struct {
	Limit  string `query:"limit"`
	Before string `query:"before"`
}

type ReadResponse struct {
	ThreadId uuid.UUID `json:"thread_id"`
	ReadAt   time.Time `json:"read_at"`
}
