package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TypeUserRegistered = "USER_REGISTERED"
	TypeUserLogin      = "USER_LOGIN"
	TypePostCreated    = "POST_CREATED"
	TypePostLiked      = "POST_LIKED"
	TypeUserFollowed   = "USER_FOLLOWED"
	TypeMessageSent    = "MESSAGE_SENT"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_LOGIN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher delivers events to the bus. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func UserRegistered(userID uuid.UUID, email, username string) BaseEvent {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id":  userID,
			"email":    email,
			"username": username,
		},
		OccurredAt: time.Now(),
	}
}

func UserLogin(userID, sessionID uuid.UUID, userAgent string) BaseEvent {
	return BaseEvent{
		Type: TypeUserLogin,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"device":     userAgent,
		},
		OccurredAt: time.Now(),
	}
}

func PostCreated(postID, authorID uuid.UUID, emotion string, tags []string) BaseEvent {
	return BaseEvent{
		Type: TypePostCreated,
		Data: map[string]interface{}{
			"post_id": postID,
			"user_id": authorID,
			"emotion": emotion,
			"tags":    tags,
		},
		OccurredAt: time.Now(),
	}
}

func PostLiked(postID, userID uuid.UUID, likeCount int) BaseEvent {
	return BaseEvent{
		Type: TypePostLiked,
		Data: map[string]interface{}{
			"post_id":    postID,
			"user_id":    userID,
			"like_count": likeCount,
		},
		OccurredAt: time.Now(),
	}
}

func UserFollowed(followerID, followingID uuid.UUID) BaseEvent {
	return BaseEvent{
		Type: TypeUserFollowed,
		Data: map[string]interface{}{
			"user_id":      followerID,
			"following_id": followingID,
		},
		OccurredAt: time.Now(),
	}
}

func MessageSent(messageID, threadID, senderID uuid.UUID) BaseEvent {
	return BaseEvent{
		Type: TypeMessageSent,
		Data: map[string]interface{}{
			"message_id": messageID,
			"thread_id":  threadID,
			"user_id":    senderID,
		},
		OccurredAt: time.Now(),
	}
}

// Recorder keeps published events in memory. Tests use it as a Publisher.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.EventType()
	}
	return out
}
