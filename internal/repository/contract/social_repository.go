package contract

import (
	"context"
	"time"

	"aura-be/internal/entity"

	"github.com/google/uuid"
)

type FollowRepository interface {
	// Follow inserts the edge; a repeat follow affects 0 rows.
	Follow(ctx context.Context, followerId, followingId uuid.UUID) (int64, error)
	Unfollow(ctx context.Context, followerId, followingId uuid.UUID) (int64, error)
	IsFollowing(ctx context.Context, followerId, followingId uuid.UUID) (bool, error)

	// Followers and Following list live users, newest edge first.
	Followers(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Connection, error)
	Following(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Connection, error)
	// Suggestions lists the newest live users userId does not follow yet, skipping exclude.
	Suggestions(ctx context.Context, userId uuid.UUID, exclude []uuid.UUID, limit int) ([]*entity.User, error)
	// Mutual lists live users that follow both a and b.
	Mutual(ctx context.Context, a, b uuid.UUID, limit int) ([]*entity.User, error)
	Counts(ctx context.Context, userId uuid.UUID) (followers, following int64, err error)
}

type MessageRepository interface {
	CreateThread(ctx context.Context, thread *entity.MessageThread) error
	FindThread(ctx context.Context, id uuid.UUID) (*entity.MessageThread, error)
	// TouchThread records the latest message preview on the thread.
	TouchThread(ctx context.Context, id uuid.UUID, preview string, at time.Time) error

	// AddMember inserts the membership; an existing member affects 0 rows.
	AddMember(ctx context.Context, member *entity.ThreadMember) (int64, error)
	RemoveMember(ctx context.Context, threadId, userId uuid.UUID) (int64, error)
	FindMember(ctx context.Context, threadId, userId uuid.UUID) (*entity.ThreadMember, error)
	MemberIDs(ctx context.Context, threadId uuid.UUID) ([]uuid.UUID, error)
	// ThreadsFor lists userId's threads, most recent activity first.
	ThreadsFor(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.ThreadSummary, error)

	CreateMessage(ctx context.Context, msg *entity.Message) error
	// ListMessages returns messages newest first, strictly older than before when set.
	ListMessages(ctx context.Context, threadId uuid.UUID, before *time.Time, limit int) ([]*entity.Message, error)
	// BumpUnread adds one unread message for every member except senderId.
	BumpUnread(ctx context.Context, threadId, senderId uuid.UUID) error
	MarkRead(ctx context.Context, threadId, userId uuid.UUID, at time.Time) error
}
