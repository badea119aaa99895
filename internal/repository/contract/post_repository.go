package contract

import (
	"context"
	"time"

	"aura-be/internal/entity"
	"aura-be/internal/repository/specification"

	"github.com/google/uuid"
)

// Counter columns on posts that interactions adjust.
const (
	CounterLikes    = "like_count"
	CounterComments = "comment_count"
	CounterShares   = "share_count"
	CounterSaves    = "saved_count"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Post, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Post, error)
	// SoftDeleteOwned deletes the post only if ownerId owns it; returns rows affected.
	SoftDeleteOwned(ctx context.Context, id, ownerId uuid.UUID) (int64, error)

	// AdjustCounter adds delta to column, never going below zero.
	AdjustCounter(ctx context.Context, id uuid.UUID, column string, delta int) error

	// FeedCandidates returns the newest perBucket posts in each of: emotion == pref,
	// tagged pref, and overall. Duplicates across buckets are possible.
	FeedCandidates(ctx context.Context, preference *string, perBucket int) ([]*entity.Post, error)
	// Trending orders by like_count*2 + comment_count desc, created_at desc, id asc.
	Trending(ctx context.Context, limit int) ([]*entity.Post, error)

	DeleteLike(ctx context.Context, userId, postId uuid.UUID) (int64, error)
	InsertLike(ctx context.Context, userId, postId uuid.UUID) (int64, error)
	DeleteSave(ctx context.Context, userId, postId uuid.UUID) (int64, error)
	InsertSave(ctx context.Context, userId, postId uuid.UUID) (int64, error)
	// InteractionFlags reports which of postIds userId has liked and saved.
	InteractionFlags(ctx context.Context, userId uuid.UUID, postIds []uuid.UUID) (liked, saved map[uuid.UUID]bool, err error)
	SavedBy(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Post, error)

	CreateComment(ctx context.Context, comment *entity.PostComment) error
	ListComments(ctx context.Context, postId uuid.UUID, limit int) ([]*entity.PostComment, error)
	CreateShare(ctx context.Context, share *entity.PostShare) error
	CreateReport(ctx context.Context, report *entity.PostReport) error

	// EmotionCounts histograms post emotions created since, optionally for one author.
	EmotionCounts(ctx context.Context, since time.Time, authorId *uuid.UUID) ([]entity.EmotionCount, error)
}
