package entity

import (
	"time"

	"aura-be/pkg/ranking"

	"github.com/google/uuid"
)

const (
	MaxPostTags      = 20
	DefaultEmotion   = "neutral"
	DefaultShareType = "story"
)

type Post struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Caption      *string
	MediaURL     *string
	MediaType    *string
	Emotion      string
	Tags         []string
	LikeCount    int
	CommentCount int
	ShareCount   int
	SavedCount   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RankAttrs projects the post onto what the rankers score.
func (p *Post) RankAttrs() ranking.PostAttrs {
	caption := ""
	if p.Caption != nil {
		caption = *p.Caption
	}
	return ranking.PostAttrs{
		ID:           p.Id,
		Caption:      caption,
		Emotion:      p.Emotion,
		Tags:         p.Tags,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt,
	}
}

// PostRankAttrs adapts RankAttrs to the rankers' func(T) signature.
func PostRankAttrs(p *Post) ranking.PostAttrs { return p.RankAttrs() }

type PostComment struct {
	Id        uuid.UUID
	PostId    uuid.UUID
	UserId    uuid.UUID
	Content   string
	Emotion   *string
	CreatedAt time.Time
}

type PostShare struct {
	Id         uuid.UUID
	PostId     uuid.UUID
	UserId     uuid.UUID
	TargetType string
	CircleId   *uuid.UUID
	CreatedAt  time.Time
}

type PostReport struct {
	Id         uuid.UUID
	PostId     uuid.UUID
	ReporterId uuid.UUID
	Reason     *string
	CreatedAt  time.Time
}

// EmotionCount is one bucket of an emotion histogram.
type EmotionCount struct {
	Emotion string
	Count   int64
}
