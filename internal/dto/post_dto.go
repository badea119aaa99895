package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TagList accepts either a JSON array of strings or one string of tags
// separated by commas or whitespace.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = list
	return nil
}

type CreatePostRequest struct {
	Caption   *string `json:"caption" validate:"omitempty,max=5000"`
	MediaURL  *string `json:"media_url" validate:"omitempty,max=2048"`
	MediaType *string `json:"media_type" validate:"omitempty,max=20"`
	Emotion   *string `json:"emotion" validate:"omitempty,max=20"`
	Tags      TagList `json:"tags"`
}

type PostResponse struct {
	Id           uuid.UUID `json:"id"`
	UserId       uuid.UUID `json:"user_id"`
	Caption      *string   `json:"caption"`
	MediaURL     *string   `json:"media_url"`
	MediaType    *string   `json:"media_type"`
	Emotion      string    `json:"emotion"`
	Tags         []string  `json:"tags"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	ShareCount   int       `json:"share_count"`
	SavedCount   int       `json:"saved_count"`
	Liked        bool      `json:"liked"`
	Saved        bool      `json:"saved"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type FeedItem struct {
	PostResponse
	VibeScore int `json:"vibe_score"`
}

type TrendingItem struct {
	PostResponse
	TrendingScore int `json:"trending_score"`
}

type VibeMatchItem struct {
	PostId    uuid.UUID `json:"post_id"`
	VibeScore int       `json:"vibe_score"`
}

type LikeToggleResponse struct {
	PostId    uuid.UUID `json:"post_id"`
	Liked     bool      `json:"liked"`
	LikeCount int       `json:"like_count"`
}

type SaveToggleResponse struct {
	PostId     uuid.UUID `json:"post_id"`
	Saved      bool      `json:"saved"`
	SavedCount int       `json:"saved_count"`
}

type CommentRequest struct {
	Content string  `json:"content" validate:"required,max=2000"`
	Emotion *string `json:"emotion" validate:"omitempty,max=20"`
}

type CommentResponse struct {
	Id        uuid.UUID `json:"id"`
	PostId    uuid.UUID `json:"post_id"`
	UserId    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	Emotion   *string   `json:"emotion"`
	CreatedAt time.Time `json:"created_at"`
}

type ShareRequest struct {
	TargetType *string    `json:"target_type" validate:"omitempty,max=30"`
	CircleId   *uuid.UUID `json:"circle_id"`
}

type ShareResponse struct {
	Id         uuid.UUID  `json:"id"`
	PostId     uuid.UUID  `json:"post_id"`
	TargetType string     `json:"target_type"`
	CircleId   *uuid.UUID `json:"circle_id"`
	CreatedAt  time.Time  `json:"created_at"`
}
