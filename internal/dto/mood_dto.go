package dto

import (
	"time"

	"github.com/google/uuid"
)

type AnalyzeTextRequest struct {
	Text string `json:"text" validate:"required"`
}

type AnalyzeTextResponse struct {
	UserId uuid.UUID `json:"user_id"`
	Mood   string    `json:"mood"`
	Source string    `json:"source"`
	Raw    string    `json:"raw"`
}

type AnalyzeImageRequest struct {
	ImageBase64 string `json:"imageBase64" validate:"required"`
}

type AnalyzeImageResponse struct {
	UserId     uuid.UUID `json:"user_id"`
	Mood       string    `json:"mood"`
	Confidence float64   `json:"confidence"`
	Note       string    `json:"note"`
	Supported  bool      `json:"supported"`
}

type AnalyzeVideoResponse struct {
	Message   string `json:"message"`
	Supported bool   `json:"supported"`
}

type MoodFeedResponse struct {
	UserId uuid.UUID       `json:"user_id"`
	Items  []VibeMatchItem `json:"items"`
}

type CurrentMoodResponse struct {
	UserId     uuid.UUID `json:"user_id"`
	Mood       string    `json:"mood"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
}

type UpdateMoodRequest struct {
	Mood string `json:"mood" validate:"required"`
}

type UpdateMoodResponse struct {
	UserId uuid.UUID `json:"user_id"`
	Mood   string    `json:"mood"`
	Source string    `json:"source"`
}

type EmotionBucket struct {
	Emotion string `json:"emotion"`
	Count   int64  `json:"count"`
}

type MoodTrendsResponse struct {
	Since  time.Time       `json:"since"`
	Trends []EmotionBucket `json:"trends"`
}

type WeeklySummaryResponse struct {
	UserId   uuid.UUID       `json:"user_id"`
	Since    time.Time       `json:"since"`
	Total    int64           `json:"total"`
	Dominant string          `json:"dominant"`
	Summary  []EmotionBucket `json:"summary"`
}
