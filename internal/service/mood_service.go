package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"aura-be/internal/dto"
	"aura-be/internal/metrics"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/repository/specification"
	"aura-be/internal/repository/unitofwork"
	"aura-be/pkg/mood"
	"aura-be/pkg/moodai"

	"github.com/google/uuid"
)

const (
	MoodSourceManual  = "manual"
	MoodSourceDefault = "default"

	moodTrendWindow = 7 * 24 * time.Hour
)

// IMoodService holds every mood-domain operation. Each one passes the mood
// gate before touching the classifier or storage.
type IMoodService interface {
	AnalyzeText(ctx context.Context, userId uuid.UUID, req *dto.AnalyzeTextRequest) (*dto.AnalyzeTextResponse, error)
	AnalyzeImage(ctx context.Context, userId uuid.UUID, req *dto.AnalyzeImageRequest) (*dto.AnalyzeImageResponse, error)
	AnalyzeVideo(ctx context.Context, userId uuid.UUID) (*dto.AnalyzeVideoResponse, error)
	AnalyzeFeed(ctx context.Context, userId uuid.UUID) (*dto.MoodFeedResponse, error)

	CurrentMood(ctx context.Context, userId uuid.UUID) (*dto.CurrentMoodResponse, error)
	UpdateMood(ctx context.Context, userId uuid.UUID, req *dto.UpdateMoodRequest) (*dto.UpdateMoodResponse, error)
	Trends(ctx context.Context, userId uuid.UUID) (*dto.MoodTrendsResponse, error)
	WeeklySummary(ctx context.Context, userId uuid.UUID) (*dto.WeeklySummaryResponse, error)
}

type moodService struct {
	uowFactory unitofwork.RepositoryFactory
	gate       IMoodGate
	classifier moodai.Classifier
	posts      IPostService
	log        logger.ILogger
	now        func() time.Time
}

func NewMoodService(uowFactory unitofwork.RepositoryFactory, gate IMoodGate, classifier moodai.Classifier, posts IPostService, log logger.ILogger) IMoodService {
	return &moodService{
		uowFactory: uowFactory,
		gate:       gate,
		classifier: classifier,
		posts:      posts,
		log:        log,
		now:        time.Now,
	}
}

func (s *moodService) AnalyzeText(ctx context.Context, userId uuid.UUID, req *dto.AnalyzeTextRequest) (*dto.AnalyzeTextResponse, error) {
	if err := s.gate.Require(ctx, userId); err != nil {
		return nil, err
	}

	result, err := s.classifier.ClassifyText(ctx, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, moodai.ErrEmptyInput):
			return nil, apperror.InvalidInput("Text required")
		case errors.Is(err, moodai.ErrUnavailable):
			return nil, apperror.ClassificationUnavailable(err)
		default:
			return nil, apperror.Internal(err)
		}
	}

	metrics.RecordClassificationResult(string(result.Source), string(result.Mood))
	return &dto.AnalyzeTextResponse{
		UserId: userId,
		Mood:   string(result.Mood),
		Source: string(result.Source),
		Raw:    result.Raw,
	}, nil
}

// decodeImage accepts plain base64 or a data URL.
func decodeImage(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	if payload == "" {
		return nil, apperror.InvalidInput("Image required")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, "Invalid image encoding", err)
	}
	return data, nil
}

func (s *moodService) AnalyzeImage(ctx context.Context, userId uuid.UUID, req *dto.AnalyzeImageRequest) (*dto.AnalyzeImageResponse, error) {
	if err := s.gate.Require(ctx, userId); err != nil {
		return nil, err
	}
	image, err := decodeImage(req.ImageBase64)
	if err != nil {
		return nil, err
	}

	result, err := s.classifier.ClassifyImage(ctx, image)
	if err != nil {
		return nil, apperror.ClassificationUnavailable(err)
	}
	return &dto.AnalyzeImageResponse{
		UserId:     userId,
		Mood:       string(result.Mood),
		Confidence: result.Confidence,
		Note:       result.Note,
		Supported:  result.Supported,
	}, nil
}

func (s *moodService) AnalyzeVideo(ctx context.Context, userId uuid.UUID) (*dto.AnalyzeVideoResponse, error) {
	if err := s.gate.Require(ctx, userId); err != nil {
		return nil, err
	}
	result, err := s.classifier.ClassifyVideo(ctx)
	if err != nil {
		return nil, apperror.ClassificationUnavailable(err)
	}
	return &dto.AnalyzeVideoResponse{Message: result.Message, Supported: result.Supported}, nil
}

func (s *moodService) AnalyzeFeed(ctx context.Context, userId uuid.UUID) (*dto.MoodFeedResponse, error) {
	if err := s.gate.Require(ctx, userId); err != nil {
		return nil, err
	}
	items, err := s.posts.VibeMatch(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &dto.MoodFeedResponse{UserId: userId, Items: items}, nil
}

func (s *moodService) CurrentMood(ctx context.Context, userId uuid.UUID) (*dto.CurrentMoodResponse, error) {
	if err := s.gate.Require(ctx, userId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	if user.MoodPreference == nil || *user.MoodPreference == "" {
		return &dto.CurrentMoodResponse{
			UserId:     userId,
			Mood:       string(mood.Neutral),
			Confidence: 0.0,
			Source:     MoodSourceDefault,
		}, nil
	}
	return &dto.CurrentMoodResponse{
		UserId:     userId,
		Mood:       *user.MoodPreference,
		Confidence: 1.0,
		Source:     MoodSourceManual,
	}, nil
}

func (s *moodService) UpdateMood(ctx context.Context, userId uuid.UUID, req *dto.UpdateMoodRequest) (*dto.UpdateMoodResponse, error) {
	if err := s.gate.Require(ctx, userId); err != nil {
		return nil, err
	}

	label, ok := mood.Parse(req.Mood)
	if !ok {
		return nil, apperror.InvalidInput("Mood must be one of: " + strings.Join(mood.Names(), ", "))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().UpdateFields(ctx, userId, map[string]interface{}{
		"mood_preference": string(label),
	}); err != nil {
		return nil, apperror.FromStorage(err, "User not found")
	}

	s.log.Info("MOOD", "Mood updated", map[string]interface{}{"user_id": userId, "mood": label})
	return &dto.UpdateMoodResponse{UserId: userId, Mood: string(label), Source: MoodSourceManual}, nil
}

func (s *moodService) Trends(ctx context.Context, userId uuid.UUID) (*dto.MoodTrendsResponse, error) {
	if err := s.gate.Require(ctx, userId); err != nil {
		return nil, err
	}

	since := s.now().Add(-moodTrendWindow)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	counts, err := uow.PostRepository().EmotionCounts(ctx, since, nil)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	trends := make([]dto.EmotionBucket, len(counts))
	for i, c := range counts {
		trends[i] = dto.EmotionBucket{Emotion: c.Emotion, Count: c.Count}
	}
	return &dto.MoodTrendsResponse{Since: since, Trends: trends}, nil
}

// WeeklySummary histograms the requester's own posts. Dominant is the most
// frequent emotion, or neutral when there are none.
func (s *moodService) WeeklySummary(ctx context.Context, userId uuid.UUID) (*dto.WeeklySummaryResponse, error) {
	if err := s.gate.Require(ctx, userId); err != nil {
		return nil, err
	}

	since := s.now().Add(-moodTrendWindow)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	counts, err := uow.PostRepository().EmotionCounts(ctx, since, &userId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	res := &dto.WeeklySummaryResponse{
		UserId:   userId,
		Since:    since,
		Dominant: string(mood.Neutral),
		Summary:  make([]dto.EmotionBucket, len(counts)),
	}
	for i, c := range counts {
		res.Summary[i] = dto.EmotionBucket{Emotion: c.Emotion, Count: c.Count}
		res.Total += c.Count
	}
	// counts arrive ordered by count desc, emotion asc
	if len(counts) > 0 {
		res.Dominant = counts[0].Emotion
	}
	return res, nil
}
