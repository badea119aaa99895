package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"aura-be/internal/entity"
	"aura-be/internal/pkg/mailer"
	"aura-be/internal/repository/unitofwork"
	"aura-be/pkg/mood"
	"aura-be/pkg/moodai"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeMail struct {
	mu   sync.Mutex
	sent []mailer.Mail
}

func (f *fakeMail) Enqueue(_ context.Context, m mailer.Mail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeMail) Run(context.Context) error { return nil }
func (f *fakeMail) Close() error              { return nil }

func (f *fakeMail) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeClassifier struct {
	calls  int
	result moodai.Result
	err    error
}

func (f *fakeClassifier) ClassifyText(_ context.Context, _ string) (moodai.Result, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeClassifier) ClassifyImage(_ context.Context, _ []byte) (moodai.ImageResult, error) {
	f.calls++
	return moodai.ImageResult{Mood: mood.Neutral, Confidence: 0.3, Note: "Vision analysis not implemented"}, nil
}

func (f *fakeClassifier) ClassifyVideo(context.Context) (moodai.VideoResult, error) {
	f.calls++
	return moodai.VideoResult{Message: "Video mood analysis not implemented"}, nil
}

func seedUser(t *testing.T, factory unitofwork.RepositoryFactory, username string) *entity.User {
	t.Helper()
	u := &entity.User{
		Email:    username + "@example.com",
		Username: username,
		Bio:      "",
	}
	require.NoError(t, factory.NewUnitOfWork(context.Background()).UserRepository().Create(context.Background(), u))
	return u
}

func seedPost(t *testing.T, factory unitofwork.RepositoryFactory, author uuid.UUID, caption, emotion string, tags []string, age time.Duration) *entity.Post {
	t.Helper()
	p := &entity.Post{
		UserId:    author,
		Emotion:   emotion,
		Tags:      tags,
		CreatedAt: time.Now().Add(-age),
	}
	if caption != "" {
		p.Caption = &caption
	}
	require.NoError(t, factory.NewUnitOfWork(context.Background()).PostRepository().Create(context.Background(), p))
	return p
}

func setMoodEnabled(t *testing.T, factory unitofwork.RepositoryFactory, userId uuid.UUID, enabled bool) {
	t.Helper()
	pref := entity.DefaultPreference(userId)
	pref.MoodEnabled = enabled
	require.NoError(t, factory.NewUnitOfWork(context.Background()).PreferenceRepository().
		Upsert(context.Background(), pref, []string{"mood_enabled"}))
}

func strPtr(s string) *string { return &s }
