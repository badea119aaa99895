package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"aura-be/internal/dto"
	"aura-be/internal/model"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/repository/cache"
	"aura-be/internal/repository/unitofwork"
	"aura-be/internal/testutil"
	"aura-be/pkg/events"
	"aura-be/pkg/ranking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPostFixture(t *testing.T) (IPostService, unitofwork.RepositoryFactory, *gorm.DB, *events.Recorder) {
	factory, db := testutil.NewFactory(t)
	rec := &events.Recorder{}
	svc := NewPostService(factory, cache.NewMemoryTrendingCache(time.Minute), rec, logger.NewNop())
	return svc, factory, db, rec
}

func TestNormalizeTags(t *testing.T) {
	many := make([]string, 30)
	for i := range many {
		many[i] = "t"
	}

	assert.Equal(t, []string{"a", "b", "a"}, NormalizeTags([]string{" a ", "", "b", "  ", "a"}))
	assert.Len(t, NormalizeTags(many), 20)
	assert.Empty(t, NormalizeTags(nil))
}

func TestPostService_CreateAndGet(t *testing.T) {
	svc, factory, _, rec := newPostFixture(t)
	ctx := context.Background()
	author := seedUser(t, factory, "author")

	created, err := svc.Create(ctx, author.Id, &dto.CreatePostRequest{
		Caption: strPtr("sunny day"),
		Tags:    dto.TagList{"beach", " ", "sun"},
	})
	require.NoError(t, err)
	assert.Equal(t, "neutral", created.Emotion)
	assert.Equal(t, []string{"beach", "sun"}, created.Tags)
	assert.Equal(t, []string{events.TypePostCreated}, rec.Types())

	got, err := svc.Get(ctx, author.Id, created.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"beach", "sun"}, got.Tags)
	assert.False(t, got.Liked)

	_, err = svc.Get(ctx, author.Id, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestPostService_FeedRanksByVibe(t *testing.T) {
	svc, factory, db, _ := newPostFixture(t)
	ctx := context.Background()
	viewer := seedUser(t, factory, "viewer")
	author := seedUser(t, factory, "poster")
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", viewer.Id).Update("mood_preference", "happy").Error)

	plain := seedPost(t, factory, author.Id, "plain", "sad", nil, time.Minute)
	tagged := seedPost(t, factory, author.Id, "tagged", "calm", []string{"happy"}, 2*time.Hour)
	match := seedPost(t, factory, author.Id, "match", "happy", nil, 3*time.Hour)

	feed, err := svc.Feed(ctx, viewer.Id)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	assert.Equal(t, match.Id, feed[0].Id)
	assert.Equal(t, ranking.VibeEmotionMatch, feed[0].VibeScore)
	assert.Equal(t, tagged.Id, feed[1].Id)
	assert.Equal(t, ranking.VibeTagMatch, feed[1].VibeScore)
	assert.Equal(t, plain.Id, feed[2].Id)
	assert.Equal(t, ranking.VibeDefault, feed[2].VibeScore)

	preview, err := svc.VibeMatch(ctx, viewer.Id)
	require.NoError(t, err)
	require.Len(t, preview, 3)
	assert.Equal(t, dto.VibeMatchItem{PostId: match.Id, VibeScore: 95}, preview[0])
}

func TestPostService_FeedBoundsAndOldMatches(t *testing.T) {
	svc, factory, db, _ := newPostFixture(t)
	ctx := context.Background()
	viewer := seedUser(t, factory, "crowded")
	author := seedUser(t, factory, "chatty")
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", viewer.Id).Update("mood_preference", "happy").Error)

	emotionMatch := seedPost(t, factory, author.Id, "old joy", "happy", nil, 100*time.Hour)
	tagMatch := seedPost(t, factory, author.Id, "old tag", "sad", []string{"happy"}, 90*time.Hour)
	for i := 0; i < 60; i++ {
		seedPost(t, factory, author.Id, "filler", "calm", nil, time.Duration(i)*time.Minute)
	}

	feed, err := svc.Feed(ctx, viewer.Id)
	require.NoError(t, err)
	require.Len(t, feed, ranking.FeedLimit)
	assert.Equal(t, emotionMatch.Id, feed[0].Id)
	assert.Equal(t, ranking.VibeEmotionMatch, feed[0].VibeScore)
	assert.Equal(t, tagMatch.Id, feed[1].Id)
	assert.Equal(t, ranking.VibeTagMatch, feed[1].VibeScore)
	for i := 2; i < len(feed); i++ {
		assert.Equal(t, ranking.VibeDefault, feed[i].VibeScore)
	}
	for i := 3; i < len(feed); i++ {
		assert.False(t, feed[i].CreatedAt.After(feed[i-1].CreatedAt), "defaults newest first")
	}

	preview, err := svc.VibeMatch(ctx, viewer.Id)
	require.NoError(t, err)
	require.Len(t, preview, ranking.PreviewLimit)
	assert.Equal(t, emotionMatch.Id, preview[0].PostId)
	assert.Equal(t, tagMatch.Id, preview[1].PostId)
}

func TestPostService_FeedWithoutPreference(t *testing.T) {
	svc, factory, _, _ := newPostFixture(t)
	viewer := seedUser(t, factory, "nopref")
	older := seedPost(t, factory, viewer.Id, "older", "happy", nil, time.Hour)
	newer := seedPost(t, factory, viewer.Id, "newer", "sad", nil, time.Minute)

	feed, err := svc.Feed(context.Background(), viewer.Id)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, newer.Id, feed[0].Id)
	assert.Equal(t, older.Id, feed[1].Id)
	for _, item := range feed {
		assert.Equal(t, ranking.VibeDefault, item.VibeScore)
	}
}

func TestPostService_Trending(t *testing.T) {
	svc, factory, db, _ := newPostFixture(t)
	ctx := context.Background()
	u := seedUser(t, factory, "trend")

	a := seedPost(t, factory, u.Id, "a", "happy", nil, time.Hour)
	b := seedPost(t, factory, u.Id, "b", "happy", nil, 2*time.Hour)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", a.Id).Updates(map[string]interface{}{"like_count": 1, "comment_count": 1}).Error)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", b.Id).Updates(map[string]interface{}{"like_count": 10, "comment_count": 5}).Error)

	items, err := svc.Trending(ctx, u.Id)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.Id, items[0].Id)
	assert.Equal(t, 25, items[0].TrendingScore)
	assert.Equal(t, 3, items[1].TrendingScore)

	// served from cache until the TTL passes
	seedPost(t, factory, u.Id, "c", "happy", nil, 0)
	cached, err := svc.Trending(ctx, u.Id)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestPostService_DeleteDropsPostFromTrending(t *testing.T) {
	svc, factory, _, _ := newPostFixture(t)
	ctx := context.Background()
	u := seedUser(t, factory, "fleeting")
	keep := seedPost(t, factory, u.Id, "keep", "happy", nil, time.Hour)
	gone := seedPost(t, factory, u.Id, "gone", "happy", nil, 0)

	items, err := svc.Trending(ctx, u.Id)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, svc.Delete(ctx, u.Id, gone.Id))

	items, err = svc.Trending(ctx, u.Id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.Id, items[0].Id)
}

func TestPostService_ToggleLike(t *testing.T) {
	svc, factory, _, rec := newPostFixture(t)
	ctx := context.Background()
	u := seedUser(t, factory, "liker")
	p := seedPost(t, factory, u.Id, "x", "happy", nil, 0)

	res, err := svc.ToggleLike(ctx, u.Id, p.Id)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikeCount)
	assert.Contains(t, rec.Types(), events.TypePostLiked)

	got, err := svc.Get(ctx, u.Id, p.Id)
	require.NoError(t, err)
	assert.True(t, got.Liked)

	res, err = svc.ToggleLike(ctx, u.Id, p.Id)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.LikeCount)

	_, err = svc.ToggleLike(ctx, u.Id, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestPostService_ConcurrentLikesConverge(t *testing.T) {
	svc, factory, db, _ := newPostFixture(t)
	ctx := context.Background()
	author := seedUser(t, factory, "popular")
	p := seedPost(t, factory, author.Id, "viral", "excited", nil, 0)

	const n = 8
	users := make([]uuid.UUID, n)
	for i := range users {
		users[i] = uuid.New()
	}

	toggleAll := func() {
		var wg sync.WaitGroup
		for _, id := range users {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				_, err := svc.ToggleLike(ctx, id, p.Id)
				assert.NoError(t, err)
			}(id)
		}
		wg.Wait()
	}

	likeCount := func() (int, int64) {
		var post model.Post
		require.NoError(t, db.First(&post, "id = ?", p.Id).Error)
		var rows int64
		require.NoError(t, db.Model(&model.PostLike{}).Where("post_id = ?", p.Id).Count(&rows).Error)
		return post.LikeCount, rows
	}

	toggleAll()
	count, rows := likeCount()
	assert.Equal(t, n, count)
	assert.Equal(t, int64(n), rows)

	toggleAll()
	count, rows = likeCount()
	assert.Equal(t, 0, count)
	assert.Equal(t, int64(0), rows)
}

func TestPostService_ToggleSaveAndSavedList(t *testing.T) {
	svc, factory, _, _ := newPostFixture(t)
	ctx := context.Background()
	u := seedUser(t, factory, "saver")
	p := seedPost(t, factory, u.Id, "keep", "calm", nil, 0)

	res, err := svc.ToggleSave(ctx, u.Id, p.Id)
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.Equal(t, 1, res.SavedCount)

	saved, err := svc.Saved(ctx, u.Id)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].Saved)

	res, err = svc.ToggleSave(ctx, u.Id, p.Id)
	require.NoError(t, err)
	assert.False(t, res.Saved)
	assert.Equal(t, 0, res.SavedCount)
}

func TestPostService_CommentsAndShares(t *testing.T) {
	svc, factory, _, _ := newPostFixture(t)
	ctx := context.Background()
	u := seedUser(t, factory, "talker")
	p := seedPost(t, factory, u.Id, "hello", "happy", nil, 0)

	_, err := svc.Comment(ctx, u.Id, p.Id, &dto.CommentRequest{Content: "   "})
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	first, err := svc.Comment(ctx, u.Id, p.Id, &dto.CommentRequest{Content: "first"})
	require.NoError(t, err)
	_, err = svc.Comment(ctx, u.Id, p.Id, &dto.CommentRequest{Content: "second", Emotion: strPtr("calm")})
	require.NoError(t, err)

	comments, err := svc.Comments(ctx, p.Id)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.Id, comments[0].Id)

	share, err := svc.Share(ctx, u.Id, p.Id, &dto.ShareRequest{})
	require.NoError(t, err)
	assert.Equal(t, "story", share.TargetType)

	got, err := svc.Get(ctx, u.Id, p.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)
	assert.Equal(t, 1, got.ShareCount)

	require.NoError(t, svc.Report(ctx, u.Id, p.Id, &dto.ReportRequest{Reason: strPtr("spam")}))
}

func TestPostService_DeleteOwnerOnly(t *testing.T) {
	svc, factory, _, _ := newPostFixture(t)
	ctx := context.Background()
	owner := seedUser(t, factory, "owner")
	other := seedUser(t, factory, "other")
	p := seedPost(t, factory, owner.Id, "mine", "happy", nil, 0)

	err := svc.Delete(ctx, other.Id, p.Id)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	require.NoError(t, svc.Delete(ctx, owner.Id, p.Id))

	err = svc.Delete(ctx, owner.Id, p.Id)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.Get(ctx, owner.Id, p.Id)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestPostService_ByUser(t *testing.T) {
	svc, factory, _, _ := newPostFixture(t)
	u := seedUser(t, factory, "writer")
	other := seedUser(t, factory, "reader")
	old := seedPost(t, factory, u.Id, "old", "happy", nil, time.Hour)
	recent := seedPost(t, factory, u.Id, "new", "happy", nil, time.Minute)
	seedPost(t, factory, other.Id, "not mine", "happy", nil, 0)

	posts, err := svc.ByUser(context.Background(), other.Id, u.Id)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, recent.Id, posts[0].Id)
	assert.Equal(t, old.Id, posts[1].Id)
}
