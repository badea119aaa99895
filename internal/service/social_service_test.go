package service

import (
	"context"
	"testing"

	"aura-be/internal/dto"
	"aura-be/internal/entity"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/testutil"
	"aura-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialService_FollowIsIdempotent(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	rec := &events.Recorder{}
	svc := NewSocialService(factory, rec, logger.NewNop())
	ctx := context.Background()
	a := seedUser(t, factory, "alice")
	b := seedUser(t, factory, "bobby")

	res, err := svc.Follow(ctx, a.Id, b.Id)
	require.NoError(t, err)
	assert.True(t, res.Following)
	_, err = svc.Follow(ctx, a.Id, b.Id)
	require.NoError(t, err)

	// only the first follow creates an edge
	assert.Equal(t, []string{events.TypeUserFollowed}, rec.Types())

	counts, err := svc.Counts(ctx, b.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Followers)
	assert.Equal(t, int64(0), counts.Following)

	res, err = svc.Unfollow(ctx, a.Id, b.Id)
	require.NoError(t, err)
	assert.False(t, res.Following)
	counts, err = svc.Counts(ctx, b.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Followers)
}

func TestSocialService_FollowRejections(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	svc := NewSocialService(factory, nil, logger.NewNop())
	ctx := context.Background()
	a := seedUser(t, factory, "alice")
	b := seedUser(t, factory, "bobby")

	tests := []struct {
		name  string
		setup func()
		from  *entity.User
		to    *entity.User
		kind  apperror.Kind
	}{
		{name: "self", from: a, to: a, kind: apperror.KindInvalidInput},
		{
			name: "blocked",
			setup: func() {
				require.NoError(t, NewUserService(factory, &fakeMail{}, "", logger.NewNop()).BlockUser(ctx, b.Id, a.Id))
			},
			from: a, to: b, kind: apperror.KindForbidden,
		},
		{
			name: "deleted target",
			setup: func() {
				require.NoError(t, NewUserService(factory, &fakeMail{}, "", logger.NewNop()).DeleteAccount(ctx, b.Id))
			},
			from: a, to: b, kind: apperror.KindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			_, err := svc.Follow(ctx, tt.from.Id, tt.to.Id)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestSocialService_ConnectionsAndStatus(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	svc := NewSocialService(factory, nil, logger.NewNop())
	ctx := context.Background()
	star := seedUser(t, factory, "star")
	fan1 := seedUser(t, factory, "fan_one")
	fan2 := seedUser(t, factory, "fan_two")
	gone := seedUser(t, factory, "gone")

	for _, u := range []*entity.User{fan1, fan2, gone} {
		_, err := svc.Follow(ctx, u.Id, star.Id)
		require.NoError(t, err)
	}
	_, err := svc.Follow(ctx, star.Id, fan1.Id)
	require.NoError(t, err)
	require.NoError(t, NewUserService(factory, &fakeMail{}, "", logger.NewNop()).DeleteAccount(ctx, gone.Id))

	followers, err := svc.Followers(ctx, star.Id, &dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), followers.Total)
	assert.Equal(t, 50, followers.Limit)
	require.Len(t, followers.Users, 2)
	names := []string{followers.Users[0].Username, followers.Users[1].Username}
	assert.ElementsMatch(t, []string{"fan_one", "fan_two"}, names)

	page, err := svc.Followers(ctx, star.Id, &dto.PageQuery{Limit: "1", Offset: "-4"})
	require.NoError(t, err)
	assert.Len(t, page.Users, 1)
	assert.Equal(t, 0, page.Offset)

	following, err := svc.Following(ctx, star.Id, &dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, following.Users, 1)
	assert.Equal(t, fan1.Id, following.Users[0].UserId)

	status, err := svc.Status(ctx, star.Id, fan1.Id)
	require.NoError(t, err)
	assert.True(t, status.IFollow)
	assert.True(t, status.FollowsMe)

	status, err = svc.Status(ctx, star.Id, fan2.Id)
	require.NoError(t, err)
	assert.False(t, status.IFollow)
	assert.True(t, status.FollowsMe)
}

func TestSocialService_SuggestionsAndMutual(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	svc := NewSocialService(factory, nil, logger.NewNop())
	ctx := context.Background()
	me := seedUser(t, factory, "me_user")
	friend := seedUser(t, factory, "friend")
	blocker := seedUser(t, factory, "blocker")
	stranger := seedUser(t, factory, "stranger")

	_, err := svc.Follow(ctx, me.Id, friend.Id)
	require.NoError(t, err)
	require.NoError(t, NewUserService(factory, &fakeMail{}, "", logger.NewNop()).BlockUser(ctx, blocker.Id, me.Id))

	suggested, err := svc.Suggestions(ctx, me.Id, &dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, suggested, 1)
	assert.Equal(t, stranger.Id, suggested[0].Id)

	// stranger follows both me and friend
	_, err = svc.Follow(ctx, stranger.Id, me.Id)
	require.NoError(t, err)
	_, err = svc.Follow(ctx, stranger.Id, friend.Id)
	require.NoError(t, err)

	mutual, err := svc.Mutual(ctx, me.Id, friend.Id)
	require.NoError(t, err)
	require.Len(t, mutual, 1)
	assert.Equal(t, "stranger", mutual[0].Username)
}
