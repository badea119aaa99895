package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"aura-be/internal/dto"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/testutil"
	"aura-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	to   []uuid.UUID
	kind string
}

type fakeNotifier struct {
	mu     sync.Mutex
	frames []frame
}

func (f *fakeNotifier) SendToUsers(userIDs []uuid.UUID, kind string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame{to: append([]uuid.UUID(nil), userIDs...), kind: kind})
}

func (f *fakeNotifier) last() frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[len(f.frames)-1]
}

func TestDMService_CreateThread(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	hub := &fakeNotifier{}
	svc := NewDMService(factory, hub, nil, logger.NewNop())
	ctx := context.Background()
	a := seedUser(t, factory, "alice")
	b := seedUser(t, factory, "bobby")

	res, err := svc.CreateThread(ctx, a.Id, &dto.CreateThreadRequest{
		Participants: []uuid.UUID{b.Id, b.Id, a.Id},
		Title:        strPtr("  plans  "),
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.Id, b.Id}, res.Members)
	require.NotNil(t, res.Title)
	assert.Equal(t, "plans", *res.Title)
	assert.Equal(t, frame{to: []uuid.UUID{b.Id}, kind: FrameThreadCreated}, hub.last())

	_, err = svc.CreateThread(ctx, a.Id, &dto.CreateThreadRequest{Participants: []uuid.UUID{a.Id}})
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	_, err = svc.CreateThread(ctx, a.Id, &dto.CreateThreadRequest{Participants: []uuid.UUID{uuid.New()}})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDMService_SendAndRead(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	hub := &fakeNotifier{}
	rec := &events.Recorder{}
	svc := NewDMService(factory, hub, rec, logger.NewNop())
	ctx := context.Background()
	a := seedUser(t, factory, "alice")
	b := seedUser(t, factory, "bobby")

	thread, err := svc.CreateThread(ctx, a.Id, &dto.CreateThreadRequest{Participants: []uuid.UUID{b.Id}})
	require.NoError(t, err)

	_, err = svc.Send(ctx, thread.Id, a.Id, &dto.SendMessageRequest{Content: "   "})
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	long := strings.Repeat("x", 200)
	msg, err := svc.Send(ctx, thread.Id, a.Id, &dto.SendMessageRequest{Content: long})
	require.NoError(t, err)
	assert.Equal(t, long, msg.Content)
	assert.Equal(t, FrameMessageNew, hub.last().kind)
	assert.ElementsMatch(t, []uuid.UUID{a.Id, b.Id}, hub.last().to)
	assert.Equal(t, []string{events.TypeMessageSent}, rec.Types())

	threads, err := svc.Threads(ctx, b.Id, &dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, 1, threads[0].Unread)
	require.NotNil(t, threads[0].LastMessage)
	assert.Len(t, *threads[0].LastMessage, previewRunes)

	mine, err := svc.Threads(ctx, a.Id, &dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, mine[0].Unread)

	_, err = svc.MarkRead(ctx, thread.Id, b.Id)
	require.NoError(t, err)
	threads, err = svc.Threads(ctx, b.Id, &dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, threads[0].Unread)
	assert.NotNil(t, threads[0].LastReadAt)
}

func TestDMService_MessagesPageBackwards(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	svc := NewDMService(factory, nil, nil, logger.NewNop())
	ctx := context.Background()
	a := seedUser(t, factory, "alice")
	b := seedUser(t, factory, "bobby")

	thread, err := svc.CreateThread(ctx, a.Id, &dto.CreateThreadRequest{Participants: []uuid.UUID{b.Id}})
	require.NoError(t, err)
	for _, text := range []string{"one", "two", "three"} {
		_, err := svc.Send(ctx, thread.Id, a.Id, &dto.SendMessageRequest{Content: text})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	page, err := svc.Messages(ctx, thread.Id, b.Id, &dto.MessageListQuery{Limit: "2"})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Content)
	assert.Equal(t, "two", page[1].Content)

	older, err := svc.Messages(ctx, thread.Id, b.Id, &dto.MessageListQuery{
		Before: page[1].CreatedAt.Format(time.RFC3339Nano),
	})
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "one", older[0].Content)

	_, err = svc.Messages(ctx, thread.Id, b.Id, &dto.MessageListQuery{Before: "yesterday"})
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
}

func TestDMService_MembershipRules(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	hub := &fakeNotifier{}
	svc := NewDMService(factory, hub, nil, logger.NewNop())
	ctx := context.Background()
	owner := seedUser(t, factory, "owner")
	member := seedUser(t, factory, "member")
	outsider := seedUser(t, factory, "outsider")

	thread, err := svc.CreateThread(ctx, owner.Id, &dto.CreateThreadRequest{Participants: []uuid.UUID{member.Id}})
	require.NoError(t, err)

	_, err = svc.Messages(ctx, thread.Id, outsider.Id, &dto.MessageListQuery{})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	_, err = svc.Send(ctx, uuid.New(), owner.Id, &dto.SendMessageRequest{Content: "hi"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	require.NoError(t, svc.Typing(ctx, thread.Id, member.Id))
	assert.Equal(t, frame{to: []uuid.UUID{owner.Id}, kind: FrameTyping}, hub.last())

	require.NoError(t, svc.AddMember(ctx, thread.Id, member.Id, &dto.AddMemberRequest{UserId: outsider.Id}))
	_, err = svc.Messages(ctx, thread.Id, outsider.Id, &dto.MessageListQuery{})
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, thread.Id, member.Id, outsider.Id)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	require.NoError(t, svc.RemoveMember(ctx, thread.Id, owner.Id, outsider.Id))
	require.NoError(t, svc.RemoveMember(ctx, thread.Id, member.Id, member.Id))
	err = svc.RemoveMember(ctx, thread.Id, owner.Id, member.Id)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDMService_RemovedMemberCannotSend(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	svc := NewDMService(factory, nil, nil, logger.NewNop())
	ctx := context.Background()
	owner := seedUser(t, factory, "owner")
	member := seedUser(t, factory, "member")

	thread, err := svc.CreateThread(ctx, owner.Id, &dto.CreateThreadRequest{Participants: []uuid.UUID{member.Id}})
	require.NoError(t, err)
	require.NoError(t, svc.RemoveMember(ctx, thread.Id, owner.Id, member.Id))

	_, err = svc.Send(ctx, thread.Id, member.Id, &dto.SendMessageRequest{Content: "still here?"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	// the failed send leaves no message, preview or unread count behind
	msgs, err := svc.Messages(ctx, thread.Id, owner.Id, &dto.MessageListQuery{})
	require.NoError(t, err)
	assert.Empty(t, msgs)
	threads, err := svc.Threads(ctx, owner.Id, &dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Nil(t, threads[0].LastMessage)
	assert.Equal(t, 0, threads[0].Unread)
}
