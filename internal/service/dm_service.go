package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"aura-be/internal/dto"
	"aura-be/internal/entity"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/repository/unitofwork"
	"aura-be/pkg/events"
	"aura-be/pkg/ranking"

	"github.com/google/uuid"
)

// Frame types pushed to thread members over the websocket hub.
const (
	FrameThreadCreated = "thread.created"
	FrameMessageNew    = "message.new"
	FrameTyping        = "thread.typing"
	FrameRead          = "thread.read"
)

const previewRunes = 140

// MessageNotifier pushes a frame to the live connections of users.
// The websocket hub implements it.
type MessageNotifier interface {
	SendToUsers(userIDs []uuid.UUID, kind string, payload interface{})
}

type IDMService interface {
	CreateThread(ctx context.Context, creatorId uuid.UUID, req *dto.CreateThreadRequest) (*dto.ThreadResponse, error)
	Threads(ctx context.Context, userId uuid.UUID, q *dto.PageQuery) ([]dto.ThreadSummaryResponse, error)
	Messages(ctx context.Context, threadId, userId uuid.UUID, q *dto.MessageListQuery) ([]dto.MessageResponse, error)
	Send(ctx context.Context, threadId, senderId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	MarkRead(ctx context.Context, threadId, userId uuid.UUID) (*dto.ReadResponse, error)
	Typing(ctx context.Context, threadId, userId uuid.UUID) error
	AddMember(ctx context.Context, threadId, actorId uuid.UUID, req *dto.AddMemberRequest) error
	RemoveMember(ctx context.Context, threadId, actorId, userId uuid.UUID) error
}

type dmService struct {
	uowFactory unitofwork.RepositoryFactory
	notifier   MessageNotifier
	publisher  events.Publisher
	log        logger.ILogger
}

func NewDMService(uowFactory unitofwork.RepositoryFactory, notifier MessageNotifier, publisher events.Publisher, log logger.ILogger) IDMService {
	return &dmService{
		uowFactory: uowFactory,
		notifier:   notifier,
		publisher:  publisher,
		log:        log,
	}
}

func (s *dmService) notify(userIDs []uuid.UUID, kind string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.SendToUsers(userIDs, kind, payload)
}

// requireMember returns the caller's membership or Forbidden.
func (s *dmService) requireMember(ctx context.Context, uow unitofwork.UnitOfWork, threadId, userId uuid.UUID) (*entity.ThreadMember, error) {
	member, err := uow.MessageRepository().FindMember(ctx, threadId, userId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if member != nil {
		return member, nil
	}
	thread, err := uow.MessageRepository().FindThread(ctx, threadId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if thread == nil {
		return nil, apperror.NotFound("Thread not found")
	}
	return nil, apperror.Forbidden("Not a member")
}

// CreateThread makes the creator the owner; participants are deduplicated and
// must all be live users.
func (s *dmService) CreateThread(ctx context.Context, creatorId uuid.UUID, req *dto.CreateThreadRequest) (*dto.ThreadResponse, error) {
	members := []uuid.UUID{creatorId}
	seen := map[uuid.UUID]bool{creatorId: true}
	for _, id := range req.Participants {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}
	if len(members) < 2 {
		return nil, apperror.InvalidInput("At least one other participant is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	for _, id := range members[1:] {
		if err := requireLiveUser(ctx, uow, id); err != nil {
			return nil, err
		}
	}

	var title *string
	if req.Title != nil {
		if t := strings.TrimSpace(*req.Title); t != "" {
			title = &t
		}
	}
	thread := &entity.MessageThread{CreatorId: creatorId, Title: title}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().CreateThread(ctx, thread); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	for _, id := range members {
		role := entity.ThreadRoleMember
		if id == creatorId {
			role = entity.ThreadRoleOwner
		}
		if _, err := uow.MessageRepository().AddMember(ctx, &entity.ThreadMember{ThreadId: thread.Id, UserId: id, Role: role}); err != nil {
			return nil, apperror.FromStorage(err, "")
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	res := &dto.ThreadResponse{
		Id:        thread.Id,
		CreatorId: thread.CreatorId,
		Title:     thread.Title,
		CreatedAt: thread.CreatedAt,
		Members:   members,
	}
	s.notify(members[1:], FrameThreadCreated, res)
	return res, nil
}

func (s *dmService) Threads(ctx context.Context, userId uuid.UUID, q *dto.PageQuery) ([]dto.ThreadSummaryResponse, error) {
	page := ranking.ThreadPage.Normalize(q.Limit, q.Offset)
	rows, err := s.uowFactory.NewUnitOfWork(ctx).MessageRepository().ThreadsFor(ctx, userId, page.Limit, page.Offset)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	out := make([]dto.ThreadSummaryResponse, len(rows))
	for i, t := range rows {
		out[i] = dto.ThreadSummaryResponse{
			Id:            t.Id,
			Title:         t.Title,
			LastMessage:   t.LastMessage,
			LastMessageAt: t.LastMessageAt,
			CreatedAt:     t.CreatedAt,
			Unread:        t.Unread,
			LastReadAt:    t.LastReadAt,
		}
	}
	return out, nil
}

// Messages pages backwards from Before, newest first.
func (s *dmService) Messages(ctx context.Context, threadId, userId uuid.UUID, q *dto.MessageListQuery) ([]dto.MessageResponse, error) {
	var before *time.Time
	if raw := strings.TrimSpace(q.Before); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, apperror.InvalidInput("Invalid before timestamp")
		}
		before = &t
	}
	page := ranking.MessagePage.Normalize(q.Limit, "")

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.requireMember(ctx, uow, threadId, userId); err != nil {
		return nil, err
	}
	msgs, err := uow.MessageRepository().ListMessages(ctx, threadId, before, page.Limit)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	out := make([]dto.MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = toMessageDTO(m)
	}
	return out, nil
}

// Send stores the message, refreshes the thread preview and bumps every other
// member's unread count in one transaction, then pushes it to live members.
func (s *dmService) Send(ctx context.Context, threadId, senderId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperror.InvalidInput("Content required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	// membership is read inside the transaction that writes the message
	if _, err := s.requireMember(ctx, uow, threadId, senderId); err != nil {
		return nil, err
	}

	msg := &entity.Message{ThreadId: threadId, SenderId: senderId, Content: content, CreatedAt: time.Now()}

	repo := uow.MessageRepository()
	if err := repo.CreateMessage(ctx, msg); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := repo.TouchThread(ctx, threadId, preview(content), msg.CreatedAt); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := repo.BumpUnread(ctx, threadId, senderId); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := repo.MarkRead(ctx, threadId, senderId, msg.CreatedAt); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	members, err := repo.MemberIDs(ctx, threadId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	res := toMessageDTO(msg)
	s.notify(members, FrameMessageNew, res)
	publishEvent(ctx, s.publisher, s.log, events.MessageSent(msg.Id, threadId, senderId))
	return &res, nil
}

func (s *dmService) MarkRead(ctx context.Context, threadId, userId uuid.UUID) (*dto.ReadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.requireMember(ctx, uow, threadId, userId); err != nil {
		return nil, err
	}
	now := time.Now()
	if err := uow.MessageRepository().MarkRead(ctx, threadId, userId, now); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	res := &dto.ReadResponse{ThreadId: threadId, ReadAt: now}
	s.notify([]uuid.UUID{userId}, FrameRead, res)
	return res, nil
}

// Typing is relayed to the other members and never stored.
func (s *dmService) Typing(ctx context.Context, threadId, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.requireMember(ctx, uow, threadId, userId); err != nil {
		return err
	}
	members, err := uow.MessageRepository().MemberIDs(ctx, threadId)
	if err != nil {
		return apperror.FromStorage(err, "")
	}
	others := make([]uuid.UUID, 0, len(members))
	for _, id := range members {
		if id != userId {
			others = append(others, id)
		}
	}
	s.notify(others, FrameTyping, map[string]interface{}{"thread_id": threadId, "user_id": userId})
	return nil
}

// AddMember lets any member invite a live user.
func (s *dmService) AddMember(ctx context.Context, threadId, actorId uuid.UUID, req *dto.AddMemberRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.requireMember(ctx, uow, threadId, actorId); err != nil {
		return err
	}
	if err := requireLiveUser(ctx, uow, req.UserId); err != nil {
		return err
	}
	_, err := uow.MessageRepository().AddMember(ctx, &entity.ThreadMember{ThreadId: threadId, UserId: req.UserId})
	return apperror.FromStorage(err, "")
}

// RemoveMember is allowed for the owner, or for a member leaving on their own.
func (s *dmService) RemoveMember(ctx context.Context, threadId, actorId, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	actor, err := s.requireMember(ctx, uow, threadId, actorId)
	if err != nil {
		return err
	}
	if actorId != userId && actor.Role != entity.ThreadRoleOwner {
		return apperror.Forbidden("Only the owner can remove members")
	}
	removed, err := uow.MessageRepository().RemoveMember(ctx, threadId, userId)
	if err != nil {
		return apperror.FromStorage(err, "")
	}
	if removed == 0 {
		return apperror.NotFound("Member not found")
	}
	return nil
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewRunes {
		return content
	}
	return string([]rune(content)[:previewRunes])
}

func toMessageDTO(m *entity.Message) dto.MessageResponse {
	return dto.MessageResponse{
		Id:        m.Id,
		ThreadId:  m.ThreadId,
		SenderId:  m.SenderId,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
