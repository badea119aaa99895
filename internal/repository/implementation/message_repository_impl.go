package implementation

import (
	"context"
	"errors"
	"time"

	"aura-be/internal/entity"
	"aura-be/internal/mapper"
	"aura-be/internal/model"
	"aura-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MessageMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewMessageMapper(),
	}
}

func (r *MessageRepositoryImpl) CreateThread(ctx context.Context, thread *entity.MessageThread) error {
	if thread.Id == uuid.Nil {
		thread.Id = uuid.New()
	}
	m := r.mapper.ThreadToModel(thread)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*thread = *r.mapper.ThreadToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) FindThread(ctx context.Context, id uuid.UUID) (*entity.MessageThread, error) {
	var m model.MessageThread
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ThreadToEntity(&m), nil
}

func (r *MessageRepositoryImpl) TouchThread(ctx context.Context, id uuid.UUID, preview string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.MessageThread{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_message": preview, "last_message_at": at}).Error
}

func (r *MessageRepositoryImpl) AddMember(ctx context.Context, member *entity.ThreadMember) (int64, error) {
	if member.Role == "" {
		member.Role = entity.ThreadRoleMember
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ThreadMember{ThreadId: member.ThreadId, UserId: member.UserId, Role: member.Role})
	return res.RowsAffected, res.Error
}

func (r *MessageRepositoryImpl) RemoveMember(ctx context.Context, threadId, userId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("thread_id = ? AND user_id = ?", threadId, userId).
		Delete(&model.ThreadMember{})
	return res.RowsAffected, res.Error
}

func (r *MessageRepositoryImpl) FindMember(ctx context.Context, threadId, userId uuid.UUID) (*entity.ThreadMember, error) {
	var m model.ThreadMember
	err := r.db.WithContext(ctx).Where("thread_id = ? AND user_id = ?", threadId, userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MemberToEntity(&m), nil
}

func (r *MessageRepositoryImpl) MemberIDs(ctx context.Context, threadId uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.ThreadMember{}).
		Where("thread_id = ?", threadId).
		Order("joined_at ASC").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

type threadRow struct {
	Id            uuid.UUID
	CreatorId     uuid.UUID
	Title         *string
	LastMessage   *string
	LastMessageAt *time.Time
	CreatedAt     time.Time
	UnreadCount   int
	LastReadAt    *time.Time
}

func (r *MessageRepositoryImpl) ThreadsFor(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.ThreadSummary, error) {
	var rows []threadRow
	err := r.db.WithContext(ctx).Table("thread_members").
		Select("message_threads.id, message_threads.creator_id, message_threads.title, " +
			"message_threads.last_message, message_threads.last_message_at, message_threads.created_at, " +
			"thread_members.unread_count, thread_members.last_read_at").
		Joins("JOIN message_threads ON message_threads.id = thread_members.thread_id").
		Where("thread_members.user_id = ?", userId).
		// threads without messages sort last on every backend
		Order("CASE WHEN message_threads.last_message_at IS NULL THEN 1 ELSE 0 END").
		Order("message_threads.last_message_at DESC").
		Order("message_threads.created_at DESC").
		Order("message_threads.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entity.ThreadSummary, len(rows))
	for i, row := range rows {
		out[i] = &entity.ThreadSummary{
			MessageThread: entity.MessageThread{
				Id:            row.Id,
				CreatorId:     row.CreatorId,
				Title:         row.Title,
				LastMessage:   row.LastMessage,
				LastMessageAt: row.LastMessageAt,
				CreatedAt:     row.CreatedAt,
			},
			Unread:     row.UnreadCount,
			LastReadAt: row.LastReadAt,
		}
	}
	return out, nil
}

func (r *MessageRepositoryImpl) CreateMessage(ctx context.Context, msg *entity.Message) error {
	if msg.Id == uuid.Nil {
		msg.Id = uuid.New()
	}
	m := r.mapper.MessageToModel(msg)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*msg = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) ListMessages(ctx context.Context, threadId uuid.UUID, before *time.Time, limit int) ([]*entity.Message, error) {
	query := r.db.WithContext(ctx).Where("thread_id = ?", threadId)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	var models []*model.Message
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Message, len(models))
	for i, m := range models {
		out[i] = r.mapper.MessageToEntity(m)
	}
	return out, nil
}

func (r *MessageRepositoryImpl) BumpUnread(ctx context.Context, threadId, senderId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ThreadMember{}).
		Where("thread_id = ? AND user_id <> ?", threadId, senderId).
		UpdateColumn("unread_count", gorm.Expr("unread_count + 1")).Error
}

func (r *MessageRepositoryImpl) MarkRead(ctx context.Context, threadId, userId uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.ThreadMember{}).
		Where("thread_id = ? AND user_id = ?", threadId, userId).
		Updates(map[string]interface{}{"unread_count": 0, "last_read_at": at}).Error
}
