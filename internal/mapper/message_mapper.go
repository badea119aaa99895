package mapper

import (
	"aura-be/internal/entity"
	"aura-be/internal/model"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ThreadToEntity(t *model.MessageThread) *entity.MessageThread {
	if t == nil {
		return nil
	}
	return &entity.MessageThread{
		Id:            t.Id,
		CreatorId:     t.CreatorId,
		Title:         t.Title,
		LastMessage:   t.LastMessage,
		LastMessageAt: t.LastMessageAt,
		CreatedAt:     t.CreatedAt,
	}
}

func (m *MessageMapper) ThreadToModel(t *entity.MessageThread) *model.MessageThread {
	if t == nil {
		return nil
	}
	return &model.MessageThread{
		Id:            t.Id,
		CreatorId:     t.CreatorId,
		Title:         t.Title,
		LastMessage:   t.LastMessage,
		LastMessageAt: t.LastMessageAt,
		CreatedAt:     t.CreatedAt,
	}
}

func (m *MessageMapper) MemberToEntity(tm *model.ThreadMember) *entity.ThreadMember {
	if tm == nil {
		return nil
	}
	return &entity.ThreadMember{
		ThreadId:    tm.ThreadId,
		UserId:      tm.UserId,
		Role:        tm.Role,
		UnreadCount: tm.UnreadCount,
		LastReadAt:  tm.LastReadAt,
		JoinedAt:    tm.JoinedAt,
	}
}

func (m *MessageMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:        msg.Id,
		ThreadId:  msg.ThreadId,
		SenderId:  msg.SenderId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *MessageMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:        msg.Id,
		ThreadId:  msg.ThreadId,
		SenderId:  msg.SenderId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
