package mapper

import (
	"sort"

	"aura-be/internal/entity"
	"aura-be/internal/model"
)

type PostMapper struct{}

func NewPostMapper() *PostMapper {
	return &PostMapper{}
}

func (m *PostMapper) ToEntity(p *model.Post) *entity.Post {
	if p == nil {
		return nil
	}

	tags := make([]model.PostTag, len(p.Tags))
	copy(tags, p.Tags)
	sort.Slice(tags, func(i, j int) bool { return tags[i].Position < tags[j].Position })

	tagValues := make([]string, len(tags))
	for i, t := range tags {
		tagValues[i] = t.Tag
	}

	return &entity.Post{
		Id:           p.Id,
		UserId:       p.UserId,
		Caption:      p.Caption,
		MediaURL:     p.MediaURL,
		MediaType:    p.MediaType,
		Emotion:      p.Emotion,
		Tags:         tagValues,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		ShareCount:   p.ShareCount,
		SavedCount:   p.SavedCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (m *PostMapper) ToModel(p *entity.Post) *model.Post {
	if p == nil {
		return nil
	}

	tags := make([]model.PostTag, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = model.PostTag{PostId: p.Id, Position: i, Tag: t}
	}

	return &model.Post{
		Id:           p.Id,
		UserId:       p.UserId,
		Caption:      p.Caption,
		MediaURL:     p.MediaURL,
		MediaType:    p.MediaType,
		Emotion:      p.Emotion,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		ShareCount:   p.ShareCount,
		SavedCount:   p.SavedCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Tags:         tags,
	}
}

func (m *PostMapper) ToEntities(posts []*model.Post) []*entity.Post {
	entities := make([]*entity.Post, len(posts))
	for i, p := range posts {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

func (m *PostMapper) CommentToEntity(c *model.PostComment) *entity.PostComment {
	if c == nil {
		return nil
	}
	return &entity.PostComment{
		Id:        c.Id,
		PostId:    c.PostId,
		UserId:    c.UserId,
		Content:   c.Content,
		Emotion:   c.Emotion,
		CreatedAt: c.CreatedAt,
	}
}

func (m *PostMapper) CommentToModel(c *entity.PostComment) *model.PostComment {
	if c == nil {
		return nil
	}
	return &model.PostComment{
		Id:        c.Id,
		PostId:    c.PostId,
		UserId:    c.UserId,
		Content:   c.Content,
		Emotion:   c.Emotion,
		CreatedAt: c.CreatedAt,
	}
}

func (m *PostMapper) ShareToModel(s *entity.PostShare) *model.PostShare {
	if s == nil {
		return nil
	}
	return &model.PostShare{
		Id:         s.Id,
		PostId:     s.PostId,
		UserId:     s.UserId,
		TargetType: s.TargetType,
		CircleId:   s.CircleId,
		CreatedAt:  s.CreatedAt,
	}
}

func (m *PostMapper) ReportToModel(r *entity.PostReport) *model.PostReport {
	if r == nil {
		return nil
	}
	return &model.PostReport{
		Id:         r.Id,
		PostId:     r.PostId,
		ReporterId: r.ReporterId,
		Reason:     r.Reason,
		CreatedAt:  r.CreatedAt,
	}
}
