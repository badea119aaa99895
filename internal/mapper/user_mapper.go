package mapper

import (
	"aura-be/internal/entity"
	"aura-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	e := &entity.User{
		Id:             u.Id,
		Email:          u.Email,
		Username:       u.Username,
		PasswordHash:   u.PasswordHash,
		Bio:            u.Bio,
		ProfilePic:     u.ProfilePic,
		MoodPreference: u.MoodPreference,
		VerifiedAt:     u.VerifiedAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	if u.DeletedAt.Valid {
		t := u.DeletedAt.Time
		e.DeletedAt = &t
	}
	return e
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	mu := &model.User{
		Id:             u.Id,
		Email:          u.Email,
		Username:       u.Username,
		PasswordHash:   u.PasswordHash,
		Bio:            u.Bio,
		ProfilePic:     u.ProfilePic,
		MoodPreference: u.MoodPreference,
		VerifiedAt:     u.VerifiedAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	if u.DeletedAt != nil {
		mu.DeletedAt = gorm.DeletedAt{Time: *u.DeletedAt, Valid: true}
	}
	return mu
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}

// Token Mappers

func (m *UserMapper) PasswordResetTokenToEntity(t *model.PasswordResetToken) *entity.PasswordResetToken {
	if t == nil {
		return nil
	}
	return &entity.PasswordResetToken{
		Id:        t.Id,
		UserId:    t.UserId,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		UsedAt:    t.UsedAt,
		CreatedAt: t.CreatedAt,
	}
}

func (m *UserMapper) PasswordResetTokenToModel(t *entity.PasswordResetToken) *model.PasswordResetToken {
	if t == nil {
		return nil
	}
	return &model.PasswordResetToken{
		Id:        t.Id,
		UserId:    t.UserId,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		UsedAt:    t.UsedAt,
		CreatedAt: t.CreatedAt,
	}
}

func (m *UserMapper) EmailVerificationTokenToEntity(t *model.EmailVerificationToken) *entity.EmailVerificationToken {
	if t == nil {
		return nil
	}
	return &entity.EmailVerificationToken{
		Id:        t.Id,
		UserId:    t.UserId,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		UsedAt:    t.UsedAt,
		CreatedAt: t.CreatedAt,
	}
}

func (m *UserMapper) EmailVerificationTokenToModel(t *entity.EmailVerificationToken) *model.EmailVerificationToken {
	if t == nil {
		return nil
	}
	return &model.EmailVerificationToken{
		Id:        t.Id,
		UserId:    t.UserId,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		UsedAt:    t.UsedAt,
		CreatedAt: t.CreatedAt,
	}
}

func (m *UserMapper) UserProviderToEntity(p *model.UserProvider) *entity.UserProvider {
	if p == nil {
		return nil
	}
	return &entity.UserProvider{
		Id:             p.Id,
		UserId:         p.UserId,
		ProviderName:   p.ProviderName,
		ProviderUserId: p.ProviderUserId,
		AvatarURL:      p.AvatarURL,
		CreatedAt:      p.CreatedAt,
	}
}

func (m *UserMapper) UserProviderToModel(p *entity.UserProvider) *model.UserProvider {
	if p == nil {
		return nil
	}
	return &model.UserProvider{
		Id:             p.Id,
		UserId:         p.UserId,
		ProviderName:   p.ProviderName,
		ProviderUserId: p.ProviderUserId,
		AvatarURL:      p.AvatarURL,
		CreatedAt:      p.CreatedAt,
	}
}

func (m *UserMapper) PreferenceToEntity(p *model.UserPreference) *entity.UserPreference {
	if p == nil {
		return nil
	}
	notifications := map[string]interface{}(p.Notifications)
	if notifications == nil {
		notifications = entity.DefaultNotifications()
	}
	return &entity.UserPreference{
		Id:            p.Id,
		UserId:        p.UserId,
		PrivacyLevel:  p.PrivacyLevel,
		Notifications: notifications,
		MoodEnabled:   p.MoodEnabled,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (m *UserMapper) PreferenceToModel(p *entity.UserPreference) *model.UserPreference {
	if p == nil {
		return nil
	}
	return &model.UserPreference{
		Id:            p.Id,
		UserId:        p.UserId,
		PrivacyLevel:  p.PrivacyLevel,
		Notifications: datatypes.JSONMap(p.Notifications),
		MoodEnabled:   p.MoodEnabled,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (m *UserMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:        s.Id,
		UserId:    s.UserId,
		Revoked:   s.Revoked,
		CreatedAt: s.CreatedAt,
		RevokedAt: s.RevokedAt,
	}
}

func (m *UserMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		Id:        s.Id,
		UserId:    s.UserId,
		Revoked:   s.Revoked,
		CreatedAt: s.CreatedAt,
		RevokedAt: s.RevokedAt,
	}
}
