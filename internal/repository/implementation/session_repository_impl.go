package implementation

import (
	"context"
	"errors"
	"time"

	"aura-be/internal/entity"
	"aura-be/internal/mapper"
	"aura-be/internal/model"
	"aura-be/internal/repository/contract"
	"aura-be/internal/repository/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{db: db, mapper: mapper.NewUserMapper()}
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *SessionRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var m model.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *SessionRepositoryImpl) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Session{}).
		Scopes(scope.Unrevoked).
		Where("id = ?", id).
		Updates(map[string]interface{}{"revoked": true, "revoked_at": at}).Error
}

func (r *SessionRepositoryImpl) RevokeAllForUser(ctx context.Context, userId uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Session{}).
		Scopes(scope.Unrevoked).
		Where("user_id = ?", userId).
		Updates(map[string]interface{}{"revoked": true, "revoked_at": at})
	return res.RowsAffected, res.Error
}
