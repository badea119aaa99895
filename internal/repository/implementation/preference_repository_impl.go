package implementation

import (
	"context"
	"errors"

	"aura-be/internal/entity"
	"aura-be/internal/mapper"
	"aura-be/internal/model"
	"aura-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewPreferenceRepository(db *gorm.DB) contract.PreferenceRepository {
	return &PreferenceRepositoryImpl{db: db, mapper: mapper.NewUserMapper()}
}

func (r *PreferenceRepositoryImpl) FindByUserID(ctx context.Context, userId uuid.UUID) (*entity.UserPreference, error) {
	var m model.UserPreference
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PreferenceToEntity(&m), nil
}

func (r *PreferenceRepositoryImpl) Upsert(ctx context.Context, pref *entity.UserPreference, columns []string) error {
	if pref.Id == uuid.Nil {
		pref.Id = uuid.New()
	}
	if pref.Notifications == nil {
		pref.Notifications = entity.DefaultNotifications()
	}
	if pref.PrivacyLevel == "" {
		pref.PrivacyLevel = entity.PrivacyPublic
	}

	m := r.mapper.PreferenceToModel(pref)
	updates := append([]string{"updated_at"}, columns...)

	// Select forces zero values (mood_enabled=false) into the INSERT.
	err := r.db.WithContext(ctx).
		Select("*").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		Create(m).Error
	if err != nil {
		return err
	}

	stored, err := r.FindByUserID(ctx, pref.UserId)
	if err != nil {
		return err
	}
	if stored != nil {
		*pref = *stored
	}
	return nil
}
