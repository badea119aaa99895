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
	"aura-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	modelUser := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(modelUser).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(modelUser)
	return nil
}

func (r *UserRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var modelUser model.User
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)

	if err := query.First(&modelUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&modelUser), nil
}

// FindOneUnscoped finds a user including soft-deleted ones (ignores deleted_at filter)
func (r *UserRepositoryImpl) FindOneUnscoped(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var modelUser model.User
	query := specification.ApplyAll(r.db.WithContext(ctx).Scopes(scope.WithSoftDeleted), specs...)

	if err := query.First(&modelUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&modelUser), nil
}

func (r *UserRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var modelUsers []*model.User
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)

	if err := query.Find(&modelUsers).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(modelUsers), nil
}

// Token Implementations

func (r *UserRepositoryImpl) CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error {
	if token.Id == uuid.Nil {
		token.Id = uuid.New()
	}
	return r.db.WithContext(ctx).Create(r.mapper.PasswordResetTokenToModel(token)).Error
}

func (r *UserRepositoryImpl) FindPasswordResetToken(ctx context.Context, token string) (*entity.PasswordResetToken, error) {
	var m model.PasswordResetToken
	if err := (specification.ByToken{Token: token}).Apply(r.db.WithContext(ctx)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PasswordResetTokenToEntity(&m), nil
}

func (r *UserRepositoryImpl) MarkPasswordResetTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return markUsed(ctx, r.db, &model.PasswordResetToken{}, id, at)
}

func (r *UserRepositoryImpl) CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error {
	if token.Id == uuid.Nil {
		token.Id = uuid.New()
	}
	return r.db.WithContext(ctx).Create(r.mapper.EmailVerificationTokenToModel(token)).Error
}

func (r *UserRepositoryImpl) FindEmailVerificationToken(ctx context.Context, token string) (*entity.EmailVerificationToken, error) {
	var m model.EmailVerificationToken
	if err := (specification.ByToken{Token: token}).Apply(r.db.WithContext(ctx)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.EmailVerificationTokenToEntity(&m), nil
}

func (r *UserRepositoryImpl) MarkEmailVerificationTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return markUsed(ctx, r.db, &model.EmailVerificationToken{}, id, at)
}

// markUsed stamps used_at only while it is still null, so a token is consumed once.
func markUsed(ctx context.Context, db *gorm.DB, m interface{}, id uuid.UUID, at time.Time) error {
	res := db.WithContext(ctx).Model(m).Where("id = ? AND used_at IS NULL", id).Update("used_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Provider

func (r *UserRepositoryImpl) SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error {
	if provider.Id == uuid.Nil {
		provider.Id = uuid.New()
	}
	m := r.mapper.UserProviderToModel(provider)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_name"}, {Name: "provider_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"avatar_url"}),
	}).Create(m).Error
}

func (r *UserRepositoryImpl) FindUserProvider(ctx context.Context, providerName, providerUserId string) (*entity.UserProvider, error) {
	var m model.UserProvider
	err := r.db.WithContext(ctx).
		Where("provider_name = ? AND provider_user_id = ?", providerName, providerUserId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserProviderToEntity(&m), nil
}

// Social graph

func (r *UserRepositoryImpl) CreateBlock(ctx context.Context, block *entity.UserBlock) error {
	if block.Id == uuid.Nil {
		block.Id = uuid.New()
	}
	m := &model.UserBlock{Id: block.Id, BlockerId: block.BlockerId, BlockedId: block.BlockedId}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

func (r *UserRepositoryImpl) BlockRelatedIDs(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	var blocks []model.UserBlock
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? OR blocked_id = ?", userId, userId).
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(blocks))
	for _, b := range blocks {
		if b.BlockerId == userId {
			ids = append(ids, b.BlockedId)
		} else {
			ids = append(ids, b.BlockerId)
		}
	}
	return ids, nil
}

func (r *UserRepositoryImpl) CreateReport(ctx context.Context, report *entity.UserReport) error {
	if report.Id == uuid.Nil {
		report.Id = uuid.New()
	}
	m := &model.UserReport{Id: report.Id, ReporterId: report.ReporterId, ReportedId: report.ReportedId, Reason: report.Reason}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	report.CreatedAt = m.CreatedAt
	return nil
}
