package implementation

import (
	"context"
	"time"

	"aura-be/internal/entity"
	"aura-be/internal/mapper"
	"aura-be/internal/model"
	"aura-be/internal/repository/contract"
	"aura-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewFollowRepository(db *gorm.DB) contract.FollowRepository {
	return &FollowRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *FollowRepositoryImpl) Follow(ctx context.Context, followerId, followingId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Follow{FollowerId: followerId, FollowingId: followingId})
	return res.RowsAffected, res.Error
}

func (r *FollowRepositoryImpl) Unfollow(ctx context.Context, followerId, followingId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerId, followingId).
		Delete(&model.Follow{})
	return res.RowsAffected, res.Error
}

func (r *FollowRepositoryImpl) IsFollowing(ctx context.Context, followerId, followingId uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerId, followingId).
		Count(&n).Error
	return n > 0, err
}

type connectionRow struct {
	Id         uuid.UUID
	Username   string
	ProfilePic string
	VerifiedAt *time.Time
	FollowedAt time.Time
}

// connections joins follows to the user on the other end. joinColumn is the
// follows column holding that user; whereColumn pins userId.
func (r *FollowRepositoryImpl) connections(ctx context.Context, joinColumn, whereColumn string, userId uuid.UUID, limit, offset int) ([]*entity.Connection, error) {
	var rows []connectionRow
	err := r.db.WithContext(ctx).Table("follows").
		Select("users.id, users.username, users.profile_pic, users.verified_at, follows.created_at AS followed_at").
		Joins("JOIN users ON users.id = follows."+joinColumn).
		Where("follows."+whereColumn+" = ? AND users.deleted_at IS NULL", userId).
		Order("follows.created_at DESC").
		Order("users.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Connection, len(rows))
	for i, row := range rows {
		out[i] = &entity.Connection{
			UserId:     row.Id,
			Username:   row.Username,
			ProfilePic: row.ProfilePic,
			Verified:   row.VerifiedAt != nil,
			Since:      row.FollowedAt,
		}
	}
	return out, nil
}

func (r *FollowRepositoryImpl) Followers(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Connection, error) {
	return r.connections(ctx, "follower_id", "following_id", userId, limit, offset)
}

func (r *FollowRepositoryImpl) Following(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Connection, error) {
	return r.connections(ctx, "following_id", "follower_id", userId, limit, offset)
}

func (r *FollowRepositoryImpl) Suggestions(ctx context.Context, userId uuid.UUID, exclude []uuid.UUID, limit int) ([]*entity.User, error) {
	followed := r.db.WithContext(ctx).Model(&model.Follow{}).
		Select("following_id").
		Where("follower_id = ?", userId)

	var users []*model.User
	query := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id <> ?", userId).
		Where("id NOT IN (?)", followed)
	query = specification.ApplyAll(query,
		specification.ExcludeIDs{IDs: exclude},
		specification.Newest{},
		specification.Limit{N: limit},
	)
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(users), nil
}

func (r *FollowRepositoryImpl) Mutual(ctx context.Context, a, b uuid.UUID, limit int) ([]*entity.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN follows f1 ON f1.follower_id = users.id AND f1.following_id = ?", a).
		Joins("JOIN follows f2 ON f2.follower_id = users.id AND f2.following_id = ?", b).
		Order("users.username ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(users), nil
}

func (r *FollowRepositoryImpl) Counts(ctx context.Context, userId uuid.UUID) (int64, int64, error) {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Joins("JOIN users ON users.id = follows.follower_id AND users.deleted_at IS NULL").
		Where("follows.following_id = ?", userId).
		Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Joins("JOIN users ON users.id = follows.following_id AND users.deleted_at IS NULL").
		Where("follows.follower_id = ?", userId).
		Count(&following).Error; err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
