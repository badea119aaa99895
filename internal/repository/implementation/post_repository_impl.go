package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aura-be/internal/entity"
	"aura-be/internal/mapper"
	"aura-be/internal/model"
	"aura-be/internal/repository/contract"
	"aura-be/internal/repository/scope"
	"aura-be/internal/repository/specification"
	"aura-be/pkg/ranking"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PostMapper
}

func NewPostRepository(db *gorm.DB) contract.PostRepository {
	return &PostRepositoryImpl{
		db:     db,
		mapper: mapper.NewPostMapper(),
	}
}

var counterColumns = map[string]bool{
	contract.CounterLikes:    true,
	contract.CounterComments: true,
	contract.CounterShares:   true,
	contract.CounterSaves:    true,
}

func withTags(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	})
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *entity.Post) error {
	if post.Id == uuid.Nil {
		post.Id = uuid.New()
	}
	if post.Emotion == "" {
		post.Emotion = entity.DefaultEmotion
	}
	m := r.mapper.ToModel(post)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*post = *r.mapper.ToEntity(m)
	return nil
}

func (r *PostRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Post, error) {
	var m model.Post
	query := specification.ApplyAll(withTags(r.db.WithContext(ctx).Model(&model.Post{})), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PostRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Post, error) {
	var models []*model.Post
	query := specification.ApplyAll(withTags(r.db.WithContext(ctx).Model(&model.Post{})), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *PostRepositoryImpl) SoftDeleteOwned(ctx context.Context, id, ownerId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerId).Delete(&model.Post{})
	return res.RowsAffected, res.Error
}

func (r *PostRepositoryImpl) AdjustCounter(ctx context.Context, id uuid.UUID, column string, delta int) error {
	if !counterColumns[column] {
		return fmt.Errorf("unknown counter column %q", column)
	}
	var expr clause.Expr
	if delta >= 0 {
		expr = gorm.Expr(fmt.Sprintf("%s + ?", column), delta)
	} else {
		// floor at zero
		expr = gorm.Expr(fmt.Sprintf("CASE WHEN %s + ? > 0 THEN %s + ? ELSE 0 END", column, column), delta, delta)
	}
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		UpdateColumn(column, expr).Error
}

func (r *PostRepositoryImpl) FeedCandidates(ctx context.Context, preference *string, perBucket int) ([]*entity.Post, error) {
	buckets := [][]specification.Specification{
		{specification.NewestPosts{}, specification.Limit{N: perBucket}},
	}
	if preference != nil {
		buckets = append(buckets,
			[]specification.Specification{specification.ByEmotion{Emotion: *preference}, specification.NewestPosts{}, specification.Limit{N: perBucket}},
			[]specification.Specification{specification.HasTag{Tag: *preference}, specification.NewestPosts{}, specification.Limit{N: perBucket}},
		)
	}

	var out []*entity.Post
	for _, specs := range buckets {
		posts, err := r.FindAll(ctx, specs...)
		if err != nil {
			return nil, err
		}
		out = append(out, posts...)
	}
	return out, nil
}

func (r *PostRepositoryImpl) Trending(ctx context.Context, limit int) ([]*entity.Post, error) {
	order := fmt.Sprintf("(posts.like_count * %d + posts.comment_count * %d) DESC",
		ranking.TrendingLikeWeight, ranking.TrendingCommentWeight)
	var models []*model.Post
	err := withTags(r.db.WithContext(ctx).Model(&model.Post{})).
		Order(order).
		Order("posts.created_at DESC").
		Order("posts.id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

// Likes and saves

func (r *PostRepositoryImpl) DeleteLike(ctx context.Context, userId, postId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userId, postId).Delete(&model.PostLike{})
	return res.RowsAffected, res.Error
}

func (r *PostRepositoryImpl) InsertLike(ctx context.Context, userId, postId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PostLike{UserId: userId, PostId: postId})
	return res.RowsAffected, res.Error
}

func (r *PostRepositoryImpl) DeleteSave(ctx context.Context, userId, postId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userId, postId).Delete(&model.PostSave{})
	return res.RowsAffected, res.Error
}

func (r *PostRepositoryImpl) InsertSave(ctx context.Context, userId, postId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PostSave{UserId: userId, PostId: postId})
	return res.RowsAffected, res.Error
}

func (r *PostRepositoryImpl) InteractionFlags(ctx context.Context, userId uuid.UUID, postIds []uuid.UUID) (map[uuid.UUID]bool, map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool)
	saved := make(map[uuid.UUID]bool)
	if len(postIds) == 0 {
		return liked, saved, nil
	}

	var likedIds, savedIds []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userId, postIds).
		Pluck("post_id", &likedIds).Error; err != nil {
		return nil, nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.PostSave{}).
		Where("user_id = ? AND post_id IN ?", userId, postIds).
		Pluck("post_id", &savedIds).Error; err != nil {
		return nil, nil, err
	}

	for _, id := range likedIds {
		liked[id] = true
	}
	for _, id := range savedIds {
		saved[id] = true
	}
	return liked, saved, nil
}

func (r *PostRepositoryImpl) SavedBy(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Post, error) {
	var models []*model.Post
	err := withTags(r.db.WithContext(ctx).Model(&model.Post{})).
		Joins("JOIN post_saves ON post_saves.post_id = posts.id").
		Where("post_saves.user_id = ?", userId).
		Order("post_saves.created_at DESC").
		Order("posts.id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

// Comments, shares, reports

func (r *PostRepositoryImpl) CreateComment(ctx context.Context, comment *entity.PostComment) error {
	if comment.Id == uuid.Nil {
		comment.Id = uuid.New()
	}
	m := r.mapper.CommentToModel(comment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*comment = *r.mapper.CommentToEntity(m)
	return nil
}

func (r *PostRepositoryImpl) ListComments(ctx context.Context, postId uuid.UUID, limit int) ([]*entity.PostComment, error) {
	var models []*model.PostComment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postId).
		Scopes(scope.OrderByCreatedAsc).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*entity.PostComment, len(models))
	for i, m := range models {
		out[i] = r.mapper.CommentToEntity(m)
	}
	return out, nil
}

func (r *PostRepositoryImpl) CreateShare(ctx context.Context, share *entity.PostShare) error {
	if share.Id == uuid.Nil {
		share.Id = uuid.New()
	}
	if share.TargetType == "" {
		share.TargetType = entity.DefaultShareType
	}
	m := r.mapper.ShareToModel(share)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	share.CreatedAt = m.CreatedAt
	return nil
}

func (r *PostRepositoryImpl) CreateReport(ctx context.Context, report *entity.PostReport) error {
	if report.Id == uuid.Nil {
		report.Id = uuid.New()
	}
	m := r.mapper.ReportToModel(report)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	report.CreatedAt = m.CreatedAt
	return nil
}

func (r *PostRepositoryImpl) EmotionCounts(ctx context.Context, since time.Time, authorId *uuid.UUID) ([]entity.EmotionCount, error) {
	var rows []struct {
		Emotion string
		Count   int64
	}
	query := r.db.WithContext(ctx).Model(&model.Post{}).
		Select("emotion, COUNT(*) AS count").
		Where("created_at >= ?", since)
	if authorId != nil {
		query = query.Where("user_id = ?", *authorId)
	}
	if err := query.Group("emotion").Order("count DESC").Order("emotion ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.EmotionCount, len(rows))
	for i, row := range rows {
		out[i] = entity.EmotionCount{Emotion: row.Emotion, Count: row.Count}
	}
	return out, nil
}
