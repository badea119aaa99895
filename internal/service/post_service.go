package service

import (
	"context"
	"strings"

	"aura-be/internal/dto"
	"aura-be/internal/entity"
	"aura-be/internal/metrics"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/repository/cache"
	"aura-be/internal/repository/contract"
	"aura-be/internal/repository/specification"
	"aura-be/internal/repository/unitofwork"
	"aura-be/pkg/events"
	"aura-be/pkg/ranking"

	"github.com/google/uuid"
)

const (
	postNotFound     = "Post not found"
	userPostsLimit   = 100
	savedPostsLimit  = 100
	commentListLimit = 200
)

type IPostService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePostRequest) (*dto.PostResponse, error)
	Get(ctx context.Context, requesterId, postId uuid.UUID) (*dto.PostResponse, error)
	ByUser(ctx context.Context, requesterId, authorId uuid.UUID) ([]dto.PostResponse, error)

	Feed(ctx context.Context, userId uuid.UUID) ([]dto.FeedItem, error)
	Trending(ctx context.Context, userId uuid.UUID) ([]dto.TrendingItem, error)
	VibeMatch(ctx context.Context, userId uuid.UUID) ([]dto.VibeMatchItem, error)

	ToggleLike(ctx context.Context, userId, postId uuid.UUID) (*dto.LikeToggleResponse, error)
	ToggleSave(ctx context.Context, userId, postId uuid.UUID) (*dto.SaveToggleResponse, error)
	Saved(ctx context.Context, userId uuid.UUID) ([]dto.PostResponse, error)

	Comment(ctx context.Context, userId, postId uuid.UUID, req *dto.CommentRequest) (*dto.CommentResponse, error)
	Comments(ctx context.Context, postId uuid.UUID) ([]dto.CommentResponse, error)
	Share(ctx context.Context, userId, postId uuid.UUID, req *dto.ShareRequest) (*dto.ShareResponse, error)
	Report(ctx context.Context, userId, postId uuid.UUID, req *dto.ReportRequest) error
	Delete(ctx context.Context, userId, postId uuid.UUID) error
}

type postService struct {
	uowFactory unitofwork.RepositoryFactory
	trending   cache.TrendingCache
	publisher  events.Publisher
	log        logger.ILogger
}

func NewPostService(uowFactory unitofwork.RepositoryFactory, trending cache.TrendingCache, publisher events.Publisher, log logger.ILogger) IPostService {
	return &postService{
		uowFactory: uowFactory,
		trending:   trending,
		publisher:  publisher,
		log:        log,
	}
}

// NormalizeTags trims every tag, drops empties and keeps at most MaxPostTags.
// Order and duplicates are preserved.
func NormalizeTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == entity.MaxPostTags {
			break
		}
	}
	return out
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *postService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	post := &entity.Post{
		UserId:    userId,
		Caption:   req.Caption,
		MediaURL:  trimmedOrNil(req.MediaURL),
		MediaType: trimmedOrNil(req.MediaType),
		Emotion:   entity.DefaultEmotion,
		Tags:      NormalizeTags(req.Tags),
	}
	if e := trimmedOrNil(req.Emotion); e != nil {
		post.Emotion = *e
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	if err := uow.PostRepository().Create(ctx, post); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	s.log.Info("POST", "Post created", map[string]interface{}{
		"post_id": post.Id,
		"user_id": userId,
		"emotion": post.Emotion,
		"tags":    len(post.Tags),
	})
	publishEvent(ctx, s.publisher, s.log, events.PostCreated(post.Id, userId, post.Emotion, post.Tags))

	res := toPostResponse(post, false, false)
	return &res, nil
}

func (s *postService) Get(ctx context.Context, requesterId, postId uuid.UUID) (*dto.PostResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	post, err := s.findPost(ctx, uow.PostRepository(), postId)
	if err != nil {
		return nil, err
	}
	out, err := withFlags(ctx, uow.PostRepository(), requesterId, []*entity.Post{post})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *postService) ByUser(ctx context.Context, requesterId, authorId uuid.UUID) ([]dto.PostResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	posts, err := uow.PostRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: authorId},
		specification.NewestPosts{},
		specification.Limit{N: userPostsLimit},
	)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return withFlags(ctx, uow.PostRepository(), requesterId, posts)
}

// rankFeed returns the requester's top posts by vibe score.
func (s *postService) rankFeed(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, limit int) ([]ranking.Ranked[*entity.Post], error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	candidates, err := uow.PostRepository().FeedCandidates(ctx, user.MoodPreference, ranking.FeedLimit)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return ranking.RankFeed(user.MoodPreference, candidates, entity.PostRankAttrs, limit), nil
}

func (s *postService) Feed(ctx context.Context, userId uuid.UUID) ([]dto.FeedItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ranked, err := s.rankFeed(ctx, uow, userId, ranking.FeedLimit)
	if err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(ranked))
	for i, r := range ranked {
		posts[i] = r.Item
	}
	responses, err := withFlags(ctx, uow.PostRepository(), userId, posts)
	if err != nil {
		return nil, err
	}

	items := make([]dto.FeedItem, len(ranked))
	for i, r := range ranked {
		items[i] = dto.FeedItem{PostResponse: responses[i], VibeScore: r.Score}
	}
	return items, nil
}

// VibeMatch is the feed ranking cut to a short preview of ids and scores.
func (s *postService) VibeMatch(ctx context.Context, userId uuid.UUID) ([]dto.VibeMatchItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ranked, err := s.rankFeed(ctx, uow, userId, ranking.PreviewLimit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VibeMatchItem, len(ranked))
	for i, r := range ranked {
		items[i] = dto.VibeMatchItem{PostId: r.Item.Id, VibeScore: r.Score}
	}
	return items, nil
}

func (s *postService) Trending(ctx context.Context, userId uuid.UUID) ([]dto.TrendingItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	posts, hit := s.trending.Get(ctx)
	metrics.RecordTrendingCache(hit)
	if !hit {
		var err error
		posts, err = uow.PostRepository().Trending(ctx, ranking.TrendingLimit)
		if err != nil {
			return nil, apperror.FromStorage(err, "")
		}
		s.trending.Set(ctx, posts)
	}

	ranked := ranking.RankTrending(posts, entity.PostRankAttrs, ranking.TrendingLimit)
	ordered := make([]*entity.Post, len(ranked))
	for i, r := range ranked {
		ordered[i] = r.Item
	}
	responses, err := withFlags(ctx, uow.PostRepository(), userId, ordered)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TrendingItem, len(ranked))
	for i, r := range ranked {
		items[i] = dto.TrendingItem{PostResponse: responses[i], TrendingScore: r.Score}
	}
	return items, nil
}

// toggleRows abstracts the like and save tables so both toggles share one path.
type toggleRows struct {
	remove  func(ctx context.Context, repo contract.PostRepository, userId, postId uuid.UUID) (int64, error)
	insert  func(ctx context.Context, repo contract.PostRepository, userId, postId uuid.UUID) (int64, error)
	counter string
}

var (
	likeRows = toggleRows{
		remove: func(ctx context.Context, repo contract.PostRepository, userId, postId uuid.UUID) (int64, error) {
			return repo.DeleteLike(ctx, userId, postId)
		},
		insert: func(ctx context.Context, repo contract.PostRepository, userId, postId uuid.UUID) (int64, error) {
			return repo.InsertLike(ctx, userId, postId)
		},
		counter: contract.CounterLikes,
	}
	saveRows = toggleRows{
		remove: func(ctx context.Context, repo contract.PostRepository, userId, postId uuid.UUID) (int64, error) {
			return repo.DeleteSave(ctx, userId, postId)
		},
		insert: func(ctx context.Context, repo contract.PostRepository, userId, postId uuid.UUID) (int64, error) {
			return repo.InsertSave(ctx, userId, postId)
		},
		counter: contract.CounterSaves,
	}
)

// toggle flips the user's row in one transaction. The counter moves only when
// a row was actually deleted or inserted, so concurrent toggles converge.
func (s *postService) toggle(ctx context.Context, rows toggleRows, userId, postId uuid.UUID) (*entity.Post, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, false, apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	repo := uow.PostRepository()
	if _, err := s.findPost(ctx, repo, postId); err != nil {
		return nil, false, err
	}

	// 1. Try to remove an existing row
	removed, err := rows.remove(ctx, repo, userId, postId)
	if err != nil {
		return nil, false, apperror.FromStorage(err, "")
	}

	active := false
	if removed > 0 {
		if err := repo.AdjustCounter(ctx, postId, rows.counter, -1); err != nil {
			return nil, false, apperror.FromStorage(err, "")
		}
	} else {
		// 2. Nothing to remove, insert instead
		inserted, err := rows.insert(ctx, repo, userId, postId)
		if err != nil {
			return nil, false, apperror.FromStorage(err, "")
		}
		if inserted > 0 {
			if err := repo.AdjustCounter(ctx, postId, rows.counter, 1); err != nil {
				return nil, false, apperror.FromStorage(err, "")
			}
		}
		active = true
	}

	// 3. Re-read counters inside the transaction
	post, err := s.findPost(ctx, repo, postId)
	if err != nil {
		return nil, false, err
	}
	if err := uow.Commit(); err != nil {
		return nil, false, apperror.FromStorage(err, "")
	}
	return post, active, nil
}

func (s *postService) ToggleLike(ctx context.Context, userId, postId uuid.UUID) (*dto.LikeToggleResponse, error) {
	post, liked, err := s.toggle(ctx, likeRows, userId, postId)
	if err != nil {
		return nil, err
	}
	if liked {
		publishEvent(ctx, s.publisher, s.log, events.PostLiked(postId, userId, post.LikeCount))
	}
	return &dto.LikeToggleResponse{PostId: postId, Liked: liked, LikeCount: post.LikeCount}, nil
}

func (s *postService) ToggleSave(ctx context.Context, userId, postId uuid.UUID) (*dto.SaveToggleResponse, error) {
	post, saved, err := s.toggle(ctx, saveRows, userId, postId)
	if err != nil {
		return nil, err
	}
	return &dto.SaveToggleResponse{PostId: postId, Saved: saved, SavedCount: post.SavedCount}, nil
}

func (s *postService) Saved(ctx context.Context, userId uuid.UUID) ([]dto.PostResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	posts, err := uow.PostRepository().SavedBy(ctx, userId, savedPostsLimit)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return withFlags(ctx, uow.PostRepository(), userId, posts)
}

func (s *postService) Comment(ctx context.Context, userId, postId uuid.UUID, req *dto.CommentRequest) (*dto.CommentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperror.InvalidInput("Content required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	repo := uow.PostRepository()
	if _, err := s.findPost(ctx, repo, postId); err != nil {
		return nil, err
	}

	comment := &entity.PostComment{
		PostId:  postId,
		UserId:  userId,
		Content: content,
		Emotion: trimmedOrNil(req.Emotion),
	}
	if err := repo.CreateComment(ctx, comment); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := repo.AdjustCounter(ctx, postId, contract.CounterComments, 1); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	res := toCommentResponse(comment)
	return &res, nil
}

func (s *postService) Comments(ctx context.Context, postId uuid.UUID) ([]dto.CommentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PostRepository()
	if _, err := s.findPost(ctx, repo, postId); err != nil {
		return nil, err
	}
	comments, err := repo.ListComments(ctx, postId, commentListLimit)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	out := make([]dto.CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = toCommentResponse(c)
	}
	return out, nil
}

func (s *postService) Share(ctx context.Context, userId, postId uuid.UUID, req *dto.ShareRequest) (*dto.ShareResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	defer uow.Rollback()

	repo := uow.PostRepository()
	if _, err := s.findPost(ctx, repo, postId); err != nil {
		return nil, err
	}

	share := &entity.PostShare{PostId: postId, UserId: userId, CircleId: req.CircleId}
	if t := trimmedOrNil(req.TargetType); t != nil {
		share.TargetType = *t
	}
	if err := repo.CreateShare(ctx, share); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := repo.AdjustCounter(ctx, postId, contract.CounterShares, 1); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	return &dto.ShareResponse{
		Id:         share.Id,
		PostId:     postId,
		TargetType: share.TargetType,
		CircleId:   share.CircleId,
		CreatedAt:  share.CreatedAt,
	}, nil
}

func (s *postService) Report(ctx context.Context, userId, postId uuid.UUID, req *dto.ReportRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PostRepository()
	if _, err := s.findPost(ctx, repo, postId); err != nil {
		return err
	}
	report := &entity.PostReport{PostId: postId, ReporterId: userId, Reason: trimmedOrNil(req.Reason)}
	if err := repo.CreateReport(ctx, report); err != nil {
		return apperror.FromStorage(err, "")
	}
	s.log.Info("POST", "Post reported", map[string]interface{}{"post_id": postId, "reporter_id": userId})
	return nil
}

// Delete soft-deletes a post its owner wrote. Someone else's post is
// Forbidden; a missing one is NotFound.
func (s *postService) Delete(ctx context.Context, userId, postId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PostRepository()

	affected, err := repo.SoftDeleteOwned(ctx, postId, userId)
	if err != nil {
		return apperror.FromStorage(err, "")
	}
	if affected > 0 {
		s.trending.Invalidate(ctx)
		s.log.Info("POST", "Post deleted", map[string]interface{}{"post_id": postId, "user_id": userId})
		return nil
	}

	if _, err := s.findPost(ctx, repo, postId); err != nil {
		return err
	}
	return apperror.Forbidden("Not allowed to delete this post")
}

func (s *postService) findPost(ctx context.Context, repo contract.PostRepository, postId uuid.UUID) (*entity.Post, error) {
	post, err := repo.FindOne(ctx, specification.ByID{ID: postId})
	if err != nil {
		return nil, apperror.FromStorage(err, postNotFound)
	}
	if post == nil {
		return nil, apperror.NotFound(postNotFound)
	}
	return post, nil
}

// withFlags maps posts to responses carrying the requester's liked/saved state.
func withFlags(ctx context.Context, repo contract.PostRepository, requesterId uuid.UUID, posts []*entity.Post) ([]dto.PostResponse, error) {
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.Id
	}
	liked, saved, err := repo.InteractionFlags(ctx, requesterId, ids)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	out := make([]dto.PostResponse, len(posts))
	for i, p := range posts {
		out[i] = toPostResponse(p, liked[p.Id], saved[p.Id])
	}
	return out, nil
}

func toPostResponse(p *entity.Post, liked, saved bool) dto.PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.PostResponse{
		Id:           p.Id,
		UserId:       p.UserId,
		Caption:      p.Caption,
		MediaURL:     p.MediaURL,
		MediaType:    p.MediaType,
		Emotion:      p.Emotion,
		Tags:         tags,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		ShareCount:   p.ShareCount,
		SavedCount:   p.SavedCount,
		Liked:        liked,
		Saved:        saved,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toCommentResponse(c *entity.PostComment) dto.CommentResponse {
	return dto.CommentResponse{
		Id:        c.Id,
		PostId:    c.PostId,
		UserId:    c.UserId,
		Content:   c.Content,
		Emotion:   c.Emotion,
		CreatedAt: c.CreatedAt,
	}
}
