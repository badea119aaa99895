package service

import (
	"context"
	"slices"

	"aura-be/internal/dto"
	"aura-be/internal/entity"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/repository/contract"
	"aura-be/internal/repository/unitofwork"
	"aura-be/pkg/events"
	"aura-be/pkg/ranking"

	"github.com/google/uuid"
)

const mutualLimit = 100

type ISocialService interface {
	Follow(ctx context.Context, followerId, targetId uuid.UUID) (*dto.FollowResponse, error)
	Unfollow(ctx context.Context, followerId, targetId uuid.UUID) (*dto.FollowResponse, error)
	Followers(ctx context.Context, userId uuid.UUID, q *dto.PageQuery) (*dto.ConnectionListResponse, error)
	Following(ctx context.Context, userId uuid.UUID, q *dto.PageQuery) (*dto.ConnectionListResponse, error)
	Counts(ctx context.Context, userId uuid.UUID) (*dto.FollowCountsResponse, error)
	Suggestions(ctx context.Context, userId uuid.UUID, q *dto.PageQuery) ([]dto.UserCardResponse, error)
	Mutual(ctx context.Context, userId, otherId uuid.UUID) ([]dto.UserCardResponse, error)
	Status(ctx context.Context, userId, otherId uuid.UUID) (*dto.FollowStatusResponse, error)
}

type socialService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	log        logger.ILogger
}

func NewSocialService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger) ISocialService {
	return &socialService{
		uowFactory: uowFactory,
		publisher:  publisher,
		log:        log,
	}
}

// Follow is idempotent; following a user on either side of a block is refused.
func (s *socialService) Follow(ctx context.Context, followerId, targetId uuid.UUID) (*dto.FollowResponse, error) {
	if followerId == targetId {
		return nil, apperror.InvalidInput("Cannot follow self")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := requireLiveUser(ctx, uow, targetId); err != nil {
		return nil, err
	}

	blocked, err := uow.UserRepository().BlockRelatedIDs(ctx, followerId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if slices.Contains(blocked, targetId) {
		return nil, apperror.Forbidden("Cannot follow this user")
	}

	created, err := uow.FollowRepository().Follow(ctx, followerId, targetId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	if created > 0 {
		publishEvent(ctx, s.publisher, s.log, events.UserFollowed(followerId, targetId))
	}
	return &dto.FollowResponse{UserId: targetId, Following: true}, nil
}

func (s *socialService) Unfollow(ctx context.Context, followerId, targetId uuid.UUID) (*dto.FollowResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := uow.FollowRepository().Unfollow(ctx, followerId, targetId); err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return &dto.FollowResponse{UserId: targetId, Following: false}, nil
}

func (s *socialService) Followers(ctx context.Context, userId uuid.UUID, q *dto.PageQuery) (*dto.ConnectionListResponse, error) {
	return s.connections(ctx, userId, q, contract.FollowRepository.Followers, true)
}

func (s *socialService) Following(ctx context.Context, userId uuid.UUID, q *dto.PageQuery) (*dto.ConnectionListResponse, error) {
	return s.connections(ctx, userId, q, contract.FollowRepository.Following, false)
}

type connectionLister func(contract.FollowRepository, context.Context, uuid.UUID, int, int) ([]*entity.Connection, error)

func (s *socialService) connections(ctx context.Context, userId uuid.UUID, q *dto.PageQuery, list connectionLister, followers bool) (*dto.ConnectionListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := requireLiveUser(ctx, uow, userId); err != nil {
		return nil, err
	}
	page := ranking.FollowPage.Normalize(q.Limit, q.Offset)

	rows, err := list(uow.FollowRepository(), ctx, userId, page.Limit, page.Offset)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	followerCount, followingCount, err := uow.FollowRepository().Counts(ctx, userId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	total := followingCount
	if followers {
		total = followerCount
	}

	users := make([]dto.ConnectionResponse, len(rows))
	for i, c := range rows {
		users[i] = dto.ConnectionResponse{
			UserId:     c.UserId,
			Username:   c.Username,
			ProfilePic: c.ProfilePic,
			Verified:   c.Verified,
			Since:      c.Since,
		}
	}
	return &dto.ConnectionListResponse{
		UserId: userId,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
		Users:  users,
	}, nil
}

func (s *socialService) Counts(ctx context.Context, userId uuid.UUID) (*dto.FollowCountsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := requireLiveUser(ctx, uow, userId); err != nil {
		return nil, err
	}
	followers, following, err := uow.FollowRepository().Counts(ctx, userId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return &dto.FollowCountsResponse{UserId: userId, Followers: followers, Following: following}, nil
}

// Suggestions lists the newest users not yet followed, minus block relations.
func (s *socialService) Suggestions(ctx context.Context, userId uuid.UUID, q *dto.PageQuery) ([]dto.UserCardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	page := ranking.FollowSuggestPage.Normalize(q.Limit, "")

	blocked, err := uow.UserRepository().BlockRelatedIDs(ctx, userId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	users, err := uow.FollowRepository().Suggestions(ctx, userId, blocked, page.Limit)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return toUserCards(users), nil
}

// Mutual lists users that follow both userId and otherId.
func (s *socialService) Mutual(ctx context.Context, userId, otherId uuid.UUID) ([]dto.UserCardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := requireLiveUser(ctx, uow, otherId); err != nil {
		return nil, err
	}
	users, err := uow.FollowRepository().Mutual(ctx, userId, otherId, mutualLimit)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return toUserCards(users), nil
}

func (s *socialService) Status(ctx context.Context, userId, otherId uuid.UUID) (*dto.FollowStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	iFollow, err := uow.FollowRepository().IsFollowing(ctx, userId, otherId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	followsMe, err := uow.FollowRepository().IsFollowing(ctx, otherId, userId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return &dto.FollowStatusResponse{UserId: otherId, IFollow: iFollow, FollowsMe: followsMe}, nil
}

func toUserCards(users []*entity.User) []dto.UserCardResponse {
	out := make([]dto.UserCardResponse, len(users))
	for i, u := range users {
		out[i] = dto.UserCardResponse{
			Id:         u.Id,
			Username:   u.Username,
			ProfilePic: u.ProfilePic,
			Verified:   u.VerifiedAt != nil,
		}
	}
	return out
}
