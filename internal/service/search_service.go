package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"aura-be/internal/dto"
	"aura-be/internal/entity"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/repository/specification"
	"aura-be/internal/repository/unitofwork"
	"aura-be/pkg/ranking"

	"github.com/google/uuid"
)

type ISearchService interface {
	// Search dispatches on the query sigil: '@' users, '#' tag, otherwise posts.
	Search(ctx context.Context, requesterId uuid.UUID, q *dto.SearchQuery) (*dto.SearchResponse, error)
	Users(ctx context.Context, requesterId uuid.UUID, q *dto.SearchQuery) (*dto.SearchResponse, error)
	Posts(ctx context.Context, requesterId uuid.UUID, q *dto.SearchQuery) (*dto.SearchResponse, error)
	Suggest(ctx context.Context, requesterId uuid.UUID, q *dto.SearchQuery) (*dto.SuggestResponse, error)
}

type searchService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSearchService(uowFactory unitofwork.RepositoryFactory) ISearchService {
	return &searchService{uowFactory: uowFactory}
}

func userRankAttrs(u *entity.User) ranking.UserAttrs {
	return ranking.UserAttrs{ID: u.Id, Username: u.Username, Bio: u.Bio}
}

func (s *searchService) Search(ctx context.Context, requesterId uuid.UUID, q *dto.SearchQuery) (*dto.SearchResponse, error) {
	query, err := ranking.ParseQuery(q.Q)
	if errors.Is(err, ranking.ErrEmptyQuery) {
		return nil, apperror.InvalidInput("Query required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	blocked, err := s.blockedIDs(ctx, uow, requesterId)
	if err != nil {
		return nil, err
	}

	switch query.Kind {
	case ranking.QueryUsers:
		page := ranking.UserSearchPage.Normalize(q.Limit, q.Offset)
		users, err := s.rankedUsers(ctx, uow, blocked, query.Term, page)
		if err != nil {
			return nil, err
		}
		return usersResponse(query.Kind.String(), q.Q, page, users), nil

	case ranking.QueryTag:
		page := ranking.PostSearchPage.Normalize(q.Limit, q.Offset)
		posts, err := s.rankedPosts(ctx, uow, blocked, query.Term, true, page)
		if err != nil {
			return nil, err
		}
		return s.postsResponse(ctx, uow, requesterId, query.Kind.String(), q.Q, page, posts)

	default:
		page := ranking.PostSearchPage.Normalize(q.Limit, q.Offset)
		posts, err := s.rankedPosts(ctx, uow, blocked, query.Term, false, page)
		if err != nil {
			return nil, err
		}
		return s.postsResponse(ctx, uow, requesterId, query.Kind.String(), q.Q, page, posts)
	}
}

// Users matches the whole query against users; a blank query yields no results.
func (s *searchService) Users(ctx context.Context, requesterId uuid.UUID, q *dto.SearchQuery) (*dto.SearchResponse, error) {
	page := ranking.UserSearchPage.Normalize(q.Limit, q.Offset)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	blocked, err := s.blockedIDs(ctx, uow, requesterId)
	if err != nil {
		return nil, err
	}
	users, err := s.rankedUsers(ctx, uow, blocked, strings.TrimSpace(q.Q), page)
	if err != nil {
		return nil, err
	}
	return usersResponse(ranking.QueryUsers.String(), q.Q, page, users), nil
}

func (s *searchService) Posts(ctx context.Context, requesterId uuid.UUID, q *dto.SearchQuery) (*dto.SearchResponse, error) {
	page := ranking.PostSearchPage.Normalize(q.Limit, q.Offset)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	blocked, err := s.blockedIDs(ctx, uow, requesterId)
	if err != nil {
		return nil, err
	}
	posts, err := s.rankedPosts(ctx, uow, blocked, strings.TrimSpace(q.Q), false, page)
	if err != nil {
		return nil, err
	}
	return s.postsResponse(ctx, uow, requesterId, ranking.QueryFreeText.String(), q.Q, page, posts)
}

// Suggest serves typeahead. Empty input lists recent users and posts, one
// character lists username prefixes, longer input runs both rankers. Users
// always come first and take the smaller half of the limit.
func (s *searchService) Suggest(ctx context.Context, requesterId uuid.UUID, q *dto.SearchQuery) (*dto.SuggestResponse, error) {
	limit := ranking.SuggestPage.Normalize(q.Limit, "").Limit
	term := strings.TrimSpace(q.Q)
	userLimit, postLimit := ranking.SplitSuggest(limit)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	blocked, err := s.blockedIDs(ctx, uow, requesterId)
	if err != nil {
		return nil, err
	}

	res := &dto.SuggestResponse{Query: q.Q, Users: []dto.SearchUserResult{}, Posts: []dto.SearchPostResult{}}

	switch n := utf8.RuneCountInString(term); {
	case n == 0:
		users, err := uow.UserRepository().FindAll(ctx,
			specification.ExcludeIDs{IDs: blocked},
			specification.Newest{},
			specification.Limit{N: userLimit},
		)
		if err != nil {
			return nil, apperror.FromStorage(err, "")
		}
		posts, err := uow.PostRepository().FindAll(ctx,
			specification.ExcludeAuthors{UserIDs: blocked},
			specification.NewestPosts{},
			specification.Limit{N: postLimit},
		)
		if err != nil {
			return nil, apperror.FromStorage(err, "")
		}
		for _, u := range users {
			res.Users = append(res.Users, toSearchUser(u, 0, 0))
		}
		responses, err := withFlags(ctx, uow.PostRepository(), requesterId, posts)
		if err != nil {
			return nil, err
		}
		for _, p := range responses {
			res.Posts = append(res.Posts, dto.SearchPostResult{PostResponse: p})
		}

	case n == 1:
		users, err := uow.UserRepository().FindAll(ctx,
			specification.UsernamePrefix{Prefix: term},
			specification.ExcludeIDs{IDs: blocked},
			specification.OrderBy{Field: "username"},
			specification.Limit{N: limit},
		)
		if err != nil {
			return nil, apperror.FromStorage(err, "")
		}
		for _, u := range users {
			res.Users = append(res.Users, toSearchUser(u, 0, 0))
		}

	default:
		users, err := s.rankedUsers(ctx, uow, blocked, term, ranking.Page{Limit: userLimit})
		if err != nil {
			return nil, err
		}
		for _, r := range users {
			res.Users = append(res.Users, toSearchUser(r.Item, r.Tier, r.Score))
		}
		page := ranking.Page{Limit: postLimit}
		posts, err := s.rankedPosts(ctx, uow, blocked, term, false, page)
		if err != nil {
			return nil, err
		}
		built, err := s.postsResponse(ctx, uow, requesterId, "", q.Q, page, posts)
		if err != nil {
			return nil, err
		}
		res.Posts = built.Posts
	}
	return res, nil
}

// blockedIDs lists everyone in a block relation with the requester, either direction.
func (s *searchService) blockedIDs(ctx context.Context, uow unitofwork.UnitOfWork, requesterId uuid.UUID) ([]uuid.UUID, error) {
	blocked, err := uow.UserRepository().BlockRelatedIDs(ctx, requesterId)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return blocked, nil
}

// rankedUsers returns one page of matching users. Storage orders and windows
// the full match set; the ranker then scores the page.
func (s *searchService) rankedUsers(ctx context.Context, uow unitofwork.UnitOfWork, blocked []uuid.UUID, term string, page ranking.Page) ([]ranking.Ranked[*entity.User], error) {
	if term == "" {
		return nil, nil
	}
	users, err := uow.UserRepository().FindAll(ctx,
		specification.UserMatches{Term: term},
		specification.ExcludeIDs{IDs: blocked},
		specification.UserRelevance{Term: term},
		specification.Pagination{Limit: page.Limit, Offset: page.Offset},
	)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}
	return ranking.RankUsers(term, users, userRankAttrs), nil
}

func (s *searchService) rankedPosts(ctx context.Context, uow unitofwork.UnitOfWork, blocked []uuid.UUID, term string, byTag bool, page ranking.Page) ([]ranking.Ranked[*entity.Post], error) {
	if term == "" {
		return nil, nil
	}

	var match, order specification.Specification = specification.PostMatches{Term: term}, specification.PostRelevance{Term: term}
	if byTag {
		match, order = specification.TagMatches{Term: term}, specification.TagRelevance{Term: term}
	}
	posts, err := uow.PostRepository().FindAll(ctx,
		match,
		specification.ExcludeAuthors{UserIDs: blocked},
		order,
		specification.Pagination{Limit: page.Limit, Offset: page.Offset},
	)
	if err != nil {
		return nil, apperror.FromStorage(err, "")
	}

	if byTag {
		return ranking.RankTagged(term, posts, entity.PostRankAttrs), nil
	}
	return ranking.RankPosts(term, posts, entity.PostRankAttrs), nil
}

func (s *searchService) postsResponse(ctx context.Context, uow unitofwork.UnitOfWork, requesterId uuid.UUID, kind, raw string, page ranking.Page, ranked []ranking.Ranked[*entity.Post]) (*dto.SearchResponse, error) {
	posts := make([]*entity.Post, len(ranked))
	for i, r := range ranked {
		posts[i] = r.Item
	}
	responses, err := withFlags(ctx, uow.PostRepository(), requesterId, posts)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SearchPostResult, len(ranked))
	for i, r := range ranked {
		out[i] = dto.SearchPostResult{PostResponse: responses[i], Tier: r.Tier, Score: r.Score}
	}
	return &dto.SearchResponse{
		Kind:   kind,
		Query:  raw,
		Limit:  page.Limit,
		Offset: page.Offset,
		Users:  []dto.SearchUserResult{},
		Posts:  out,
	}, nil
}

func usersResponse(kind, raw string, page ranking.Page, ranked []ranking.Ranked[*entity.User]) *dto.SearchResponse {
	out := make([]dto.SearchUserResult, len(ranked))
	for i, r := range ranked {
		out[i] = toSearchUser(r.Item, r.Tier, r.Score)
	}
	return &dto.SearchResponse{
		Kind:   kind,
		Query:  raw,
		Limit:  page.Limit,
		Offset: page.Offset,
		Users:  out,
		Posts:  []dto.SearchPostResult{},
	}
}

func toSearchUser(u *entity.User, tier, score int) dto.SearchUserResult {
	return dto.SearchUserResult{
		Id:         u.Id,
		Username:   u.Username,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
		Tier:       tier,
		Score:      score,
	}
}
