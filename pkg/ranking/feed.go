package ranking

import (
	"bytes"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Vibe score tiers. The feed uses exactly these three values.
const (
	VibeEmotionMatch = 95
	VibeTagMatch     = 80
	VibeDefault      = 55
)

const (
	FeedLimit     = 50
	PreviewLimit  = 20
	TrendingLimit = 30
)

// Trending weights, shared with the SQL ordering in the post repository.
const (
	TrendingLikeWeight    = 2
	TrendingCommentWeight = 1
)

// PostAttrs is the subset of a post the rankers look at.
type PostAttrs struct {
	ID           uuid.UUID
	Caption      string
	Emotion      string
	Tags         []string
	LikeCount    int
	CommentCount int
	CreatedAt    time.Time
}

// Ranked pairs an item with the score (and, for search, the tier) it was ranked by.
type Ranked[T any] struct {
	Item  T
	Score int
	Tier  int
}

// VibeScore scores a post against the requester's mood preference.
// A nil preference scores every post VibeDefault.
func VibeScore(preference *string, emotion string, tags []string) int {
	if preference == nil {
		return VibeDefault
	}
	if emotion == *preference {
		return VibeEmotionMatch
	}
	if slices.Contains(tags, *preference) {
		return VibeTagMatch
	}
	return VibeDefault
}

// TrendingScore is like_count*2 + comment_count.
func TrendingScore(likeCount, commentCount int) int {
	return likeCount*TrendingLikeWeight + commentCount*TrendingCommentWeight
}

// RankFeed scores items by VibeScore and orders them by score desc, created
// desc, id asc. Duplicate ids keep their first occurrence. limit <= 0 means
// no truncation.
func RankFeed[T any](preference *string, items []T, attrs func(T) PostAttrs, limit int) []Ranked[T] {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ranked := make([]Ranked[T], 0, len(items))
	metas := make([]PostAttrs, 0, len(items))

	for _, it := range items {
		a := attrs(it)
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		ranked = append(ranked, Ranked[T]{Item: it, Score: VibeScore(preference, a.Emotion, a.Tags)})
		metas = append(metas, a)
	}

	sortByScoreThenRecency(ranked, metas)
	return truncate(ranked, limit)
}

// RankTrending orders items by TrendingScore desc, created desc, id asc.
func RankTrending[T any](items []T, attrs func(T) PostAttrs, limit int) []Ranked[T] {
	ranked := make([]Ranked[T], len(items))
	metas := make([]PostAttrs, len(items))
	for i, it := range items {
		a := attrs(it)
		ranked[i] = Ranked[T]{Item: it, Score: TrendingScore(a.LikeCount, a.CommentCount)}
		metas[i] = a
	}

	sortByScoreThenRecency(ranked, metas)
	return truncate(ranked, limit)
}

// sortByScoreThenRecency sorts ranked (and metas in lockstep) by tier asc,
// score desc, created_at desc, id asc. Feed and trending leave Tier at zero.
func sortByScoreThenRecency[T any](ranked []Ranked[T], metas []PostAttrs) {
	idx := make([]int, len(ranked))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		ra, rb := ranked[a], ranked[b]
		if ra.Tier != rb.Tier {
			return ra.Tier - rb.Tier
		}
		if ra.Score != rb.Score {
			return rb.Score - ra.Score
		}
		ma, mb := metas[a], metas[b]
		if c := mb.CreatedAt.Compare(ma.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(ma.ID[:], mb.ID[:])
	})

	sortedRanked := make([]Ranked[T], len(ranked))
	sortedMetas := make([]PostAttrs, len(metas))
	for i, j := range idx {
		sortedRanked[i] = ranked[j]
		sortedMetas[i] = metas[j]
	}
	copy(ranked, sortedRanked)
	copy(metas, sortedMetas)
}

func truncate[T any](ranked []Ranked[T], limit int) []Ranked[T] {
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
