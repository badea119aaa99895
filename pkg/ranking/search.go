package ranking

import (
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Match tiers, lower is better.
const (
	TierPrefix    = 1
	TierContains  = 2
	TierAuxiliary = 3
)

// Post relevance components.
const (
	PostCaptionPrefix   = 95
	PostCaptionContains = 85
	PostTagOnly         = 60
	PostExactTagBonus   = 15
	TagExact            = 100
	TagPartial          = 50
)

var ErrEmptyQuery = errors.New("query is required")

// UserAttrs is the subset of a user the user ranker looks at.
type UserAttrs struct {
	ID       uuid.UUID
	Username string
	Bio      string
}

// QueryKind is the variant a unified search query parses into.
type QueryKind int

const (
	QueryFreeText QueryKind = iota
	QueryUsers
	QueryTag
)

func (k QueryKind) String() string {
	switch k {
	case QueryUsers:
		return "users"
	case QueryTag:
		return "tag"
	default:
		return "text"
	}
}

// Query is a parsed unified search query.
type Query struct {
	Kind QueryKind
	Term string
	Raw  string
}

// ParseQuery rejects blank input, then picks the variant from the first
// character of the raw string: '@' users, '#' tag, anything else free text.
// The sigil is stripped and the term trimmed.
func ParseQuery(raw string) (Query, error) {
	if strings.TrimSpace(raw) == "" {
		return Query{}, ErrEmptyQuery
	}
	switch {
	case strings.HasPrefix(raw, "@"):
		return Query{Kind: QueryUsers, Term: strings.TrimSpace(raw[1:]), Raw: raw}, nil
	case strings.HasPrefix(raw, "#"):
		return Query{Kind: QueryTag, Term: strings.TrimSpace(raw[1:]), Raw: raw}, nil
	default:
		return Query{Kind: QueryFreeText, Term: strings.TrimSpace(raw), Raw: raw}, nil
	}
}

// UserTier returns the match tier of term against a user, or 0 when neither
// username nor bio contains it.
func UserTier(term string, u UserAttrs) int {
	t := strings.ToLower(term)
	name := strings.ToLower(u.Username)
	switch {
	case strings.HasPrefix(name, t):
		return TierPrefix
	case strings.Contains(name, t):
		return TierContains
	case strings.Contains(strings.ToLower(u.Bio), t):
		return TierAuxiliary
	}
	return 0
}

// UserScore is 100 - tier*10 - max(len(username)-len(term), 0).
func UserScore(term string, tier int, username string) int {
	extra := utf8.RuneCountInString(username) - utf8.RuneCountInString(term)
	if extra < 0 {
		extra = 0
	}
	return 100 - tier*10 - extra
}

// RankUsers drops non-matching users and orders the rest by tier asc, score
// desc, username asc, id asc.
func RankUsers[T any](term string, items []T, attrs func(T) UserAttrs) []Ranked[T] {
	if strings.TrimSpace(term) == "" {
		return nil
	}
	type row struct {
		r Ranked[T]
		a UserAttrs
	}
	rows := make([]row, 0, len(items))
	for _, it := range items {
		a := attrs(it)
		tier := UserTier(term, a)
		if tier == 0 {
			continue
		}
		rows = append(rows, row{
			r: Ranked[T]{Item: it, Tier: tier, Score: UserScore(term, tier, a.Username)},
			a: a,
		})
	}

	slices.SortStableFunc(rows, func(x, y row) int {
		if x.r.Tier != y.r.Tier {
			return x.r.Tier - y.r.Tier
		}
		if x.r.Score != y.r.Score {
			return y.r.Score - x.r.Score
		}
		if c := strings.Compare(x.a.Username, y.a.Username); c != 0 {
			return c
		}
		return strings.Compare(x.a.ID.String(), y.a.ID.String())
	})

	out := make([]Ranked[T], len(rows))
	for i, r := range rows {
		out[i] = r.r
	}
	return out
}

// PostTier returns the free-text tier and relevance of term against a post,
// or tier 0 when neither caption nor any tag contains it.
func PostTier(term string, p PostAttrs) (tier, score int) {
	t := strings.ToLower(term)
	caption := strings.ToLower(p.Caption)

	switch {
	case strings.HasPrefix(caption, t):
		tier, score = TierPrefix, PostCaptionPrefix
	case strings.Contains(caption, t):
		tier, score = TierContains, PostCaptionContains
	case anyTag(p.Tags, func(tag string) bool { return strings.Contains(strings.ToLower(tag), t) }):
		tier, score = TierAuxiliary, PostTagOnly
	default:
		return 0, 0
	}

	if anyTag(p.Tags, func(tag string) bool { return strings.EqualFold(tag, t) }) {
		score += PostExactTagBonus
	}
	return tier, score
}

// TagTier returns the tag-search tier and relevance, or tier 0 when no tag
// contains the term.
func TagTier(tag string, p PostAttrs) (tier, score int) {
	t := strings.ToLower(tag)
	if anyTag(p.Tags, func(x string) bool { return strings.EqualFold(x, t) }) {
		return TierPrefix, TagExact
	}
	if anyTag(p.Tags, func(x string) bool { return strings.Contains(strings.ToLower(x), t) }) {
		return TierContains, TagPartial
	}
	return 0, 0
}

// RankPosts ranks posts for a free-text term.
func RankPosts[T any](term string, items []T, attrs func(T) PostAttrs) []Ranked[T] {
	return rankPostsBy(term, items, attrs, PostTier)
}

// RankTagged ranks posts for a tag term.
func RankTagged[T any](tag string, items []T, attrs func(T) PostAttrs) []Ranked[T] {
	return rankPostsBy(tag, items, attrs, TagTier)
}

func rankPostsBy[T any](term string, items []T, attrs func(T) PostAttrs, tierOf func(string, PostAttrs) (int, int)) []Ranked[T] {
	if strings.TrimSpace(term) == "" {
		return nil
	}
	ranked := make([]Ranked[T], 0, len(items))
	metas := make([]PostAttrs, 0, len(items))
	for _, it := range items {
		a := attrs(it)
		tier, score := tierOf(term, a)
		if tier == 0 {
			continue
		}
		ranked = append(ranked, Ranked[T]{Item: it, Tier: tier, Score: score})
		metas = append(metas, a)
	}
	sortByScoreThenRecency(ranked, metas)
	return ranked
}

func anyTag(tags []string, pred func(string) bool) bool {
	for _, t := range tags {
		if pred(t) {
			return true
		}
	}
	return false
}
