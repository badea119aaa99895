package ranking

import (
	"strconv"
	"strings"
)

// PageRule holds the default and maximum page size for one search surface.
type PageRule struct {
	Default int
	Max     int
}

var (
	UserSearchPage = PageRule{Default: 15, Max: 40}
	PostSearchPage = PageRule{Default: 20, Max: 60}
	SuggestPage    = PageRule{Default: 10, Max: 20}

	FollowPage        = PageRule{Default: 50, Max: 100}
	FollowSuggestPage = PageRule{Default: 20, Max: 50}
	ThreadPage        = PageRule{Default: 50, Max: 100}
	MessagePage       = PageRule{Default: 50, Max: 100}
)

type Page struct {
	Limit  int
	Offset int
}

// Normalize turns raw query-string values into a bounded page. A missing,
// non-numeric or zero limit takes the default; the result is clamped to
// [1, Max]. A missing, non-numeric or negative offset becomes 0.
func (r PageRule) Normalize(limitRaw, offsetRaw string) Page {
	limit, err := strconv.Atoi(strings.TrimSpace(limitRaw))
	if err != nil || limit == 0 {
		limit = r.Default
	}
	if limit < 1 {
		limit = 1
	}
	if limit > r.Max {
		limit = r.Max
	}

	offset, err := strconv.Atoi(strings.TrimSpace(offsetRaw))
	if err != nil || offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// SplitSuggest divides a suggestion limit between users (floor) and posts (ceil).
func SplitSuggest(limit int) (users, posts int) {
	users = limit / 2
	return users, limit - users
}
