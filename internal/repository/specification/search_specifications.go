package specification

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"aura-be/pkg/ranking"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The relevance specs order matches in storage with the same keys the rankers
// in pkg/ranking use, so LIMIT/OFFSET select the right window of the full
// ranking. Tier numbers are inlined; only user input is bound.

// UserRelevance orders user matches by tier asc, score desc, username asc, id asc.
// Within a tier the score only falls with max(len(username), len(term)).
type UserRelevance struct {
	Term string
}

func (s UserRelevance) Apply(db *gorm.DB) *gorm.DB {
	n := utf8.RuneCountInString(s.Term)
	sql := fmt.Sprintf(
		`CASE WHEN LOWER(username) LIKE ? ESCAPE '\' THEN %d `+
			`WHEN LOWER(username) LIKE ? ESCAPE '\' THEN %d ELSE %d END ASC, `+
			`CASE WHEN LENGTH(username) > %d THEN LENGTH(username) ELSE %d END ASC, `+
			`username ASC, id ASC`,
		ranking.TierPrefix, ranking.TierContains, ranking.TierAuxiliary, n, n,
	)
	return db.Clauses(clause.OrderBy{Expression: clause.Expr{
		SQL:  sql,
		Vars: []interface{}{PrefixPattern(s.Term), ContainsPattern(s.Term)},
	}})
}

// PostRelevance orders free-text post matches by caption tier asc, exact tag
// bonus desc, created_at desc, id asc.
type PostRelevance struct {
	Term string
}

func (s PostRelevance) Apply(db *gorm.DB) *gorm.DB {
	sql := fmt.Sprintf(
		`CASE WHEN LOWER(COALESCE(posts.caption, '')) LIKE ? ESCAPE '\' THEN %d `+
			`WHEN LOWER(COALESCE(posts.caption, '')) LIKE ? ESCAPE '\' THEN %d ELSE %d END ASC, `+
			`CASE WHEN %s THEN 1 ELSE 0 END DESC, `+
			`posts.created_at DESC, posts.id ASC`,
		ranking.TierPrefix, ranking.TierContains, ranking.TierAuxiliary, exactTagExists,
	)
	return db.Clauses(clause.OrderBy{Expression: clause.Expr{
		SQL:  sql,
		Vars: []interface{}{PrefixPattern(s.Term), ContainsPattern(s.Term), strings.ToLower(s.Term)},
	}})
}

// TagRelevance orders tag matches exact first, then created_at desc, id asc.
type TagRelevance struct {
	Term string
}

func (s TagRelevance) Apply(db *gorm.DB) *gorm.DB {
	sql := fmt.Sprintf(
		`CASE WHEN %s THEN %d ELSE %d END ASC, posts.created_at DESC, posts.id ASC`,
		exactTagExists, ranking.TierPrefix, ranking.TierContains,
	)
	return db.Clauses(clause.OrderBy{Expression: clause.Expr{
		SQL:  sql,
		Vars: []interface{}{strings.ToLower(s.Term)},
	}})
}

const exactTagExists = `EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND LOWER(pt.tag) = ?)`
