package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByEmotion struct {
	Emotion string
}

func (s ByEmotion) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("posts.emotion = ?", s.Emotion)
}

// HasTag keeps posts carrying Tag exactly (case-sensitive, like the feed scorer).
type HasTag struct {
	Tag string
}

func (s HasTag) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND pt.tag = ?)", s.Tag)
}

// PostMatches keeps posts whose caption or any tag contains Term, case-insensitively.
type PostMatches struct {
	Term string
}

func (s PostMatches) Apply(db *gorm.DB) *gorm.DB {
	p := ContainsPattern(s.Term)
	return db.Where(
		`(LOWER(COALESCE(posts.caption, '')) LIKE ? ESCAPE '\' OR `+
			`EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND LOWER(pt.tag) LIKE ? ESCAPE '\'))`,
		p, p,
	)
}

// TagMatches keeps posts with any tag containing Term, case-insensitively.
type TagMatches struct {
	Term string
}

func (s TagMatches) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		`EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND LOWER(pt.tag) LIKE ? ESCAPE '\')`,
		ContainsPattern(s.Term),
	)
}

// NewestPosts orders posts by created_at desc, id asc with qualified columns.
type NewestPosts struct{}

func (NewestPosts) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC").Order("posts.id ASC")
}

// ExcludeAuthors drops posts written by the listed users; an empty list is a no-op.
type ExcludeAuthors struct {
	UserIDs []uuid.UUID
}

func (s ExcludeAuthors) Apply(db *gorm.DB) *gorm.DB {
	if len(s.UserIDs) == 0 {
		return db
	}
	return db.Where("posts.user_id NOT IN ?", s.UserIDs)
}
