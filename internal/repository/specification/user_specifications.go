package specification

import (
	"strings"

	"gorm.io/gorm"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(s.Email)))
}

type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(s.Username)))
}

// UserMatches keeps users whose username or bio contains Term, case-insensitively.
type UserMatches struct {
	Term string
}

func (s UserMatches) Apply(db *gorm.DB) *gorm.DB {
	p := ContainsPattern(s.Term)
	return db.Where(`(LOWER(username) LIKE ? ESCAPE '\' OR LOWER(bio) LIKE ? ESCAPE '\')`, p, p)
}

// UsernamePrefix keeps users whose username starts with Prefix, case-insensitively.
type UsernamePrefix struct {
	Prefix string
}

func (s UsernamePrefix) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(`LOWER(username) LIKE ? ESCAPE '\'`, PrefixPattern(s.Prefix))
}
