package specification

import (
	"strings"

	"gorm.io/gorm"
)

// Specification defines the interface for query specifications
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// ApplyAll folds specs over db in order.
func ApplyAll(db *gorm.DB, specs ...Specification) *gorm.DB {
	for _, spec := range specs {
		if spec != nil {
			db = spec.Apply(db)
		}
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern lowercases term and wraps it for a LIKE ... ESCAPE '\' filter.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// PrefixPattern is ContainsPattern anchored at the start.
func PrefixPattern(term string) string {
	return likeEscaper.Replace(strings.ToLower(term)) + "%"
}
