package scope

import "gorm.io/gorm"

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

// WithSoftDeleted includes soft-deleted rows.
func WithSoftDeleted(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func Unrevoked(db *gorm.DB) *gorm.DB {
	return db.Where("revoked = ?", false)
}
