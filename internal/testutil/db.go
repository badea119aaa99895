// Package testutil builds throwaway storage for package tests.
package testutil

import (
	"testing"

	"aura-be/internal/model"
	"aura-be/internal/repository/unitofwork"
	"aura-be/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.NewSQLiteDB(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func NewFactory(t testing.TB) (unitofwork.RepositoryFactory, *gorm.DB) {
	db := NewDB(t)
	return unitofwork.NewRepositoryFactory(db), db
}

