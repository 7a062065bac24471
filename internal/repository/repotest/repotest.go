// Package repotest opens throwaway registries over in-memory SQLite for
// package tests.
package repotest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/simp-lee/shopbase/internal/repository"
)

// New returns a migrated registry. A single connection keeps every query on
// the same in-memory database; it is closed when the test ends.
func New(t testing.TB) *repository.Registry {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	reg, err := repository.NewRegistry(db, Logger())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Seed inserts records directly, bypassing the store.
func Seed[T any](t testing.TB, reg *repository.Registry, records ...*T) {
	t.Helper()
	for _, r := range records {
		if err := reg.DB().Create(r).Error; err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
}
