package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gadget and part are throwaway models exercising the generic layer.
type gadget struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Price      float64   `gorm:"not null" json:"price"`
	Stock      int       `gorm:"not null" json:"stock"`
	Note       *string   `json:"note"`
	ReleasedAt time.Time `json:"releasedAt"`
	IsDeleted  bool      `gorm:"not null;default:false" json:"isDeleted"`
}

func (g gadget) Deleted() bool { return g.IsDeleted }

type part struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	GadgetID uint   `gorm:"not null;index" json:"gadgetId"`
	Label    string `gorm:"size:50;not null" json:"label"`
}

// setupTestDB creates an in-memory SQLite database with the test tables.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
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

	if err := db.AutoMigrate(&gadget{}, &part{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingStore records every write issued to the wrapped datastore.
type countingStore[T any] struct {
	Datastore[T]
	writes  int
	patches []Patch
}

func (c *countingStore[T]) Create(ctx context.Context, record *T, sel Selection) (*T, error) {
	c.writes++
	return c.Datastore.Create(ctx, record, sel)
}

func (c *countingStore[T]) CreateMany(ctx context.Context, records []T) (int64, error) {
	c.writes++
	return c.Datastore.CreateMany(ctx, records)
}

func (c *countingStore[T]) Update(ctx context.Context, where Filter, patch Patch, sel Selection) (*T, error) {
	c.writes++
	c.patches = append(c.patches, patch)
	return c.Datastore.Update(ctx, where, patch, sel)
}

func (c *countingStore[T]) UpdateMany(ctx context.Context, where Filter, patch Patch) (int64, error) {
	c.writes++
	return c.Datastore.UpdateMany(ctx, where, patch)
}

func (c *countingStore[T]) Delete(ctx context.Context, where Filter, sel Selection) (*T, error) {
	c.writes++
	return c.Datastore.Delete(ctx, where, sel)
}

func (c *countingStore[T]) DeleteMany(ctx context.Context, where Filter) (int64, error) {
	c.writes++
	return c.Datastore.DeleteMany(ctx, where)
}

// setupGadgets returns a gadget repository whose writes are counted.
func setupGadgets(t *testing.T) (*Repository[gadget], *countingStore[gadget], *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	ds, err := NewGormStore[gadget](db)
	if err != nil {
		t.Fatalf("NewGormStore: %v", err)
	}
	counting := &countingStore[gadget]{Datastore: ds}
	return New[gadget](counting, discardLogger()), counting, db
}

func seedGadget(t *testing.T, db *gorm.DB, g gadget) gadget {
	t.Helper()
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("seed gadget %q: %v", g.Name, err)
	}
	return g
}

func ptr[T any](v T) *T { return &v }
