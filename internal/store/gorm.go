package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/simp-lee/shopbase/internal/domain"
)

const softDeleteColumn = "is_deleted"

// GormStore implements Datastore over a GORM connection.
type GormStore[T any] struct {
	db      *gorm.DB
	schema  *schema.Schema
	name    string
	columns map[string]string
}

// NewGormStore parses the schema of T and returns a store bound to db.
func NewGormStore[T any](db *gorm.DB) (*GormStore[T], error) {
	if db == nil {
		return nil, errors.New("store: db is nil")
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, fmt.Errorf("store: parse schema: %w", err)
	}
	sch := stmt.Schema
	if sch.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("store: model %s has no primary key", sch.Name)
	}

	columns := make(map[string]string, len(sch.Fields)*3)
	for _, f := range sch.Fields {
		if f.DBName == "" {
			continue
		}
		columns[f.DBName] = f.DBName
		columns[f.Name] = f.DBName
		if name := jsonName(f.Tag.Get("json")); name != "" {
			columns[name] = f.DBName
		}
	}

	return &GormStore[T]{
		db:      db,
		schema:  sch,
		name:    strings.ToLower(sch.Name[:1]) + sch.Name[1:],
		columns: columns,
	}, nil
}

// Model returns the model name with a lower-cased first letter.
func (s *GormStore[T]) Model() string { return s.name }

// PrimaryKey returns the primary key column.
func (s *GormStore[T]) PrimaryKey() string { return s.schema.PrioritizedPrimaryField.DBName }

// Column resolves name to a column, accepting json and Go field names.
func (s *GormStore[T]) Column(name string) (string, bool) {
	col, ok := s.columns[name]
	return col, ok
}

// ID returns the primary key value of record.
func (s *GormStore[T]) ID(ctx context.Context, record *T) any {
	v, _ := s.Value(ctx, record, s.PrimaryKey())
	return v
}

// Value reads column from record. It reports false for a nil record or an
// unknown column.
func (s *GormStore[T]) Value(ctx context.Context, record *T, column string) (any, bool) {
	if record == nil {
		return nil, false
	}
	f := s.schema.LookUpField(column)
	if f == nil {
		return nil, false
	}
	v, _ := f.ValueOf(ctx, reflect.ValueOf(record).Elem())
	return v, true
}

// UniqueFilters returns one equality filter per non-zero unique field of record.
func (s *GormStore[T]) UniqueFilters(ctx context.Context, record *T) []Filter {
	var filters []Filter
	for _, f := range s.schema.Fields {
		if f.PrimaryKey || f.DBName == "" {
			continue
		}
		_, uniqueIndex := f.TagSettings["UNIQUEINDEX"]
		if !f.Unique && !uniqueIndex {
			continue
		}
		v, zero := f.ValueOf(ctx, reflect.ValueOf(record).Elem())
		if zero {
			continue
		}
		filters = append(filters, Where(Eq(f.DBName, v)))
	}
	return filters
}

func (s *GormStore[T]) hasSoftDelete() bool {
	_, ok := s.schema.FieldsByDBName[softDeleteColumn]
	return ok
}

// query starts a statement on the model with where applied.
func (s *GormStore[T]) query(ctx context.Context, where Filter) (*gorm.DB, error) {
	if err := where.validate(); err != nil {
		return nil, err
	}
	return s.db.WithContext(ctx).Model(new(T)).Scopes(where.Scope()), nil
}

func (s *GormStore[T]) project(db *gorm.DB, sel Selection) *gorm.DB {
	required := []string{s.PrimaryKey()}
	if s.hasSoftDelete() {
		required = append(required, softDeleteColumn)
	}
	if cols := sel.withRequired(required...); len(cols) > 0 {
		db = db.Select(cols)
	}
	for _, rel := range sel.Relations() {
		db = db.Preload(rel)
	}
	return db
}

// FindUnique retrieves the row matched by where.
func (s *GormStore[T]) FindUnique(ctx context.Context, where Filter, sel Selection) (*T, error) {
	db, err := s.query(ctx, where)
	if err != nil {
		return nil, err
	}
	var record T
	if err := s.project(db, sel).Take(&record).Error; err != nil {
		return nil, mapError(err)
	}
	return &record, nil
}

// FindFirst retrieves the matching row with the lowest primary key.
func (s *GormStore[T]) FindFirst(ctx context.Context, where Filter, sel Selection) (*T, error) {
	db, err := s.query(ctx, where)
	if err != nil {
		return nil, err
	}
	var record T
	if err := s.project(db, sel).Order(s.PrimaryKey() + " asc").Take(&record).Error; err != nil {
		return nil, mapError(err)
	}
	return &record, nil
}

// FindMany lists matching rows in primary key order. Zero skip or take
// leaves that bound off.
func (s *GormStore[T]) FindMany(ctx context.Context, where Filter, sel Selection, skip, take int) ([]T, error) {
	db, err := s.query(ctx, where)
	if err != nil {
		return nil, err
	}
	db = s.project(db, sel).Order(s.PrimaryKey() + " asc")
	if skip > 0 {
		db = db.Offset(skip)
	}
	if take > 0 {
		db = db.Limit(take)
	}
	var records []T
	if err := db.Find(&records).Error; err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

// Count counts matching rows.
func (s *GormStore[T]) Count(ctx context.Context, where Filter) (int64, error) {
	db, err := s.query(ctx, where)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return 0, mapError(err)
	}
	return total, nil
}

// Sum totals column over matching rows. No rows sum to zero.
func (s *GormStore[T]) Sum(ctx context.Context, column string, where Filter) (float64, error) {
	col, ok := s.Column(column)
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.name, column)
	}
	db, err := s.query(ctx, where)
	if err != nil {
		return 0, err
	}
	var total float64
	if err := db.Select("COALESCE(SUM(" + col + "), 0)").Scan(&total).Error; err != nil {
		return 0, mapError(err)
	}
	return total, nil
}

// Create inserts record without its associations and reloads it with sel.
func (s *GormStore[T]) Create(ctx context.Context, record *T, sel Selection) (*T, error) {
	res := s.db.WithContext(ctx).Omit(clause.Associations).Create(record)
	if res.Error != nil {
		return nil, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.byID(ctx, s.ID(ctx, record), sel)
}

// CreateMany inserts records in batches and returns the inserted count.
func (s *GormStore[T]) CreateMany(ctx context.Context, records []T) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(&records, 100)
	if res.Error != nil {
		return 0, mapError(res.Error)
	}
	return res.RowsAffected, nil
}

// Update applies patch to the single row matched by where and returns it
// reloaded with sel.
func (s *GormStore[T]) Update(ctx context.Context, where Filter, patch Patch, sel Selection) (*T, error) {
	id, err := s.matchID(ctx, where)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(new(T)).
		Where(s.PrimaryKey()+" = ?", id).
		Updates(map[string]any(patch))
	if res.Error != nil {
		return nil, mapError(res.Error)
	}
	return s.byID(ctx, id, sel)
}

// UpdateMany applies patch to every matching row.
func (s *GormStore[T]) UpdateMany(ctx context.Context, where Filter, patch Patch) (int64, error) {
	db, err := s.query(ctx, where)
	if err != nil {
		return 0, err
	}
	res := db.Updates(map[string]any(patch))
	if res.Error != nil {
		return 0, mapError(res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the row matched by where and returns it as it was.
func (s *GormStore[T]) Delete(ctx context.Context, where Filter, sel Selection) (*T, error) {
	record, err := s.FindUnique(ctx, where, sel)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Where(s.PrimaryKey()+" = ?", s.ID(ctx, record)).Delete(new(T))
	if res.Error != nil {
		return nil, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return record, nil
}

// DeleteMany removes every matching row.
func (s *GormStore[T]) DeleteMany(ctx context.Context, where Filter) (int64, error) {
	db, err := s.query(ctx, where)
	if err != nil {
		return 0, err
	}
	res := db.Delete(new(T))
	if res.Error != nil {
		return 0, mapError(res.Error)
	}
	return res.RowsAffected, nil
}

// matchID returns the primary key of the single row matched by where.
func (s *GormStore[T]) matchID(ctx context.Context, where Filter) (any, error) {
	db, err := s.query(ctx, where)
	if err != nil {
		return nil, err
	}
	var key T
	if err := db.Select(s.PrimaryKey()).Take(&key).Error; err != nil {
		return nil, mapError(err)
	}
	return s.ID(ctx, &key), nil
}

func (s *GormStore[T]) byID(ctx context.Context, id any, sel Selection) (*T, error) {
	return s.FindUnique(ctx, Where(Eq(s.PrimaryKey(), id)), sel)
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. Not all GORM dialectors translate driver-level errors to
// gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

func jsonName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
