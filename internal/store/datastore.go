package store

import "context"

// Patch is proposed data keyed by column (or struct field / JSON name).
// Nil values and nil pointers are treated as undefined and never written.
type Patch map[string]any

// Datastore is the set of per-model primitives the generic algorithms are
// built on. Lookups report a missing row with domain.ErrNotFound.
type Datastore[T any] interface {
	// Model is the name of the model, e.g. "product".
	Model() string

	FindUnique(ctx context.Context, where Filter, sel Selection) (*T, error)
	FindFirst(ctx context.Context, where Filter, sel Selection) (*T, error)
	// FindMany returns matching rows ordered by primary key. take <= 0 means no limit.
	FindMany(ctx context.Context, where Filter, sel Selection, skip, take int) ([]T, error)
	Count(ctx context.Context, where Filter) (int64, error)
	Sum(ctx context.Context, column string, where Filter) (float64, error)

	// Create inserts record and returns it re-read with sel. It returns a nil
	// record when nothing was inserted.
	Create(ctx context.Context, record *T, sel Selection) (*T, error)
	CreateMany(ctx context.Context, records []T) (int64, error)
	// Update writes patch to the single row matched by where and returns it
	// re-read with sel.
	Update(ctx context.Context, where Filter, patch Patch, sel Selection) (*T, error)
	UpdateMany(ctx context.Context, where Filter, patch Patch) (int64, error)
	// Delete removes the single row matched by where and returns it.
	Delete(ctx context.Context, where Filter, sel Selection) (*T, error)
	DeleteMany(ctx context.Context, where Filter) (int64, error)

	// PrimaryKey returns the primary key column.
	PrimaryKey() string
	// ID returns the primary key value of record.
	ID(ctx context.Context, record *T) any
	// Column resolves a column, struct field or JSON name to its column.
	Column(name string) (string, bool)
	// Value returns the value of column in record.
	Value(ctx context.Context, record *T, column string) (any, bool)
	// UniqueFilters returns one equality filter per unique column of record
	// that holds a value.
	UniqueFilters(ctx context.Context, record *T) []Filter
}
