package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/simp-lee/shopbase/internal/domain"
)

// Repository runs the generic data-access algorithms for one model on top of
// its Datastore. Every operation returns an envelope for domain outcomes and
// an error only for datastore failures or misuse.
type Repository[T any] struct {
	ds  Datastore[T]
	log *slog.Logger
}

// New returns a Repository over ds. A nil log falls back to slog.Default().
func New[T any](ds Datastore[T], log *slog.Logger) *Repository[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Repository[T]{ds: ds, log: log}
}

// Name returns the model name.
func (r *Repository[T]) Name() string {
	return r.ds.Model()
}

// Store returns the underlying datastore.
func (r *Repository[T]) Store() Datastore[T] {
	return r.ds
}

// Logger returns the logger envelopes are reported to.
func (r *Repository[T]) Logger() *slog.Logger {
	return r.log
}

// ID returns the primary key value of record.
func (r *Repository[T]) ID(ctx context.Context, record *T) any {
	return r.ds.ID(ctx, record)
}

// ByID is a filter matching the primary key.
func (r *Repository[T]) ByID(id any) Filter {
	return Where(Eq(r.ds.PrimaryKey(), id))
}

type softDeletable interface {
	Deleted() bool
}

func isDeleted(record any) bool {
	sd, ok := record.(softDeletable)
	return ok && sd.Deleted()
}

// find tries each candidate in order and returns the first match with the
// filter that matched. A nil record means no candidate matched.
func (r *Repository[T]) find(ctx context.Context, unique bool, sel Selection, candidates []Filter) (*T, Filter, error) {
	for _, where := range candidates {
		where = where.Prune()
		if len(where) == 0 {
			continue
		}
		var (
			record *T
			err    error
		)
		if unique {
			record, err = r.ds.FindUnique(ctx, where, sel)
		} else {
			record, err = r.ds.FindFirst(ctx, where, sel)
		}
		if domain.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return record, where, nil
	}
	return nil, nil, nil
}

// GetByConstraint fetches one record by the first candidate filter that
// matches. A soft-deleted match is reported as 403 whichever filter found it.
func (r *Repository[T]) GetByConstraint(ctx context.Context, sel Selection, msgs Messages, candidates ...Filter) (Envelope[*T], error) {
	record, _, err := r.find(ctx, true, sel, candidates)
	if err != nil {
		return Envelope[*T]{}, err
	}
	return r.found(ctx, record, msgs, candidates), nil
}

// GetFirst fetches the first record (by primary key) matching where.
func (r *Repository[T]) GetFirst(ctx context.Context, where Filter, sel Selection, msgs Messages) (Envelope[*T], error) {
	record, _, err := r.find(ctx, false, sel, []Filter{where})
	if err != nil {
		return Envelope[*T]{}, err
	}
	return r.found(ctx, record, msgs, []Filter{where}), nil
}

func (r *Repository[T]) found(ctx context.Context, record *T, msgs Messages, candidates []Filter) Envelope[*T] {
	if record == nil {
		return Respond[*T](ctx, r.log, false, http.StatusNotFound,
			fmt.Sprintf("%s with constraint %v not found", r.Name(), candidates), msgs.NotFound, nil)
	}
	if isDeleted(record) {
		msg := r.Name() + " is deleted"
		return Respond[*T](ctx, r.log, false, http.StatusForbidden, msg, msg, nil)
	}
	return Respond(ctx, r.log, true, http.StatusOK,
		fmt.Sprintf("%s with constraint %v found", r.Name(), candidates), msgs.Success, record)
}

// Reference reports whether a row with the given primary key exists and
// whether it is soft-deleted. It implements Referencer.
func (r *Repository[T]) Reference(ctx context.Context, id any) (exists, deleted bool, err error) {
	record, err := r.ds.FindUnique(ctx, r.ByID(id), Selection{})
	if domain.IsNotFound(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, isDeleted(record), nil
}
