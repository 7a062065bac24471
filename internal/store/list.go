package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
)

// ErrPartialPagination is returned when only one of limit and page is set.
var ErrPartialPagination = errors.New("store: both limit and page must be provided")

// PageRequest selects a page of a list. Zero values mean unset; Limit and
// Page must be set together.
type PageRequest struct {
	Limit int
	Page  int
}

func (p PageRequest) paginated() (bool, error) {
	if p.Limit < 0 || p.Page < 0 {
		return false, fmt.Errorf("%w: limit=%d page=%d", ErrPartialPagination, p.Limit, p.Page)
	}
	switch {
	case p.Limit > 0 && p.Page > 0:
		return true, nil
	case p.Limit > 0 || p.Page > 0:
		return false, ErrPartialPagination
	}
	return false, nil
}

// GetAll lists the records matching where. Undefined filter entries are
// pruned before counting so the count and the page use the same filter.
func (r *Repository[T]) GetAll(ctx context.Context, where Filter, sel Selection, msgs Messages, page PageRequest) (Page[T], error) {
	paginated, err := page.paginated()
	if err != nil {
		r.log.WarnContext(ctx, "both limit and page must be provided")
		return Page[T]{}, err
	}

	where = where.Prune()
	total, err := r.ds.Count(ctx, where)
	if err != nil {
		return Page[T]{}, err
	}

	notFound := r.Name() + " not found"
	fetched := fmt.Sprintf("Fetched %s list successfully", r.Name())

	if !paginated {
		if total == 0 {
			return respondPage[T](ctx, r.log, false, http.StatusNotFound, notFound, msgs.NotFound, 0, 0, 0, nil), nil
		}
		records, err := r.ds.FindMany(ctx, where, sel, 0, 0)
		if err != nil {
			return Page[T]{}, err
		}
		return respondPage(ctx, r.log, true, http.StatusOK, fetched, msgs.Success, 0, 0, total, records), nil
	}

	totalPages := int(math.Ceil(float64(total) / float64(page.Limit)))
	if total == 0 {
		return respondPage[T](ctx, r.log, false, http.StatusNotFound, notFound, msgs.NotFound, page.Page, totalPages, total, nil), nil
	}
	if page.Page > totalPages {
		const exceeded = "Page number exceeded total pages available"
		return respondPage[T](ctx, r.log, false, http.StatusBadRequest, exceeded, exceeded, page.Page, totalPages, total, nil), nil
	}

	records, err := r.ds.FindMany(ctx, where, sel, (page.Page-1)*page.Limit, page.Limit)
	if err != nil {
		return Page[T]{}, err
	}
	return respondPage(ctx, r.log, true, http.StatusOK, fetched, msgs.Success, page.Page, totalPages, total, records), nil
}

// Count returns the number of records matching where.
func (r *Repository[T]) Count(ctx context.Context, where Filter) (int64, error) {
	return r.ds.Count(ctx, where.Prune())
}

// Sum adds up column over the records matching where. No match sums to 0.
func (r *Repository[T]) Sum(ctx context.Context, column string, where Filter) (float64, error) {
	return r.ds.Sum(ctx, column, where.Prune())
}
