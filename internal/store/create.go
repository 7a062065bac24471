package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/simp-lee/shopbase/internal/domain"
)

// Create inserts record and returns it projected with sel. A row that
// cannot be inserted because of a unique constraint is reported as a 400
// failure rather than a datastore error.
func (r *Repository[T]) Create(ctx context.Context, record *T, sel Selection, msgs Messages) (Envelope[*T], error) {
	created, err := r.ds.Create(ctx, record, sel)
	if domain.IsAlreadyExists(err) {
		return Respond[*T](ctx, r.log, false, http.StatusBadRequest,
			fmt.Sprintf("Failed to create new %s: %v", r.Name(), err), msgs.Failed, nil), nil
	}
	if err != nil {
		return Envelope[*T]{}, err
	}
	if created == nil {
		return Respond[*T](ctx, r.log, false, http.StatusBadRequest,
			"Failed to create new "+r.Name(), msgs.Failed, nil), nil
	}
	return Respond(ctx, r.log, true, http.StatusOK,
		fmt.Sprintf("New %s created successfully", r.Name()), msgs.Success, created), nil
}

// CreateMany inserts records unless any row already matches guard, in which
// case nothing is inserted and the matches are returned in Existing.
func (r *Repository[T]) CreateMany(ctx context.Context, guard Filter, records []T, msgs Messages) (Envelope[Batch[T]], error) {
	if len(guard.Prune()) > 0 {
		existing, err := r.GetAll(ctx, guard, Selection{}, msgs, PageRequest{})
		if err != nil {
			return Envelope[Batch[T]]{}, err
		}
		if existing.TotalDataCount > 0 {
			return Respond(ctx, r.log, false, http.StatusBadRequest, msgs.Conflict, msgs.Conflict,
				Batch[T]{Existing: existing.Data}), nil
		}
	}

	count, err := r.ds.CreateMany(ctx, records)
	if domain.IsAlreadyExists(err) {
		return Respond(ctx, r.log, false, http.StatusBadRequest,
			fmt.Sprintf("Failed to create new %s: %v", r.Name(), err), msgs.Failed, Batch[T]{}), nil
	}
	if err != nil {
		return Envelope[Batch[T]]{}, err
	}
	if count == 0 {
		return Respond(ctx, r.log, false, http.StatusBadRequest,
			"Failed to create new "+r.Name(), msgs.Failed, Batch[T]{}), nil
	}
	return Respond(ctx, r.log, true, http.StatusOK,
		fmt.Sprintf("%d new %s created successfully", count, r.Name()), msgs.Success, Batch[T]{Count: count}), nil
}
