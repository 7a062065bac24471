package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/simp-lee/shopbase/internal/domain"
)

// Delete permanently removes the record matched by where after checking it
// exists. Soft-deleted records can be deleted too.
func (r *Repository[T]) Delete(ctx context.Context, where Filter, sel Selection, msgs Messages) (Envelope[*T], error) {
	current, matched, err := r.find(ctx, true, Selection{}, []Filter{where})
	if err != nil {
		return Envelope[*T]{}, err
	}
	if current == nil {
		return r.found(ctx, nil, msgs, []Filter{where}), nil
	}

	id := r.ds.ID(ctx, current)
	deleted, err := r.ds.Delete(ctx, matched.And(Eq(r.ds.PrimaryKey(), id)), sel)
	if err != nil && !domain.IsNotFound(err) {
		return Envelope[*T]{}, err
	}
	if deleted == nil {
		return Respond[*T](ctx, r.log, false, http.StatusBadRequest,
			fmt.Sprintf("Failed to delete %s with filter %v", r.Name(), where), msgs.Failed, nil), nil
	}
	return Respond(ctx, r.log, true, http.StatusOK,
		fmt.Sprintf("%s with filter %v deleted successfully", r.Name(), where), msgs.Success, deleted), nil
}

// DeleteMany removes every row matching where. Zero affected rows is not a
// failure; the count is reported for the caller to interpret.
func (r *Repository[T]) DeleteMany(ctx context.Context, where Filter, msgs Messages) (Envelope[Batch[T]], error) {
	count, err := r.ds.DeleteMany(ctx, where.Prune())
	if err != nil {
		return Envelope[Batch[T]]{}, err
	}
	return Respond(ctx, r.log, true, http.StatusOK,
		fmt.Sprintf("%d %s with filter %v deleted", count, r.Name(), where), msgs.Success, Batch[T]{Count: count}), nil
}
