package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/simp-lee/shopbase/internal/domain"
)

// ErrUnknownColumn is returned when a patch names a column the model lacks.
var ErrUnknownColumn = errors.New("store: unknown column")

// UpdateSpec describes a diff-aware update.
type UpdateSpec struct {
	// Where holds the candidate filters identifying the target row.
	Where []Filter
	// Unique holds filters that no other row may satisfy after the update.
	Unique   []Filter
	Select   Selection
	Messages Messages

	// includeDeleted lets the lookup address soft-deleted rows.
	includeDeleted bool
	// recheckUnique adds the record's own unique columns to Unique.
	recheckUnique bool
}

// Update applies the fields of patch that differ from the current record.
//
// Lookup failures are returned unchanged. An empty diff yields a 201
// non-success envelope, and a unique collision with another row yields
// 400; neither writes anything.
func (r *Repository[T]) Update(ctx context.Context, patch Patch, spec UpdateSpec) (Envelope[*T], error) {
	msgs := spec.Messages

	current, matched, err := r.find(ctx, true, Selection{}, spec.Where)
	if err != nil {
		return Envelope[*T]{}, err
	}
	if current == nil || (isDeleted(current) && !spec.includeDeleted) {
		return r.found(ctx, current, msgs, spec.Where), nil
	}

	diff, err := r.diff(ctx, current, patch)
	if err != nil {
		return Envelope[*T]{}, err
	}
	if len(diff) == 0 {
		return Respond[*T](ctx, r.log, false, http.StatusCreated,
			"No changes detected on "+r.Name(), msgs.NoChanges, nil), nil
	}

	id := r.ds.ID(ctx, current)
	unique := spec.Unique
	if spec.recheckUnique {
		unique = append(append([]Filter{}, unique...), r.ds.UniqueFilters(ctx, current)...)
	}
	for _, candidate := range unique {
		taken, err := r.taken(ctx, candidate, id)
		if err != nil {
			return Envelope[*T]{}, err
		}
		if taken {
			return Respond[*T](ctx, r.log, false, http.StatusBadRequest,
				fmt.Sprintf("%s %v already exists", r.Name(), candidate), msgs.Conflict, nil), nil
		}
	}

	updated, err := r.ds.Update(ctx, matched.And(Eq(r.ds.PrimaryKey(), id)), diff, spec.Select)
	switch {
	case domain.IsAlreadyExists(err):
		return Respond[*T](ctx, r.log, false, http.StatusBadRequest,
			fmt.Sprintf("%s update violates a unique constraint: %v", r.Name(), err), msgs.Conflict, nil), nil
	case domain.IsNotFound(err):
		updated = nil
	case err != nil:
		return Envelope[*T]{}, err
	}
	if updated == nil {
		return Respond[*T](ctx, r.log, false, http.StatusBadRequest,
			fmt.Sprintf("Failed to update %s with filter %v", r.Name(), matched), msgs.Failed, nil), nil
	}
	return Respond(ctx, r.log, true, http.StatusOK, r.Name()+" updated successfully", msgs.Success, updated), nil
}

// UpdateMany writes the defined fields of patch to every row matching where.
func (r *Repository[T]) UpdateMany(ctx context.Context, where Filter, patch Patch, msgs Messages) (Envelope[Batch[T]], error) {
	clean := make(Patch, len(patch))
	for key, raw := range patch {
		v, ok := resolve(raw)
		if !ok {
			continue
		}
		col, known := r.ds.Column(key)
		if !known {
			return Envelope[Batch[T]]{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, r.Name(), key)
		}
		clean[col] = v
	}
	if len(clean) == 0 {
		return Respond(ctx, r.log, false, http.StatusBadRequest,
			"No valid fields provided for update", "No changes detected", Batch[T]{}), nil
	}

	count, err := r.ds.UpdateMany(ctx, where.Prune(), clean)
	if err != nil {
		return Envelope[Batch[T]]{}, err
	}
	if count == 0 {
		return Respond(ctx, r.log, false, http.StatusNotFound, msgs.NotFound, msgs.NotFound, Batch[T]{}), nil
	}
	return Respond(ctx, r.log, true, http.StatusOK,
		fmt.Sprintf("%d %s records updated successfully", count, r.Name()), msgs.Success, Batch[T]{Count: count}), nil
}

// SoftDelete flags the matched record as deleted. Soft-deleting a record
// twice reports no changes.
func (r *Repository[T]) SoftDelete(ctx context.Context, where Filter, sel Selection, msgs Messages) (Envelope[*T], error) {
	return r.Update(ctx, Patch{softDeleteColumn: true}, UpdateSpec{
		Where:          []Filter{where},
		Select:         sel,
		Messages:       msgs,
		includeDeleted: true,
	})
}

// Restore clears the deleted flag of the matched record. It fails with a
// conflict when another active row took one of the record's unique values.
func (r *Repository[T]) Restore(ctx context.Context, where Filter, sel Selection, msgs Messages) (Envelope[*T], error) {
	return r.Update(ctx, Patch{softDeleteColumn: false}, UpdateSpec{
		Where:          []Filter{where},
		Select:         sel,
		Messages:       msgs,
		includeDeleted: true,
		recheckUnique:  true,
	})
}

// taken reports whether an active row other than id satisfies candidate.
func (r *Repository[T]) taken(ctx context.Context, candidate Filter, id any) (bool, error) {
	candidate = candidate.Prune()
	if len(candidate) == 0 {
		return false, nil
	}
	where := candidate.And(Not(r.ds.PrimaryKey(), id))
	if col, ok := r.ds.Column(softDeleteColumn); ok {
		where = where.And(Eq(col, false))
	}
	n, err := r.ds.Count(ctx, where)
	return n > 0, err
}

// diff keeps the defined entries of patch whose value differs from current.
func (r *Repository[T]) diff(ctx context.Context, current *T, patch Patch) (Patch, error) {
	out := make(Patch, len(patch))
	for key, raw := range patch {
		proposed, ok := resolve(raw)
		if !ok {
			continue
		}
		col, known := r.ds.Column(key)
		if !known {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, r.Name(), key)
		}
		if old, ok := r.ds.Value(ctx, current, col); ok && sameValue(old, proposed) {
			continue
		}
		out[col] = proposed
	}
	return out, nil
}

// sameValue compares a stored value with a proposed one. Numbers compare by
// value across types, named string and bool types by their underlying value,
// and times by calendar day in UTC.
func sameValue(stored, proposed any) bool {
	stored, ok := resolve(stored)
	if !ok {
		return false
	}
	proposed, ok = resolve(proposed)
	if !ok {
		return false
	}

	if st, ok := stored.(time.Time); ok {
		pt, ok := proposed.(time.Time)
		return ok && st.UTC().Format(time.DateOnly) == pt.UTC().Format(time.DateOnly)
	}

	sv, pv := reflect.ValueOf(stored), reflect.ValueOf(proposed)
	switch {
	case isNumber(sv.Kind()) && isNumber(pv.Kind()):
		return sameNumber(sv, pv)
	case sv.Kind() == reflect.String && pv.Kind() == reflect.String:
		return sv.String() == pv.String()
	case sv.Kind() == reflect.Bool && pv.Kind() == reflect.Bool:
		return sv.Bool() == pv.Bool()
	}
	return reflect.DeepEqual(stored, proposed)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// sameNumber compares integers exactly and falls back to float64 only when
// either side is a float.
func sameNumber(a, b reflect.Value) bool {
	switch {
	case a.CanInt() && b.CanInt():
		return a.Int() == b.Int()
	case a.CanUint() && b.CanUint():
		return a.Uint() == b.Uint()
	case a.CanInt() && b.CanUint():
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	case a.CanUint() && b.CanInt():
		return b.Int() >= 0 && a.Uint() == uint64(b.Int())
	}
	return toFloat(a) == toFloat(b)
}

func toFloat(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	default:
		return v.Float()
	}
}
