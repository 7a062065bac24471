package store

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// Referencer is a model that foreign keys can point at.
type Referencer interface {
	Reference(ctx context.Context, id any) (exists, deleted bool, err error)
}

// ForeignKey declares that Field of the validated data must reference an
// existing, non-deleted row of Target. Message is reported when it does not exist.
type ForeignKey struct {
	Field   string
	Target  Referencer
	Message string
}

// InvalidKey describes one foreign key that failed validation.
type InvalidKey struct {
	Key        string `json:"key"`
	ResMessage string `json:"resMessage"`
}

// CheckForeignKeys validates every declared key present in data. Absent or
// zero values are skipped. Lookups run concurrently; the reported keys keep
// the order of keys.
func CheckForeignKeys(ctx context.Context, log *slog.Logger, data map[string]any, keys ...ForeignKey) (Envelope[[]InvalidKey], error) {
	results := make([]*InvalidKey, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, fk := range keys {
		value, ok := present(data[fk.Field])
		if !ok {
			continue
		}
		g.Go(func() error {
			exists, deleted, err := fk.Target.Reference(gctx, value)
			if err != nil {
				return err
			}
			switch {
			case !exists:
				results[i] = &InvalidKey{Key: fk.Field, ResMessage: fk.Message}
			case deleted:
				results[i] = &InvalidKey{Key: fk.Field, ResMessage: fk.Field + " is deleted"}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Envelope[[]InvalidKey]{}, err
	}

	var invalid []InvalidKey
	for _, res := range results {
		if res != nil {
			invalid = append(invalid, *res)
		}
	}
	if len(invalid) > 0 {
		return Respond(ctx, log, false, http.StatusBadRequest,
			"Foreign key validation failed", "One or more foreign keys are invalid", invalid), nil
	}
	return Respond[[]InvalidKey](ctx, log, true, http.StatusOK, "Foreign keys valid", "All foreign keys exist", nil), nil
}

// present resolves v and reports false when it is undefined or the zero value.
func present(v any) (any, bool) {
	resolved, ok := resolve(v)
	if !ok || reflect.ValueOf(resolved).IsZero() {
		return nil, false
	}
	return resolved, true
}
