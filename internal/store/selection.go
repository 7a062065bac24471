package store

// Selection is the projection returned by a read: a set of columns plus the
// relations to preload. The zero value selects every column and no relation.
type Selection struct {
	columns   []string
	relations []string
}

// Select returns a Selection limited to columns.
func Select(columns ...string) Selection {
	return Selection{columns: columns}
}

// With returns a copy of s that also preloads the given relations
// (struct field names, e.g. "Category").
func (s Selection) With(relations ...string) Selection {
	out := Selection{
		columns:   s.columns,
		relations: make([]string, 0, len(s.relations)+len(relations)),
	}
	out.relations = append(out.relations, s.relations...)
	out.relations = append(out.relations, relations...)
	return out
}

// Columns returns the selected columns; empty means all.
func (s Selection) Columns() []string {
	return s.columns
}

// Relations returns the relations to preload.
func (s Selection) Relations() []string {
	return s.relations
}

// withRequired adds the given columns when the selection is restricted and
// does not already include them.
func (s Selection) withRequired(required ...string) []string {
	if len(s.columns) == 0 {
		return nil
	}
	cols := make([]string, 0, len(s.columns)+len(required))
	seen := make(map[string]struct{}, len(s.columns)+len(required))
	for _, c := range append(append([]string{}, required...), s.columns...) {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	return cols
}
