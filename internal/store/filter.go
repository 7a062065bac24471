package store

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// ErrInvalidFilter is returned when a filter names a column or table that is
// not a plain identifier.
var ErrInvalidFilter = errors.New("store: invalid filter")

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type op int

const (
	opEq op = iota
	opContains
	opIn
	opRange
	opNot
	opNotIn
	opIsNull
	opRelated
)

// Cond is a single field criterion. Build it with Eq, Contains, In, Range,
// Not, NotIn, IsNull or Related.
type Cond struct {
	field  string
	op     op
	value  any
	values []any
	gte    any
	lte    any
	table  string
	inner  []Cond
}

// Eq matches rows whose field equals v.
func Eq(field string, v any) Cond {
	return Cond{field: field, op: opEq, value: v}
}

// Contains matches rows whose field contains the substring s.
func Contains(field string, s any) Cond {
	return Cond{field: field, op: opContains, value: s}
}

// In matches rows whose field is one of vs.
func In(field string, vs ...any) Cond {
	return Cond{field: field, op: opIn, values: vs}
}

// Range matches rows with gte <= field <= lte. Either bound may be nil.
func Range(field string, gte, lte any) Cond {
	return Cond{field: field, op: opRange, gte: gte, lte: lte}
}

// Not matches rows whose field differs from v.
func Not(field string, v any) Cond {
	return Cond{field: field, op: opNot, value: v}
}

// NotIn matches rows whose field is none of vs.
func NotIn(field string, vs ...any) Cond {
	return Cond{field: field, op: opNotIn, values: vs}
}

// IsNull matches rows whose field is NULL. It is never pruned.
func IsNull(field string) Cond {
	return Cond{field: field, op: opIsNull}
}

// Related matches rows whose foreign key fk points at a row of table that
// satisfies every cond, e.g. products whose category name contains "shoe".
func Related(fk, table string, conds ...Cond) Cond {
	return Cond{field: fk, op: opRelated, table: table, inner: conds}
}

// Field returns the column the condition applies to.
func (c Cond) Field() string {
	return c.field
}

// prune resolves pointer values and reports whether anything is left to match on.
func (c Cond) prune() (Cond, bool) {
	switch c.op {
	case opEq, opContains, opNot:
		v, ok := resolve(c.value)
		if !ok {
			return c, false
		}
		c.value = v
	case opIn, opNotIn:
		values := make([]any, 0, len(c.values))
		for _, raw := range c.values {
			if v, ok := resolve(raw); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return c, false
		}
		c.values = values
	case opRange:
		gte, hasGte := resolve(c.gte)
		lte, hasLte := resolve(c.lte)
		if !hasGte && !hasLte {
			return c, false
		}
		c.gte, c.lte = nil, nil
		if hasGte {
			c.gte = gte
		}
		if hasLte {
			c.lte = lte
		}
	case opRelated:
		inner := Filter(c.inner).Prune()
		if len(inner) == 0 {
			return c, false
		}
		c.inner = inner
	}
	return c, true
}

func (c Cond) validate() error {
	if !validFieldName.MatchString(c.field) {
		return fmt.Errorf("%w: field %q", ErrInvalidFilter, c.field)
	}
	if c.op == opRelated {
		if !validFieldName.MatchString(c.table) {
			return fmt.Errorf("%w: table %q", ErrInvalidFilter, c.table)
		}
		return Filter(c.inner).validate()
	}
	return nil
}

// apply adds the condition to db. c must already be pruned.
func (c Cond) apply(db *gorm.DB) *gorm.DB {
	switch c.op {
	case opEq:
		return db.Where(c.field+" = ?", c.value)
	case opContains:
		return db.Where(c.field+" LIKE ? ESCAPE '\\'", "%"+escapeLike(fmt.Sprint(c.value))+"%")
	case opIn:
		return db.Where(c.field+" IN ?", c.values)
	case opNotIn:
		return db.Where(c.field+" NOT IN ?", c.values)
	case opNot:
		return db.Where(c.field+" <> ?", c.value)
	case opIsNull:
		return db.Where(c.field + " IS NULL")
	case opRange:
		if c.gte != nil {
			db = db.Where(c.field+" >= ?", c.gte)
		}
		if c.lte != nil {
			db = db.Where(c.field+" <= ?", c.lte)
		}
		return db
	case opRelated:
		sub := db.Session(&gorm.Session{NewDB: true}).Table(c.table).Select("id")
		for _, inner := range c.inner {
			sub = inner.apply(sub)
		}
		return db.Where(c.field+" IN (?)", sub)
	}
	return db
}

func (c Cond) String() string {
	switch c.op {
	case opEq:
		return fmt.Sprintf("%s=%v", c.field, c.value)
	case opContains:
		return fmt.Sprintf("%s~%v", c.field, c.value)
	case opIn:
		return fmt.Sprintf("%s in %v", c.field, c.values)
	case opNotIn:
		return fmt.Sprintf("%s not in %v", c.field, c.values)
	case opNot:
		return fmt.Sprintf("%s!=%v", c.field, c.value)
	case opIsNull:
		return c.field + " is null"
	case opRange:
		return fmt.Sprintf("%s in [%v, %v]", c.field, c.gte, c.lte)
	case opRelated:
		return fmt.Sprintf("%s->%s%s", c.field, c.table, Filter(c.inner))
	}
	return c.field
}

// Filter is a conjunction of conditions.
type Filter []Cond

// Where builds a Filter from conds.
func Where(conds ...Cond) Filter {
	return Filter(conds)
}

// And returns a new filter with conds appended.
func (f Filter) And(conds ...Cond) Filter {
	out := make(Filter, 0, len(f)+len(conds))
	out = append(out, f...)
	return append(out, conds...)
}

// Prune drops every condition whose value is undefined (nil or a nil pointer)
// and dereferences the rest.
func (f Filter) Prune() Filter {
	out := make(Filter, 0, len(f))
	for _, c := range f {
		if pruned, ok := c.prune(); ok {
			out = append(out, pruned)
		}
	}
	return out
}

// Fields lists the columns the filter constrains, in order.
func (f Filter) Fields() []string {
	fields := make([]string, 0, len(f))
	for _, c := range f {
		fields = append(fields, c.field)
	}
	return fields
}

func (f Filter) validate() error {
	for _, c := range f {
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Scope returns a GORM scope applying the pruned filter.
func (f Filter) Scope() func(db *gorm.DB) *gorm.DB {
	pruned := f.Prune()
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range pruned {
			db = c.apply(db)
		}
		return db
	}
}

func (f Filter) String() string {
	parts := make([]string, 0, len(f))
	for _, c := range f {
		parts = append(parts, c.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// resolve dereferences pointers. It reports false for nil and nil pointers.
func resolve(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
