// Package query describes filters, ordering and pagination for table reads
// and renders them to postgres SQL with positional placeholders.
package query

import (
	"fmt"
	"slices"
	"strings"
)

type Op string

const (
	OpEq     Op = "="
	OpNe     Op = "<>"
	OpLt     Op = "<"
	OpLte    Op = "<="
	OpGt     Op = ">"
	OpGte    Op = ">="
	OpILike  Op = "ILIKE"
	OpIsNull Op = "IS NULL"
)

// Cond is a single "column op value" predicate.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, v any) Cond  { return Cond{Column: column, Op: OpEq, Value: v} }
func Ne(column string, v any) Cond  { return Cond{Column: column, Op: OpNe, Value: v} }
func Lt(column string, v any) Cond  { return Cond{Column: column, Op: OpLt, Value: v} }
func Lte(column string, v any) Cond { return Cond{Column: column, Op: OpLte, Value: v} }
func Gt(column string, v any) Cond  { return Cond{Column: column, Op: OpGt, Value: v} }
func Gte(column string, v any) Cond { return Cond{Column: column, Op: OpGte, Value: v} }
func IsNull(column string) Cond     { return Cond{Column: column, Op: OpIsNull} }

// Contains matches rows whose column contains s, case-insensitively. LIKE
// wildcards in s are matched literally.
func Contains(column, s string) Cond {
	return Cond{Column: column, Op: OpILike, Value: "%" + escapeLike(s) + "%"}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Where is a conjunction of conditions. An empty Where matches every row.
type Where []Cond

// And returns a new Where with conds appended; w is left untouched.
func (w Where) And(conds ...Cond) Where {
	out := make(Where, 0, len(w)+len(conds))
	out = append(out, w...)
	return append(out, conds...)
}

func (w Where) Columns() []string {
	cols := make([]string, 0, len(w))
	for _, c := range w {
		cols = append(cols, c.Column)
	}
	return cols
}

// Render returns the predicate without the WHERE keyword and its arguments.
// Placeholders are numbered from start.
func (w Where) Render(start int) (string, []any) {
	if len(w) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(w))
	args := make([]any, 0, len(w))
	n := start

	for _, c := range w {
		if c.Op == OpIsNull {
			parts = append(parts, c.Column+" IS NULL")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s $%d", c.Column, c.Op, n))
		args = append(args, c.Value)
		n++
	}

	return strings.Join(parts, " AND "), args
}

// Order is one ORDER BY term.
type Order struct {
	Column    string
	Desc      bool
	NullsLast bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

func (o Order) SQL() string {
	s := o.Column + " ASC"
	if o.Desc {
		s = o.Column + " DESC"
	}
	if o.NullsLast {
		s += " NULLS LAST"
	}
	return s
}

// Query is a read request. Take <= 0 means no limit.
type Query struct {
	Where   Where
	Order   []Order
	Include []string
	Take    int
	Skip    int
}

// Changes maps columns to their new values for an update.
type Changes map[string]any

// Columns returns the changed columns in a stable order.
func (c Changes) Columns() []string {
	cols := make([]string, 0, len(c))
	for k := range c {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols
}
