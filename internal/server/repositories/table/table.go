// Package table is a small generic persistence store over one postgres
// table. Entity repositories describe their table with a Schema and get
// find/count/create/update/delete for free.
package table

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/dbx"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/query"
)

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrUnknownRelation = errors.New("unknown relation")
	// ErrUnboundedWrite guards against UPDATE or DELETE without a condition.
	ErrUnboundedWrite = errors.New("update or delete without condition")
)

// Entity is anything with a stable identity.
type Entity interface {
	RecordID() string
}

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Loader expands a relation for already fetched rows.
type Loader[T any] func(ctx context.Context, db dbx.DBTX, rows []*T) error

// Schema maps T onto a table.
type Schema[T any] struct {
	// Name of the table.
	Name string
	// Columns are selected by every read, in the order Scan expects them.
	Columns []string
	// Filterable lists extra columns usable in conditions and ordering.
	Filterable []string
	// Writable lists the columns an update may change.
	Writable []string
	// Touch, when set, is assigned now() by every update.
	Touch string

	Scan   func(s Scanner) (*T, error)
	Insert func(entity *T) (columns []string, values []any)

	Relations map[string]Loader[T]
}

func (s *Schema[T]) readable(col string) bool {
	return slices.Contains(s.Columns, col) || slices.Contains(s.Filterable, col)
}

func (s *Schema[T]) checkWhere(w query.Where) error {
	for _, c := range w {
		if !s.readable(c.Column) {
			return fmt.Errorf("%w %q in %s", ErrUnknownColumn, c.Column, s.Name)
		}
	}
	return nil
}

func (s *Schema[T]) checkQuery(q query.Query) error {
	if err := s.checkWhere(q.Where); err != nil {
		return err
	}
	for _, o := range q.Order {
		if !s.readable(o.Column) {
			return fmt.Errorf("%w %q in %s", ErrUnknownColumn, o.Column, s.Name)
		}
	}
	for _, rel := range q.Include {
		if _, ok := s.Relations[rel]; !ok {
			return fmt.Errorf("%w %q in %s", ErrUnknownRelation, rel, s.Name)
		}
	}
	return nil
}

// Store is the persistence contract the record service consumes.
type Store[T any] interface {
	FindOne(ctx context.Context, q query.Query) (*T, error)
	FindAndCount(ctx context.Context, q query.Query) ([]*T, int, error)
	Count(ctx context.Context, where query.Where) (int, error)
	Create(ctx context.Context, entity *T) (*T, error)
	// Update returns the number of affected rows.
	Update(ctx context.Context, where query.Where, changes query.Changes) (int64, error)
	// Delete returns the number of affected rows.
	Delete(ctx context.Context, where query.Where) (int64, error)
}

// Table implements Store on top of a DBTX.
type Table[T any] struct {
	db     dbx.DBTX
	schema *Schema[T]
}

func New[T any](db dbx.DBTX, schema *Schema[T]) *Table[T] {
	return &Table[T]{db: db, schema: schema}
}

func (t *Table[T]) DB() dbx.DBTX { return t.db }

func (t *Table[T]) selectSQL(q query.Query) (string, []any) {
	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(strings.Join(t.schema.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(t.schema.Name)

	where, args := q.Where.Render(1)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	if len(q.Order) > 0 {
		terms := make([]string, 0, len(q.Order))
		for _, o := range q.Order {
			terms = append(terms, o.SQL())
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	if q.Take > 0 {
		args = append(args, q.Take)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	return b.String(), args
}

func (t *Table[T]) load(ctx context.Context, include []string, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	for _, rel := range include {
		if err := t.schema.Relations[rel](ctx, t.db, rows); err != nil {
			return fmt.Errorf("load %s: %w", rel, err)
		}
	}
	return nil
}

func (t *Table[T]) FindOne(ctx context.Context, q query.Query) (*T, error) {
	if err := t.schema.checkQuery(q); err != nil {
		return nil, err
	}

	q.Take = 1
	q.Skip = 0
	stmt, args := t.selectSQL(q)

	entity, err := t.schema.Scan(t.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := t.load(ctx, q.Include, []*T{entity}); err != nil {
		return nil, err
	}

	return entity, nil
}

func (t *Table[T]) FindAndCount(ctx context.Context, q query.Query) ([]*T, int, error) {
	if err := t.schema.checkQuery(q); err != nil {
		return nil, 0, err
	}

	stmt, args := t.selectSQL(q)

	result, err := t.scanAll(ctx, stmt, args)
	if err != nil {
		return nil, 0, err
	}

	count, err := t.Count(ctx, q.Where)
	if err != nil {
		return nil, 0, err
	}

	if err := t.load(ctx, q.Include, result); err != nil {
		return nil, 0, err
	}

	return result, count, nil
}

// scanAll drains the result set before returning so the connection is free
// for the follow-up count inside a transaction.
func (t *Table[T]) scanAll(ctx context.Context, stmt string, args []any) ([]*T, error) {
	rows, err := t.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*T, 0)
	for rows.Next() {
		entity, err := t.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (t *Table[T]) Count(ctx context.Context, where query.Where) (int, error) {
	if err := t.schema.checkWhere(where); err != nil {
		return 0, err
	}

	stmt := "SELECT COUNT(*) FROM " + t.schema.Name
	cond, args := where.Render(1)
	if cond != "" {
		stmt += " WHERE " + cond
	}

	var n int
	if err := t.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (t *Table[T]) Create(ctx context.Context, entity *T) (*T, error) {
	cols, vals := t.schema.Insert(entity)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.schema.Name,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(t.schema.Columns, ", "),
	)

	created, err := t.schema.Scan(t.db.QueryRowContext(ctx, stmt, vals...))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (t *Table[T]) Update(ctx context.Context, where query.Where, changes query.Changes) (int64, error) {
	if len(where) == 0 {
		return 0, ErrUnboundedWrite
	}
	if err := t.schema.checkWhere(where); err != nil {
		return 0, err
	}

	cols := changes.Columns()
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+len(where))
	for _, col := range cols {
		if !slices.Contains(t.schema.Writable, col) {
			return 0, fmt.Errorf("%w %q in %s", ErrUnknownColumn, col, t.schema.Name)
		}
		args = append(args, changes[col])
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if t.schema.Touch != "" {
		sets = append(sets, t.schema.Touch+" = now()")
	}
	if len(sets) == 0 {
		n, err := t.Count(ctx, where)
		return int64(n), err
	}

	cond, condArgs := where.Render(len(args) + 1)
	args = append(args, condArgs...)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s", t.schema.Name, strings.Join(sets, ", "), cond)

	res, err := t.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (t *Table[T]) Delete(ctx context.Context, where query.Where) (int64, error) {
	if len(where) == 0 {
		return 0, ErrUnboundedWrite
	}
	if err := t.schema.checkWhere(where); err != nil {
		return 0, err
	}

	cond, args := where.Render(1)
	res, err := t.db.ExecContext(ctx, "DELETE FROM "+t.schema.Name+" WHERE "+cond, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
