// Package dbx holds the database handle abstraction shared by repositories
// and the transaction helpers services wrap their writes in.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by repositories. Both *sql.DB and
// *sql.Tx satisfy it, so a repository can be bound to either.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back when fn fails or panics; panics are rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE products SET ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// InTx is WithTx for callbacks that produce a value. The zero value is
// returned whenever the transaction does not commit.
func InTx[T any](ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) (T, error)) (T, error) {
	var out T
	err := WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		v, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
