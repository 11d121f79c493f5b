// Package dbx holds the database/sql seams of the local SQLite state store.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is what repositories query through. *sql.DB, *sql.Conn and *sql.Tx
// all satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// InTx runs fn atomically against db.
//
// When db can open transactions, fn gets a new one that is committed if fn
// returns nil and rolled back otherwise, including on panic. Any other handle,
// typically a caller's *sql.Tx, is passed through unchanged and fn joins the
// surrounding transaction.
func InTx(ctx context.Context, db DBTX, fn func(ctx context.Context, tx DBTX) error) (err error) {
	b, ok := db.(beginner)
	if !ok {
		return fn(ctx, db)
	}

	tx, err := b.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	committed = true
	return tx.Commit()
}
