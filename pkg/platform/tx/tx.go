// Package tx lets postgres.RunInTx hand its *sql.Tx to stores through the
// context. Stores read it back via postgres.Executor.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

// WithTx returns ctx carrying sqlTx. A nil sqlTx returns ctx unchanged so
// stores fall back to the pool.
func WithTx(ctx context.Context, sqlTx *sql.Tx) context.Context {
	if sqlTx == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, sqlTx)
}

func From(ctx context.Context) (*sql.Tx, bool) {
	sqlTx, ok := ctx.Value(ctxKey{}).(*sql.Tx)
	return sqlTx, ok && sqlTx != nil
}
