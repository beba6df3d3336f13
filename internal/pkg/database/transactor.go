package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor runs fn in a single unit of work. The context passed to fn
// carries the transaction, so repositories called with it join it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// NoopTransactor is used by storage backends without transactions. Nothing
// is rolled back when fn fails; callers undo partial writes themselves.
type NoopTransactor struct{}

func (NoopTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
