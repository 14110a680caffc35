package service

import (
	"context"
	"database/sql"
	"time"

	dErrors "casetriage/pkg/domain-errors"
	txcontext "casetriage/pkg/platform/tx"
)

// StoreTx runs fn as one unit of work. fn receives the context stores must
// use so they join the transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// passthroughTx is used with stores that serialise writes themselves.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

const defaultTxTimeout = 5 * time.Second

// SQLTx runs units of work in a database transaction carried in the context.
type SQLTx struct {
	db      txcontext.Beginner
	timeout time.Duration
}

// NewSQLTx builds a StoreTx over db.
func NewSQLTx(db txcontext.Beginner) *SQLTx {
	return &SQLTx{db: db, timeout: defaultTxTimeout}
}

// RunInTx bounds the unit of work by the default timeout unless ctx already
// has a deadline. Failures to begin or commit are retrieval errors.
func (t *SQLTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeCancelled, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	err := txcontext.Run(ctx, t.db, func(txCtx context.Context, _ *sql.Tx) error {
		return fn(txCtx)
	})
	if err == nil {
		return nil
	}
	if _, coded := dErrors.CodeOf(err); coded {
		return err
	}
	if ctx.Err() != nil {
		return dErrors.Wrap(err, dErrors.CodeCancelled, "transaction aborted: context cancelled")
	}
	return dErrors.Wrap(err, dErrors.CodeRetrieval, "transaction failed")
}
