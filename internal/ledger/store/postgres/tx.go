package postgres

import (
	"context"
	"database/sql"
	"time"

	dErrors "tally/pkg/domain-errors"
	txcontext "tally/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// TxRunner runs a callback inside one SQL transaction. The transaction is
// carried in the context, so every store call made by the callback joins it.
type TxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunInTx begins a transaction, runs fn with it in the context, and commits
// only when fn succeeds. Any error rolls everything back; partial writes are
// never visible.
func (t *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	return tx.Commit()
}
