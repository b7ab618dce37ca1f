package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain-errors"
	txcontext "github.com/tendai-dev/onboarding-kyb-sub006/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// postgresTxRunner begins a transaction and exposes it to the stores through
// the context, so the case row and its outbox rows commit atomically.
type postgresTxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func newPostgresTxRunner(db *sql.DB) *postgresTxRunner {
	return &postgresTxRunner{db: db}
}

func (t *postgresTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
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
