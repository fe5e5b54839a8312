package pgxstorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type TransactionsManager struct {
	storage  *DBStorage
	isoLevel pgx.TxIsoLevel
}

// NewTransactionsManager uses ReadCommitted: a statement blocked on a row lock
// re-reads the row once the lock is released instead of failing with a
// serialization error.
func NewTransactionsManager(storage *DBStorage) *TransactionsManager {
	return &TransactionsManager{
		storage:  storage,
		isoLevel: pgx.ReadCommitted,
	}
}

// DoWithTransaction runs f inside one transaction. A context that already
// carries a transaction is reused, so nested calls join the outer one.
func (tm *TransactionsManager) DoWithTransaction(
	ctx context.Context,
	f func(ctx context.Context) error,
) error {
	if inTransaction(ctx) {
		return f(ctx)
	}
	ctxWithTransaction, tx, err := tm.storage.withTransaction(ctx, tm.isoLevel)
	if err != nil {
		return err
	}
	err = f(ctxWithTransaction)
	if err != nil {
		rollbackErr := tx.Rollback(context.Background())
		if rollbackErr != nil {
			return fmt.Errorf("transaction rollback failed: %w, rollback caused by %w", rollbackErr, err)
		}
		return err
	}
	err = tx.Commit(ctx)
	if err != nil {
		rollbackErr := tx.Rollback(context.Background())
		if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			return fmt.Errorf("transaction rollback failed: %w, rollback caused by %w", rollbackErr, err)
		}
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}
