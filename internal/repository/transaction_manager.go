package repository

import (
	"context"
	"fmt"

	"quiz-shell/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// withTransaction runs fn inside a transaction, committing when it returns nil
// and rolling back on error or panic.
func withTransaction(ctx context.Context, db *sqlx.DB, fn func(tx DBTX) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				logger.Get().Error("failed to rollback transaction", zap.Error(rollbackErr))
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
