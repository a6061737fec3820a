package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quiz-shell/internal/logger"

	"github.com/XSAM/otelsql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	_ "github.com/sijms/go-ora/v2"  // Oracle driver
	"go.uber.org/zap"
)

const (
	connectAttempts = 3
	connectBackoff  = 2 * time.Second
)

// Open connects to the configured database through an OpenTelemetry
// instrumented driver and verifies the connection with a ping.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	sqlDB, err := retryConn(ctx, connectAttempts, connectBackoff, func() (*sql.DB, error) {
		db, err := otelsql.Open(driver, dsn)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	// sqlite allows a single writer; serializing connections keeps id
	// allocation and writes atomic across sessions
	if driver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}

	logger.Get().Info("Successfully connected to database", zap.String("driver", driver))
	return sqlx.NewDb(sqlDB, driver), nil
}

func retryConn(ctx context.Context, attempts int, sleep time.Duration, callback func() (*sql.DB, error)) (*sql.DB, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		db, err := callback()
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Get().Warn("error connecting to database, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, fmt.Errorf("after %d attempts, connection failed: %w", attempts, lastErr)
}
