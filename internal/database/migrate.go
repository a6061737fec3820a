package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"quiz-shell/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate brings the schema of db up to date. sqlite3 and postgres are
// versioned through golang-migrate; oracle has no golang-migrate driver, so
// its embedded scripts run once when the quizzes table is missing.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	switch driver {
	case "sqlite3":
		instance, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite3 migration driver: %w", err)
		}
		return runMigrate(instance, driver)
	case "postgres":
		// the driver pins one connection for its advisory lock; it goes back
		// to the pool once the run is over
		conn, err := db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("could not reserve a migration connection: %w", err)
		}
		defer conn.Close()

		instance, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			return fmt.Errorf("could not create postgres migration driver: %w", err)
		}
		return runMigrate(instance, driver)
	case "oracle":
		return runOracleScripts(ctx, db.DB)
	default:
		return fmt.Errorf("migrations are not supported for driver %q", driver)
	}
}

func runMigrate(instance migratedb.Driver, driver string) error {
	src, err := iofs.New(migrationsFS, path.Join("migrations", driver))
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}
	// m.Close would close the caller's *sql.DB for sqlite3, so the source is
	// closed here and connections by Migrate
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("could not read migration version: %w", err)
	}
	logger.Get().Info("Migrations completed successfully",
		zap.String("driver", driver),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

func runOracleScripts(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_tables WHERE table_name = 'QUIZZES'`).Scan(&count); err != nil {
		return fmt.Errorf("could not inspect oracle schema: %w", err)
	}
	if count > 0 {
		logger.Get().Info("Oracle schema already present, skipping migrations")
		return nil
	}

	files, err := fs.Glob(migrationsFS, "migrations/oracle/*.up.sql")
	if err != nil {
		return fmt.Errorf("could not list oracle migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrationsFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", file, err)
		}
		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", file, err)
			}
		}
		logger.Get().Info("Executed migration", zap.String("file", file))
	}
	return nil
}

// splitStatements splits a script on trailing semicolons; Oracle executes a
// single statement per call and rejects the terminator.
func splitStatements(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
