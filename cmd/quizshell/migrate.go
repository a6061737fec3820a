package main

import (
	"quiz-shell/internal/database"
	"quiz-shell/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the quizzes table and seed it",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := database.Open(ctx, cfg.DB.Driver, cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
		return err
	}

	logger.Get().Info("Migrations applied", zap.String("driver", cfg.DB.Driver))
	return nil
}
