package main

import (
	"context"
	"fmt"

	"quiz-shell/internal/adapter"
	"quiz-shell/internal/config"
	"quiz-shell/internal/database"
	"quiz-shell/internal/domain"
	"quiz-shell/internal/handler"
	"quiz-shell/internal/logger"
	"quiz-shell/internal/repository"
	"quiz-shell/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "quizshell",
	Short:         "Interactive quiz manager over TCP, the terminal or Telegram",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// the local session owns stdout
		if cmd.Name() == localCmd.Name() {
			cfg.Logger.Output = "stderr"
		}
		if err := logger.Initialize(cfg.Logger); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, localCmd, telegramCmd, migrateCmd)
}

// app holds what every session-serving command shares.
type app struct {
	db          *sqlx.DB
	redisClient *redis.Client
	store       *repository.QuizDatabaseAdapter
	scoreboard  domain.Scoreboard
	dispatcher  *handler.Dispatcher
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.Get()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{db: db}
	a.store = repository.NewQuizDatabaseAdapter(db, repository.PlaceholderFor(cfg.DB.Driver))

	a.scoreboard = adapter.NewMemoryScoreboard()
	if cfg.Redis.Address != "" {
		client, err := adapter.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, keeping scores in memory", zap.Error(err))
		} else {
			log.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
			a.redisClient = client
			a.scoreboard = adapter.NewRedisScoreboard(client)
		}
	}

	quizService := service.NewQuizService(a.store, a.scoreboard, cfg)
	a.dispatcher = handler.NewDispatcher(quizService, cfg)
	return a, nil
}

func (a *app) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logger.Get().Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		logger.Get().Warn("Failed to close database", zap.Error(err))
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(ctx, cfg.DB.Driver, cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	if cfg.DB.MigrateOnStart {
		if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
