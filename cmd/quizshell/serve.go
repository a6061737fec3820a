package main

import (
	"quiz-shell/internal/handler"
	"quiz-shell/internal/logger"
	"quiz-shell/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve quiz sessions over TCP and expose /health",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "TCP address to listen on (overrides server.address)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Address = addr
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	tcpServer := server.NewTCPServer(cfg.Server, cfg.Session, a.dispatcher)
	healthApp := server.NewHealthApp(handler.NewHealthHandler(a.store, a.scoreboard))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tcpServer.ListenAndServe(gctx)
	})
	if cfg.Server.HealthAddress != "" {
		g.Go(func() error {
			return server.RunHealth(gctx, healthApp, cfg.Server.HealthAddress, cfg.Server.ShutdownTimeout)
		})
	}

	logger.Get().Info("Quiz server started",
		zap.String("address", cfg.Server.Address),
		zap.String("health_address", cfg.Server.HealthAddress),
		zap.String("db_driver", cfg.DB.Driver),
	)

	if err := g.Wait(); err != nil {
		logger.Get().Error("Quiz server stopped with error", zap.Error(err))
		return err
	}
	logger.Get().Info("Quiz server exited")
	return nil
}
