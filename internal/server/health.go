package server

import (
	"context"
	"time"

	"quiz-shell/internal/handler"
	"quiz-shell/internal/logger"
	"quiz-shell/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// NewHealthApp builds the fiber app exposing GET /health.
func NewHealthApp(h *handler.HealthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
		IdleTimeout:           20 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(recover.New())

	app.Get("/health", h.Check)
	return app
}

// RunHealth serves app on address until ctx is done, then shuts it down
// within timeout.
func RunHealth(ctx context.Context, app *fiber.App, address string, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Get().Info("Health server listening", zap.String("address", address))
		errCh <- app.Listen(address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := app.ShutdownWithTimeout(timeout); err != nil {
		logger.Get().Error("Health server forced to shutdown", zap.Error(err))
		return err
	}
	logger.Get().Info("Health server stopped")
	return <-errCh
}
