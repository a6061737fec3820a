package handler

import (
	"context"

	"quiz-shell/internal/domain"
	"quiz-shell/internal/dto"
	"quiz-shell/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type namedPinger struct {
	name   string
	pinger Pinger
}

// HealthHandler reports whether the quiz store and the scoreboard answer.
type HealthHandler struct {
	checks []namedPinger
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(store, scoreboard Pinger) *HealthHandler {
	return &HealthHandler{checks: []namedPinger{
		{name: "store", pinger: store},
		{name: "scoreboard", pinger: scoreboard},
	}}
}

// Check handles GET /health. A failed ping is returned as an UNAVAILABLE
// domain error for the error handler to render.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	for _, check := range h.checks {
		if err := check.pinger.Ping(c.UserContext()); err != nil {
			logger.Get().Warn("Health check failed",
				zap.String("component", check.name),
				zap.Error(err),
			)
			return domain.NewUnavailableError(check.name, err)
		}
	}

	return c.JSON(dto.HealthResponse{Status: dto.HealthStatusOK})
}
