package httptransport

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"github.com/labstack/echo/v4"
)

// Pinger — то, что умеет проверить своё соединение (пул БД).
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	logger *slog.Logger
	db     Pinger
}

func NewHealthHandler(logger *slog.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{logger: logger, db: db}
}

func (h *HealthHandler) RegisterRoutes(r interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}) {
	r.GET("/health", h.Health)
}

// Health — деградация БД не роняет сервис, но видна мониторингу как 503
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health: db ping failed", slog.String("error", err.Error()))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":   "degraded",
			"database": "down",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "healthy",
		"database": "up",
	})
}
