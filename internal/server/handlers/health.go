package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger *slog.Logger
	db     Pinger
}

// NewHealthHandler создает новый health handler
func NewHealthHandler(logger *slog.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		db:     db,
	}
}

// healthResponse представляет ответ health check
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health обрабатывает GET /health
// Возвращает 503 если база недоступна
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health check failed", slog.Any("error", err))
		sendJSON(h.logger, w, healthResponse{
			Status:   "unhealthy",
			Database: "down",
		}, http.StatusServiceUnavailable)
		return
	}

	sendJSON(h.logger, w, healthResponse{
		Status:   "ok",
		Database: "up",
	}, http.StatusOK)
}
