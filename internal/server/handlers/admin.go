package handlers

import (
	"log/slog"
	"net/http"

	"github.com/prombank/prompthouse/internal/server/storage"
	"github.com/prombank/prompthouse/pkg/api"
)

// AdminHandler обрабатывает диагностические эндпоинты администратора.
// Маршруты защищены RequireAdmin middleware.
type AdminHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	tokens   storage.TokenStorage
	prompts  storage.PromptStorage
	articles storage.ArticleStorage
}

// NewAdminHandler создает handler для админских эндпоинтов
func NewAdminHandler(
	logger *slog.Logger,
	users storage.UserStorage,
	tokens storage.TokenStorage,
	prompts storage.PromptStorage,
	articles storage.ArticleStorage,
) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		users:    users,
		tokens:   tokens,
		prompts:  prompts,
		articles: articles,
	}
}

// ListUsers обрабатывает GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.AdminUsersResponse{
		Users: users,
		Total: len(users),
	}, http.StatusOK)
}

// Stats обрабатывает GET /api/admin/stats
// Возвращает сводные счетчики по всем таблицам
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userCount, err := h.users.CountUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count users", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	tokenCount, err := h.tokens.CountTokens(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count tokens", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	promptCount, err := h.prompts.CountPrompts(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count prompts", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	articleCount, err := h.articles.CountArticles(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count articles", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.AdminStatsResponse{
		Users:    userCount,
		Tokens:   tokenCount,
		Prompts:  promptCount,
		Articles: articleCount,
	}, http.StatusOK)
}
