package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/prombank/prompthouse/internal/content"
	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/middleware"
	"github.com/prombank/prompthouse/internal/server/storage"
	"github.com/prombank/prompthouse/pkg/api"
)

// PromptHandler обрабатывает CRUD промптов.
// Видимость: публичные промпты видны всем, приватные только владельцу.
// Невидимый промпт неотличим от несуществующего (404).
type PromptHandler struct {
	logger  *slog.Logger
	prompts storage.PromptStorage
}

// NewPromptHandler создает handler для промптов
func NewPromptHandler(logger *slog.Logger, prompts storage.PromptStorage) *PromptHandler {
	return &PromptHandler{
		logger:  logger,
		prompts: prompts,
	}
}

// List обрабатывает GET /api/prompts
// Анонимы видят только публичные, аутентифицированные — публичные и свои
func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	requesterID := ""
	if user != nil {
		requesterID = user.ID
	}

	filter := storage.PromptFilter{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	}

	prompts, err := h.prompts.ListVisiblePrompts(ctx, requesterID, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list prompts", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.ListPromptsResponse{
		Prompts: prompts,
		Total:   len(prompts),
	}, http.StatusOK)
}

// Get обрабатывает GET /api/prompts/{id}
func (h *PromptHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	prompt, ok := h.visiblePrompt(ctx, w, mux.Vars(r)["id"], user)
	if !ok {
		return
	}

	sendJSON(h.logger, w, prompt, http.StatusOK)
}

// Create обрабатывает POST /api/prompts
func (h *PromptHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req api.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode prompt request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		sendError(h.logger, w, "prompt title is required", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		sendError(h.logger, w, "prompt content is required", http.StatusBadRequest)
		return
	}

	prompt := h.buildPrompt(user.ID, req)

	if err := h.prompts.CreatePrompt(ctx, prompt); err != nil {
		h.logger.ErrorContext(ctx, "failed to create prompt", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "prompt created",
		slog.String("prompt_id", prompt.ID),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, prompt, http.StatusOK)
}

// Update обрабатывает PUT /api/prompts/{id}
func (h *PromptHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	prompt, ok := h.mutablePrompt(ctx, w, mux.Vars(r)["id"], user)
	if !ok {
		return
	}

	var req api.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode prompt request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		sendError(h.logger, w, "prompt title is required", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		sendError(h.logger, w, "prompt content is required", http.StatusBadRequest)
		return
	}

	prompt.Title = req.Title
	prompt.Description = req.Description
	prompt.Content = req.Content
	prompt.Category = req.Category
	prompt.Tags = req.Tags
	prompt.IsPublic = req.IsPublic
	applyPromptMetrics(prompt)
	prompt.UpdatedAt = time.Now().UTC()

	if err := h.prompts.UpdatePrompt(ctx, prompt); err != nil {
		if errors.Is(err, storage.ErrPromptNotFound) {
			sendError(h.logger, w, "prompt not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update prompt", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, prompt, http.StatusOK)
}

// Delete обрабатывает DELETE /api/prompts/{id}
func (h *PromptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	prompt, ok := h.mutablePrompt(ctx, w, mux.Vars(r)["id"], user)
	if !ok {
		return
	}

	if err := h.prompts.DeletePrompt(ctx, prompt.ID); err != nil {
		if errors.Is(err, storage.ErrPromptNotFound) {
			sendError(h.logger, w, "prompt not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete prompt", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "prompt deleted",
		slog.String("prompt_id", prompt.ID),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.MessageResponse{
		Success: true,
		Message: "Prompt deleted",
	}, http.StatusOK)
}

// Import обрабатывает POST /api/prompts/import
// Принимает файл в формате json, csv или markdown
func (h *PromptHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req api.ImportPromptsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode import request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	inputs, err := content.ParseImport(req.Format, req.Data)
	if err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	imported := make([]*models.Prompt, 0, len(inputs))
	for _, input := range inputs {
		prompt := h.buildPrompt(user.ID, api.PromptRequest{
			Title:       input.Title,
			Description: input.Description,
			Content:     input.Content,
			Category:    input.Category,
			Tags:        input.Tags,
			IsPublic:    input.IsPublic,
		})

		if err := h.prompts.CreatePrompt(ctx, prompt); err != nil {
			h.logger.ErrorContext(ctx, "failed to create imported prompt", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}

		imported = append(imported, prompt)
	}

	h.logger.InfoContext(ctx, "prompts imported",
		slog.Int("count", len(imported)),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.ImportPromptsResponse{
		Imported: len(imported),
		Prompts:  imported,
	}, http.StatusOK)
}

// visiblePrompt загружает промпт и применяет правило видимости.
// Невидимый и несуществующий промпты дают одинаковый 404.
func (h *PromptHandler) visiblePrompt(ctx context.Context, w http.ResponseWriter, promptID string, user *models.User) (*models.Prompt, bool) {
	prompt, err := h.prompts.GetPromptByID(ctx, promptID)
	if err != nil {
		if errors.Is(err, storage.ErrPromptNotFound) {
			sendError(h.logger, w, "prompt not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.ErrorContext(ctx, "failed to get prompt", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	if !prompt.VisibleTo(user) {
		sendError(h.logger, w, "prompt not found", http.StatusNotFound)
		return nil, false
	}

	return prompt, true
}

// mutablePrompt загружает промпт и применяет правило изменяемости.
// Невидимый промпт для обычного пользователя дает 404, видимый но
// чужой — 403. Админ получает 403 и на чужих приватных промптах:
// правило явное, приватный контент не изменяем даже админом.
func (h *PromptHandler) mutablePrompt(ctx context.Context, w http.ResponseWriter, promptID string, user *models.User) (*models.Prompt, bool) {
	prompt, err := h.prompts.GetPromptByID(ctx, promptID)
	if err != nil {
		if errors.Is(err, storage.ErrPromptNotFound) {
			sendError(h.logger, w, "prompt not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.ErrorContext(ctx, "failed to get prompt", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	if prompt.MutableBy(user) {
		return prompt, true
	}

	if prompt.VisibleTo(user) || user.IsAdmin {
		sendError(h.logger, w, "you do not have permission to modify this prompt", http.StatusForbidden)
		return nil, false
	}

	sendError(h.logger, w, "prompt not found", http.StatusNotFound)
	return nil, false
}

// buildPrompt собирает новую модель с вычисленными метриками
func (h *PromptHandler) buildPrompt(userID string, req api.PromptRequest) *models.Prompt {
	now := time.Now().UTC()
	prompt := &models.Prompt{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Tags:        req.Tags,
		IsPublic:    req.IsPublic,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyPromptMetrics(prompt)

	return prompt
}

// applyPromptMetrics пересчитывает метрики и переменные по содержимому
func applyPromptMetrics(prompt *models.Prompt) {
	metrics := content.ComputeMetrics(prompt.Content)
	prompt.WordCount = metrics.WordCount
	prompt.CharCount = metrics.CharCount
	prompt.EstimatedTokens = metrics.EstimatedTokens
	prompt.Variables = content.ExtractVariables(prompt.Content)
}
