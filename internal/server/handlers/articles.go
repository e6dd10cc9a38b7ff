package handlers

import (
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

// ArticleHandler обрабатывает CRUD статей.
// Статьи видны только владельцу, флага публичности у них нет.
type ArticleHandler struct {
	logger   *slog.Logger
	articles storage.ArticleStorage
	prompts  storage.PromptStorage
}

// NewArticleHandler создает handler для статей
func NewArticleHandler(logger *slog.Logger, articles storage.ArticleStorage, prompts storage.PromptStorage) *ArticleHandler {
	return &ArticleHandler{
		logger:   logger,
		articles: articles,
		prompts:  prompts,
	}
}

// List обрабатывает GET /api/articles
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	articles, err := h.articles.ListUserArticles(ctx, user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list articles", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.ListArticlesResponse{
		Articles: articles,
		Total:    len(articles),
	}, http.StatusOK)
}

// Get обрабатывает GET /api/articles/{id}
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	article, err := h.articles.GetUserArticle(ctx, mux.Vars(r)["id"], user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrArticleNotFound) {
			sendError(h.logger, w, "article not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get article", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, article, http.StatusOK)
}

// Create обрабатывает POST /api/articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req api.ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode article request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		sendError(h.logger, w, "article title is required", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		sendError(h.logger, w, "article content is required", http.StatusBadRequest)
		return
	}

	promptTitle, ok := h.resolvePromptTitle(w, r, req.PromptID, user)
	if !ok {
		return
	}

	now := time.Now().UTC()
	article := &models.Article{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Tags:        req.Tags,
		PromptID:    req.PromptID,
		PromptTitle: promptTitle,
		UserID:      user.ID,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyArticleMetrics(article)

	if err := h.articles.CreateArticle(ctx, article); err != nil {
		h.logger.ErrorContext(ctx, "failed to create article", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "article created",
		slog.String("article_id", article.ID),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, article, http.StatusOK)
}

// Update обрабатывает PUT /api/articles/{id}
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	article, err := h.articles.GetUserArticle(ctx, mux.Vars(r)["id"], user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrArticleNotFound) {
			sendError(h.logger, w, "article not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get article", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	var req api.ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode article request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		sendError(h.logger, w, "article title is required", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		sendError(h.logger, w, "article content is required", http.StatusBadRequest)
		return
	}

	promptTitle, ok := h.resolvePromptTitle(w, r, req.PromptID, user)
	if !ok {
		return
	}

	article.Title = req.Title
	article.Content = req.Content
	article.Category = req.Category
	article.Tags = req.Tags
	article.PromptID = req.PromptID
	article.PromptTitle = promptTitle
	article.Metadata = req.Metadata
	applyArticleMetrics(article)
	article.UpdatedAt = time.Now().UTC()

	if err := h.articles.UpdateUserArticle(ctx, article); err != nil {
		if errors.Is(err, storage.ErrArticleNotFound) {
			sendError(h.logger, w, "article not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update article", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, article, http.StatusOK)
}

// Delete обрабатывает DELETE /api/articles/{id}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)
	articleID := mux.Vars(r)["id"]

	if err := h.articles.DeleteUserArticle(ctx, articleID, user.ID); err != nil {
		if errors.Is(err, storage.ErrArticleNotFound) {
			sendError(h.logger, w, "article not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete article", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "article deleted",
		slog.String("article_id", articleID),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.MessageResponse{
		Success: true,
		Message: "Article deleted",
	}, http.StatusOK)
}

// resolvePromptTitle проверяет ссылку на исходный промпт.
// Промпт должен существовать и быть видимым автору статьи;
// невидимый промпт неотличим от несуществующего.
func (h *ArticleHandler) resolvePromptTitle(w http.ResponseWriter, r *http.Request, promptID string, user *models.User) (string, bool) {
	if promptID == "" {
		return "", true
	}

	ctx := r.Context()

	prompt, err := h.prompts.GetPromptByID(ctx, promptID)
	if err != nil {
		if errors.Is(err, storage.ErrPromptNotFound) {
			sendError(h.logger, w, "referenced prompt not found", http.StatusBadRequest)
			return "", false
		}
		h.logger.ErrorContext(ctx, "failed to get referenced prompt", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return "", false
	}

	if !prompt.VisibleTo(user) {
		sendError(h.logger, w, "referenced prompt not found", http.StatusBadRequest)
		return "", false
	}

	return prompt.Title, true
}

// applyArticleMetrics пересчитывает метрики текста статьи
func applyArticleMetrics(article *models.Article) {
	metrics := content.ComputeMetrics(article.Content)
	article.WordCount = metrics.WordCount
	article.CharCount = metrics.CharCount
}
