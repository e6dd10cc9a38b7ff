package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/prombank/prompthouse/internal/auth"
	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/middleware"
	"github.com/prombank/prompthouse/internal/server/storage"
	"github.com/prombank/prompthouse/pkg/api"
)

// TokenHandler обрабатывает выпуск и управление API токенами.
// Все операции строго ограничены владельцем: чужой токен
// неотличим от несуществующего.
type TokenHandler struct {
	logger *slog.Logger
	tokens storage.TokenStorage
}

// NewTokenHandler создает handler для API токенов
func NewTokenHandler(logger *slog.Logger, tokens storage.TokenStorage) *TokenHandler {
	return &TokenHandler{
		logger: logger,
		tokens: tokens,
	}
}

// Create обрабатывает POST /api/tokens
// Сырой секрет возвращается только в этом ответе и нигде больше
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req api.CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create token request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		sendError(h.logger, w, "token name is required", http.StatusBadRequest)
		return
	}

	secret, secretHash, err := auth.GenerateAPISecret()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate token secret", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	token := &models.APIToken{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		TokenHash:   secretHash,
		UserID:      user.ID,
		IsActive:    true,
		Permissions: req.Permissions,
		ExpiresAt:   req.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.tokens.CreateToken(ctx, token); err != nil {
		h.logger.ErrorContext(ctx, "failed to create token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "api token created",
		slog.String("token_id", token.ID),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.CreateTokenResponse{
		Token:    secret,
		APIToken: token,
	}, http.StatusOK)
}

// List обрабатывает GET /api/tokens
// Возвращает только токены вызывающего
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	tokens, err := h.tokens.ListUserTokens(ctx, user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tokens", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.ListTokensResponse{
		Tokens: tokens,
		Total:  len(tokens),
	}, http.StatusOK)
}

// Update обрабатывает PUT /api/tokens/{id}
func (h *TokenHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)
	tokenID := mux.Vars(r)["id"]

	var req api.UpdateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode update token request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Выборка по id И владельцу: чужой токен дает 404
	token, err := h.tokens.GetUserToken(ctx, tokenID, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			sendError(h.logger, w, "token not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Повторная проверка владельца после выборки. Несовпадение означает
	// ошибку в слое хранения и прерывает запрос без деталей клиенту.
	if token.UserID != user.ID {
		h.logger.ErrorContext(ctx, "owner mismatch after scoped token fetch",
			slog.String("token_id", tokenID),
			slog.String("owner_id", token.UserID),
			slog.String("caller_id", user.ID))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			sendError(h.logger, w, "token name is required", http.StatusBadRequest)
			return
		}
		token.Name = *req.Name
	}
	if req.Description != nil {
		token.Description = *req.Description
	}
	if req.IsActive != nil {
		token.IsActive = *req.IsActive
	}
	if req.Permissions != nil {
		token.Permissions = req.Permissions
	}
	if req.ExpiresAt != nil {
		token.ExpiresAt = req.ExpiresAt
	}
	token.UpdatedAt = time.Now().UTC()

	if err := h.tokens.UpdateUserToken(ctx, token); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			sendError(h.logger, w, "token not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, token, http.StatusOK)
}

// Delete обрабатывает DELETE /api/tokens/{id}
func (h *TokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)
	tokenID := mux.Vars(r)["id"]

	if err := h.tokens.DeleteUserToken(ctx, tokenID, user.ID); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			sendError(h.logger, w, "token not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "api token deleted",
		slog.String("token_id", tokenID),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.MessageResponse{
		Success: true,
		Message: "Token deleted",
	}, http.StatusOK)
}
