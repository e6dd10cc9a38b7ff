package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/oauth"
	"github.com/prombank/prompthouse/internal/server/session"
	"github.com/prombank/prompthouse/internal/server/storage"
)

// Редиректы после OAuth callback: детали ошибок провайдера
// в браузер не попадают
const (
	oauthSuccessRedirect = "/dashboard?auth=success"
	oauthErrorRedirect   = "/?auth=error"
)

// OAuthHandler обрабатывает вход через Google
type OAuthHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	sessions *session.Manager
	provider *oauth.GoogleProvider // nil если провайдер не настроен
}

// NewOAuthHandler создает handler для OAuth входа
func NewOAuthHandler(logger *slog.Logger, users storage.UserStorage, sessions *session.Manager, provider *oauth.GoogleProvider) *OAuthHandler {
	return &OAuthHandler{
		logger:   logger,
		users:    users,
		sessions: sessions,
		provider: provider,
	}
}

// GoogleStart обрабатывает GET /api/auth/google
// Начало OAuth flow: редирект на провайдера с anti-forgery state
func (h *OAuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		sendError(h.logger, w, "google oauth is not configured", http.StatusInternalServerError)
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate oauth state", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SetOAuthState(w, r, state); err != nil {
		h.logger.Error("failed to store oauth state", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback обрабатывает GET /api/auth/google/callback
// Любая ошибка дает редирект на страницу ошибки, не сырой 500
func (h *OAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.provider == nil {
		http.Redirect(w, r, oauthErrorRedirect, http.StatusFound)
		return
	}

	// State одноразовый: удаляется из сессии до любых проверок.
	// Отсутствие любой из сторон так же фатально, как несовпадение.
	storedState := h.sessions.ConsumeOAuthState(w, r)
	returnedState := r.URL.Query().Get("state")
	if storedState == "" || returnedState == "" || storedState != returnedState {
		h.logger.Warn("oauth state mismatch", slog.String("remote_addr", r.RemoteAddr))
		http.Redirect(w, r, oauthErrorRedirect, http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.logger.Warn("oauth callback without code")
		http.Redirect(w, r, oauthErrorRedirect, http.StatusFound)
		return
	}

	token, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("oauth code exchange failed", slog.Any("error", err))
		http.Redirect(w, r, oauthErrorRedirect, http.StatusFound)
		return
	}

	profile, err := h.provider.FetchProfile(ctx, token)
	if err != nil {
		h.logger.Error("failed to fetch oauth profile", slog.Any("error", err))
		http.Redirect(w, r, oauthErrorRedirect, http.StatusFound)
		return
	}

	user, err := h.createOrUpdateFromProfile(ctx, profile)
	if err != nil {
		h.logger.Error("failed to persist oauth user", slog.Any("error", err))
		http.Redirect(w, r, oauthErrorRedirect, http.StatusFound)
		return
	}

	if !user.IsActive {
		h.logger.Warn("oauth login for deactivated account", slog.String("user_id", user.ID))
		http.Redirect(w, r, oauthErrorRedirect, http.StatusFound)
		return
	}

	if err := h.sessions.SetUserID(w, r, user.ID); err != nil {
		h.logger.Error("failed to set session after oauth login", slog.Any("error", err))
		http.Redirect(w, r, oauthErrorRedirect, http.StatusFound)
		return
	}

	h.logger.Info("oauth login successful",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email))

	http.Redirect(w, r, oauthSuccessRedirect, http.StatusFound)
}

// createOrUpdateFromProfile находит пользователя по внешнему id или email
// и обновляет его идентификационные поля, либо создает нового
func (h *OAuthHandler) createOrUpdateFromProfile(ctx context.Context, profile *oauth.Profile) (*models.User, error) {
	now := time.Now().UTC()

	user, err := h.users.GetUserByGoogleIDOrEmail(ctx, profile.ID, profile.Email)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			return nil, err
		}

		// Новый пользователь: пароля нет, вход только через провайдера
		user = &models.User{
			ID:             uuid.New().String(),
			Email:          profile.Email,
			GoogleID:       profile.ID,
			FirstName:      profile.FirstName,
			LastName:       profile.LastName,
			ProfilePicture: profile.Picture,
			AuthProvider:   models.AuthProviderGoogle,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
			LastLoginAt:    &now,
		}

		if err := h.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}

		return user, nil
	}

	// Существующий аккаунт: связываем с внешним id и освежаем профиль
	user.GoogleID = profile.ID
	user.AuthProvider = models.AuthProviderGoogle
	user.ProfilePicture = profile.Picture
	if user.FirstName == "" {
		user.FirstName = profile.FirstName
	}
	if user.LastName == "" {
		user.LastName = profile.LastName
	}
	user.UpdatedAt = now

	if err := h.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := h.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		h.logger.Warn("failed to update last login", slog.Any("error", err))
	}

	return user, nil
}
