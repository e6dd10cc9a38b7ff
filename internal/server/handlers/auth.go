package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prombank/prompthouse/internal/auth"
	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/middleware"
	"github.com/prombank/prompthouse/internal/server/session"
	"github.com/prombank/prompthouse/internal/server/storage"
	"github.com/prombank/prompthouse/internal/validation"
	"github.com/prombank/prompthouse/pkg/api"
)

// Единое сообщение для любых ошибок входа: не раскрываем,
// существует ли аккаунт с таким email
const invalidCredentialsMessage = "invalid email or password"

// AuthHandler обрабатывает запросы регистрации и входа
type AuthHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	jwt      *auth.TokenService
	sessions *session.Manager
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, users storage.UserStorage, jwtService *auth.TokenService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		users:    users,
		jwt:      jwtService,
		sessions: sessions,
	}
}

// Register обрабатывает POST /api/auth/register
// Регистрация нового пользователя по email и паролю
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Парсим request body
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.ValidateEmail(email); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validation.ValidatePassword(req.Password); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	firstName, err := validation.ValidateName(req.FirstName)
	if err != nil {
		sendError(h.logger, w, "first name: "+err.Error(), http.StatusBadRequest)
		return
	}

	lastName, err := validation.ValidateName(req.LastName)
	if err != nil {
		sendError(h.logger, w, "last name: "+err.Error(), http.StatusBadRequest)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		AuthProvider: models.AuthProviderLocal,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "registration with taken email", slog.String("email", email))
			sendError(h.logger, w, "email already registered", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("email", email),
		slog.String("user_id", user.ID))

	h.respondWithSession(w, r, user, "Registration successful")
}

// Login обрабатывает POST /api/auth/login
// Вход по email и паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("email", email))
			sendError(h.logger, w, invalidCredentialsMessage, http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// OAuth-аккаунты без пароля не могут войти по паролю;
	// ответ не отличим от неверного пароля
	if !user.HasPassword() || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("email", email))
		sendError(h.logger, w, invalidCredentialsMessage, http.StatusUnauthorized)
		return
	}

	if !user.IsActive {
		h.logger.WarnContext(ctx, "login failed: account deactivated", slog.String("email", email))
		sendError(h.logger, w, invalidCredentialsMessage, http.StatusUnauthorized)
		return
	}

	// Не критичная ошибка, логируем но не прерываем
	if err := h.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("email", email),
		slog.String("user_id", user.ID))

	h.respondWithSession(w, r, user, "Login successful")
}

// ChangePassword обрабатывает POST /api/auth/change-password
// Требует аутентификации
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req api.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode change password request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	// OAuth-аккаунтам без локального пароля смена пароля недоступна
	if !user.HasPassword() {
		sendError(h.logger, w, "password change is not available for this account", http.StatusBadRequest)
		return
	}

	if !auth.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		h.logger.WarnContext(ctx, "change password failed: wrong current password", slog.String("user_id", user.ID))
		sendError(h.logger, w, "current password is incorrect", http.StatusUnauthorized)
		return
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		h.logger.ErrorContext(ctx, "failed to update password", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "password changed", slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.MessageResponse{
		Success: true,
		Message: "Password changed successfully",
	}, http.StatusOK)
}

// Me обрабатывает GET /api/auth/me
// Возвращает профиль текущего пользователя
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	sendJSON(h.logger, w, toUserInfo(user), http.StatusOK)
}

// Logout обрабатывает GET /api/auth/logout
// Завершает сессию пользователя
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		h.logger.Warn("failed to clear session", slog.Any("error", err))
	}

	sendJSON(h.logger, w, api.MessageResponse{
		Success: true,
		Message: "Logged out",
	}, http.StatusOK)
}

// respondWithSession выпускает сессионный JWT, устанавливает cookie
// и возвращает профиль с токеном
func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, user *models.User, message string) {
	tokenString, _, err := h.jwt.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error("failed to issue session token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SetUserID(w, r, user.ID); err != nil {
		h.logger.Warn("failed to set session cookie", slog.Any("error", err))
	}

	sendJSON(h.logger, w, api.AuthResponse{
		Success: true,
		Message: message,
		User:    toUserInfo(user),
		Token:   tokenString,
	}, http.StatusOK)
}

// toUserInfo преобразует модель в публичный профиль
func toUserInfo(u *models.User) api.UserInfo {
	return api.UserInfo{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
		AuthProvider:   u.AuthProvider,
		IsActive:       u.IsActive,
		IsAdmin:        u.IsAdmin,
	}
}
