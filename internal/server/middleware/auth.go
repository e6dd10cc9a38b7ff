package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prombank/prompthouse/internal/auth"
	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/session"
	"github.com/prombank/prompthouse/internal/server/storage"
	"github.com/prombank/prompthouse/pkg/api"
)

type contextKey string

// userContextKey хранит аутентифицированного пользователя в контексте запроса
const userContextKey contextKey = "auth_user"

// Resolver определяет пользователя по учетным данным запроса.
// Порядок проверки: сессионная cookie, JWT в Authorization, API токен.
type Resolver struct {
	logger   *slog.Logger
	users    storage.UserStorage
	tokens   storage.TokenStorage
	sessions *session.Manager
	jwt      *auth.TokenService
}

// NewResolver creates a credential resolver over the given stores.
func NewResolver(
	logger *slog.Logger,
	users storage.UserStorage,
	tokens storage.TokenStorage,
	sessions *session.Manager,
	jwtService *auth.TokenService,
) *Resolver {
	return &Resolver{
		logger:   logger,
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		jwt:      jwtService,
	}
}

// Resolve возвращает пользователя запроса или nil, если учетных данных нет
// или они невалидны. Невалидные данные не являются ошибкой резолвера.
func (rs *Resolver) Resolve(r *http.Request) *models.User {
	ctx := r.Context()

	// 1. Сессионная cookie
	if userID := rs.sessions.UserID(r); userID != "" {
		if user := rs.activeUser(ctx, userID); user != nil {
			return user
		}
	}

	// 2. Заголовок Authorization: Bearer <JWT или API токен>
	credential := bearerToken(r)
	if credential == "" {
		return nil
	}

	if strings.HasPrefix(credential, auth.SecretPrefix) {
		return rs.resolveAPIToken(ctx, credential)
	}

	return rs.resolveJWT(ctx, credential)
}

// resolveJWT проверяет сессионный JWT и загружает его владельца
func (rs *Resolver) resolveJWT(ctx context.Context, tokenString string) *models.User {
	claims, err := rs.jwt.Verify(tokenString)
	if err != nil {
		rs.logger.Debug("invalid session token", "error", err)
		return nil
	}

	return rs.activeUser(ctx, claims.Subject)
}

// resolveAPIToken проверяет долгоживущий API токен по хэшу секрета
func (rs *Resolver) resolveAPIToken(ctx context.Context, secret string) *models.User {
	if err := auth.ValidateAPISecretFormat(secret); err != nil {
		rs.logger.Debug("malformed api token", "error", err)
		return nil
	}

	token, err := rs.tokens.GetTokenByHash(ctx, auth.HashAPISecret(secret))
	if err != nil {
		if !errors.Is(err, storage.ErrTokenNotFound) {
			rs.logger.Error("failed to look up api token", "error", err)
		}
		return nil
	}

	if !token.IsActive || token.Expired(time.Now()) {
		return nil
	}

	user := rs.activeUser(ctx, token.UserID)
	if user == nil {
		return nil
	}

	// Учет использования не должен ломать аутентификацию
	if err := rs.tokens.RecordTokenUsage(ctx, token.ID); err != nil {
		rs.logger.Warn("failed to record token usage", "token_id", token.ID, "error", err)
	}

	return user
}

// activeUser загружает пользователя и отбрасывает деактивированных
func (rs *Resolver) activeUser(ctx context.Context, userID string) *models.User {
	user, err := rs.users.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			rs.logger.Error("failed to load user", "user_id", userID, "error", err)
		}
		return nil
	}

	if !user.IsActive {
		return nil
	}

	return user
}

// RequireAuth пропускает только аутентифицированные запросы
func (rs *Resolver) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := rs.Resolve(r)
		if user == nil {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// RequireAdmin пропускает только аутентифицированных админов
func (rs *Resolver) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := rs.Resolve(r)
		if user == nil {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !user.IsAdmin {
			writeAuthError(w, http.StatusForbidden, "admin access required")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// OptionalAuth добавляет пользователя в контекст, если учетные данные
// валидны, и пропускает запрос дальше в любом случае
func (rs *Resolver) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := rs.Resolve(r); user != nil {
			r = r.WithContext(withUser(r.Context(), user))
		}

		next.ServeHTTP(w, r)
	})
}

// UserFromContext возвращает пользователя запроса, nil для анонимных
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// bearerToken извлекает credential из заголовка Authorization
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: message})
}
