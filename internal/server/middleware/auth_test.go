package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prombank/prompthouse/internal/auth"
	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/session"
	"github.com/prombank/prompthouse/internal/server/storage/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupResolver(t *testing.T) (*Resolver, *sqlite.Storage, *session.Manager, *auth.TokenService) {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	sessions := session.NewManager("test-session-secret", 3600)
	jwtService := auth.NewTokenService("test-jwt-secret", time.Hour)
	resolver := NewResolver(testLogger(), store, store, sessions, jwtService)

	return resolver, store, sessions, jwtService
}

func createAuthTestUser(t *testing.T, store *sqlite.Storage, email string, active, admin bool) *models.User {
	t.Helper()

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		FirstName:    "Test",
		LastName:     "User",
		AuthProvider: models.AuthProviderLocal,
		IsActive:     active,
		IsAdmin:      admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))

	return user
}

func createAuthTestToken(t *testing.T, store *sqlite.Storage, userID string, active bool, expiresAt *time.Time) (string, *models.APIToken) {
	t.Helper()

	secret, secretHash, err := auth.GenerateAPISecret()
	require.NoError(t, err)

	now := time.Now().UTC()
	token := &models.APIToken{
		ID:          uuid.New().String(),
		Name:        "test token",
		TokenHash:   secretHash,
		UserID:      userID,
		IsActive:    active,
		Permissions: []string{"read", "write"},
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.CreateToken(context.Background(), token))

	return secret, token
}

func TestResolver_NoCredentials(t *testing.T) {
	resolver, _, _, _ := setupResolver(t)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	assert.Nil(t, resolver.Resolve(req))
}

func TestResolver_JWT(t *testing.T) {
	resolver, store, _, jwtService := setupResolver(t)
	user := createAuthTestUser(t, store, "jwt@example.com", true, false)

	tokenString, _, err := jwtService.Issue(user.ID, user.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)

	resolved := resolver.Resolve(req)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, user.Email, resolved.Email)
}

func TestResolver_JWT_InactiveUser(t *testing.T) {
	resolver, store, _, jwtService := setupResolver(t)
	user := createAuthTestUser(t, store, "inactive@example.com", false, false)

	tokenString, _, err := jwtService.Issue(user.ID, user.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)

	assert.Nil(t, resolver.Resolve(req))
}

func TestResolver_JWT_Garbage(t *testing.T) {
	resolver, _, _, _ := setupResolver(t)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	assert.Nil(t, resolver.Resolve(req))
}

func TestResolver_APIToken(t *testing.T) {
	resolver, store, _, _ := setupResolver(t)
	user := createAuthTestUser(t, store, "api@example.com", true, false)
	secret, token := createAuthTestToken(t, store, user.ID, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.Header.Set("Authorization", "Bearer "+secret)

	resolved := resolver.Resolve(req)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)

	// Успешная проверка увеличивает счетчик использований
	stored, err := store.GetUserToken(context.Background(), token.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)
	assert.NotNil(t, stored.LastUsedAt)
}

func TestResolver_APIToken_Inactive(t *testing.T) {
	resolver, store, _, _ := setupResolver(t)
	user := createAuthTestUser(t, store, "revoked@example.com", true, false)
	secret, _ := createAuthTestToken(t, store, user.ID, false, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.Header.Set("Authorization", "Bearer "+secret)

	assert.Nil(t, resolver.Resolve(req))
}

func TestResolver_APIToken_Expired(t *testing.T) {
	resolver, store, _, _ := setupResolver(t)
	user := createAuthTestUser(t, store, "expired@example.com", true, false)

	expired := time.Now().Add(-time.Hour)
	secret, _ := createAuthTestToken(t, store, user.ID, true, &expired)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.Header.Set("Authorization", "Bearer "+secret)

	assert.Nil(t, resolver.Resolve(req))
}

func TestResolver_APIToken_UnknownSecret(t *testing.T) {
	resolver, store, _, _ := setupResolver(t)
	createAuthTestUser(t, store, "someone@example.com", true, false)

	secret, _, err := auth.GenerateAPISecret()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.Header.Set("Authorization", "Bearer "+secret)

	assert.Nil(t, resolver.Resolve(req))
}

func TestResolver_SessionCookie(t *testing.T) {
	resolver, store, sessions, _ := setupResolver(t)
	user := createAuthTestUser(t, store, "cookie@example.com", true, false)

	// Создаем сессию и переносим cookie в следующий запрос
	rec := httptest.NewRecorder()
	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sessions.SetUserID(rec, seed, user.ID))

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}

	resolved := resolver.Resolve(req)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestRequireAuth(t *testing.T) {
	resolver, store, _, jwtService := setupResolver(t)
	user := createAuthTestUser(t, store, "require@example.com", true, false)

	var gotUser *models.User
	handler := resolver.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Без учетных данных
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tokens", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, gotUser)

	// С валидным JWT
	tokenString, _, err := jwtService.Issue(user.ID, user.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/tokens", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotUser)
	assert.Equal(t, user.ID, gotUser.ID)
}

func TestRequireAdmin(t *testing.T) {
	resolver, store, _, jwtService := setupResolver(t)
	regular := createAuthTestUser(t, store, "user@example.com", true, false)
	admin := createAuthTestUser(t, store, "admin@example.com", true, true)

	handler := resolver.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
	}{
		{name: "anonymous", user: nil, wantStatus: http.StatusUnauthorized},
		{name: "regular user", user: regular, wantStatus: http.StatusForbidden},
		{name: "admin", user: admin, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tt.user != nil {
				tokenString, _, err := jwtService.Issue(tt.user.ID, tt.user.Email)
				require.NoError(t, err)
				req.Header.Set("Authorization", "Bearer "+tokenString)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	resolver, store, _, jwtService := setupResolver(t)
	user := createAuthTestUser(t, store, "optional@example.com", true, false)

	var gotUser *models.User
	handler := resolver.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Аноним проходит с nil пользователем
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prompts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, gotUser)

	// Аутентифицированный проходит с пользователем в контексте
	tokenString, _, err := jwtService.Issue(user.ID, user.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotUser)
	assert.Equal(t, user.ID, gotUser.ID)
}
