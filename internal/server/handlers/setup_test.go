package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prombank/prompthouse/internal/auth"
	"github.com/prombank/prompthouse/internal/server/middleware"
	"github.com/prombank/prompthouse/internal/server/session"
	"github.com/prombank/prompthouse/internal/server/storage/sqlite"
	"github.com/prombank/prompthouse/pkg/api"
)

// testEnv поднимает полный HTTP стек над in-memory БД
type testEnv struct {
	router http.Handler
	store  *sqlite.Storage
	jwt    *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService := auth.NewTokenService("test-jwt-secret", time.Hour)
	sessions := session.NewManager("test-session-secret", 3600)
	limiter := middleware.NewRateLimiter(1000, time.Minute, logger)
	t.Cleanup(limiter.Stop)

	router := NewRouter(RouterConfig{
		Logger:            logger,
		Users:             store,
		Tokens:            store,
		Prompts:           store,
		Articles:          store,
		DB:                store,
		Sessions:          sessions,
		JWT:               jwtService,
		Provider:          nil, // OAuth не настроен в тестовом окружении
		CredentialLimiter: limiter,
	})

	return &testEnv{
		router: router,
		store:  store,
		jwt:    jwtService,
	}
}

// do выполняет запрос с опциональным телом и bearer credential
func (e *testEnv) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	return out
}

// registerUser регистрирует пользователя и возвращает его сессионный JWT
func (e *testEnv) registerUser(t *testing.T, email, password string) (api.UserInfo, string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[api.AuthResponse](t, rec)
	require.NotEmpty(t, resp.Token)

	return resp.User, resp.Token
}

// promoteToAdmin выставляет флаг администратора напрямую в БД
func (e *testEnv) promoteToAdmin(t *testing.T, userID string) {
	t.Helper()

	_, err := e.store.DB().Exec(`UPDATE users SET is_admin = 1 WHERE id = ?`, userID)
	require.NoError(t, err)
}
