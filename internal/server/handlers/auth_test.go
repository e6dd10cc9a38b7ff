package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/pkg/api"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email:     "new@example.com",
		Password:  "Passw0rd",
		FirstName: "  Ada  ",
		LastName:  "Lovelace",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[api.AuthResponse](t, rec)

	assert.True(t, resp.Success)
	assert.Equal(t, "new@example.com", resp.User.Email)
	// Имена сохраняются обрезанными
	assert.Equal(t, "Ada", resp.User.FirstName)
	assert.Equal(t, "local", resp.User.AuthProvider)
	assert.True(t, resp.User.IsActive)
	assert.False(t, resp.User.IsAdmin)
	assert.NotEmpty(t, resp.Token)

	// Хеш пароля не попадает в ответ
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "taken@example.com", "Passw0rd")

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email:     "taken@example.com",
		Password:  "Passw0rd",
		FirstName: "Another",
		LastName:  "Person",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  api.RegisterRequest
	}{
		{
			name: "invalid email",
			req:  api.RegisterRequest{Email: "not-an-email", Password: "Passw0rd", FirstName: "A", LastName: "B"},
		},
		{
			name: "short password",
			req:  api.RegisterRequest{Email: "a@x.com", Password: "Pw1", FirstName: "A", LastName: "B"},
		},
		{
			name: "password without digit",
			req:  api.RegisterRequest{Email: "a@x.com", Password: "Password", FirstName: "A", LastName: "B"},
		},
		{
			name: "password without letter",
			req:  api.RegisterRequest{Email: "a@x.com", Password: "12345678", FirstName: "A", LastName: "B"},
		},
		{
			name: "missing first name",
			req:  api.RegisterRequest{Email: "a@x.com", Password: "Passw0rd", FirstName: "  ", LastName: "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/register", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLogin_WrongThenRightPassword(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "a@x.com", "Passw0rd")

	// Неверный пароль
	rec := env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email:    "a@x.com",
		Password: "WrongPass1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Верный пароль
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email:    "a@x.com",
		Password: "Passw0rd",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[api.AuthResponse](t, rec)
	require.NotEmpty(t, resp.Token)

	// Выданный токен действительно аутентифицирует
	me := env.do(t, http.MethodGet, "/api/auth/me", resp.Token, nil)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestLogin_UnknownEmailSameMessage(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "known@example.com", "Passw0rd")

	unknownRec := env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email:    "unknown@example.com",
		Password: "Passw0rd",
	})
	wrongRec := env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email:    "known@example.com",
		Password: "WrongPass1",
	})

	// Несуществующий email и неверный пароль неотличимы
	assert.Equal(t, http.StatusUnauthorized, unknownRec.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongRec.Code)
	assert.JSONEq(t, wrongRec.Body.String(), unknownRec.Body.String())
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.registerUser(t, "pw@example.com", "Passw0rd")

	// Неверный текущий пароль
	rec := env.do(t, http.MethodPost, "/api/auth/change-password", token, api.ChangePasswordRequest{
		CurrentPassword: "NotThePass1",
		NewPassword:     "NewPassw0rd",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Новый пароль не проходит политику
	rec = env.do(t, http.MethodPost, "/api/auth/change-password", token, api.ChangePasswordRequest{
		CurrentPassword: "Passw0rd",
		NewPassword:     "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Успешная смена
	rec = env.do(t, http.MethodPost, "/api/auth/change-password", token, api.ChangePasswordRequest{
		CurrentPassword: "Passw0rd",
		NewPassword:     "NewPassw0rd",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Старый пароль больше не работает, новый работает
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email:    "pw@example.com",
		Password: "Passw0rd",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email:    "pw@example.com",
		Password: "NewPassw0rd",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Аккаунту без локального пароля (вход через провайдера)
// смена пароля недоступна
func TestChangePassword_OAuthOnlyAccount(t *testing.T) {
	env := newTestEnv(t)

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        "google-only@example.com",
		GoogleID:     "google-uid-9",
		AuthProvider: models.AuthProviderGoogle,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, env.store.CreateUser(context.Background(), user))

	token, _, err := env.jwt.Issue(user.ID, user.Email)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/auth/change-password", token, api.ChangePasswordRequest{
		CurrentPassword: "irrelevant",
		NewPassword:     "NewPassw0rd",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not available for this account")
}

func TestMe_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.registerUser(t, "me@example.com", "Passw0rd")

	rec := env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeBody[api.UserInfo](t, rec)
	assert.Equal(t, user.ID, info.ID)
	assert.Equal(t, "me@example.com", info.Email)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "out@example.com", "Passw0rd")

	rec := env.do(t, http.MethodGet, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[api.MessageResponse](t, rec)
	assert.True(t, resp.Success)
}
