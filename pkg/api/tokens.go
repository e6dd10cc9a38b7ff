package api

import (
	"time"

	"github.com/prombank/prompthouse/internal/models"
)

// CreateTokenRequest представляет запрос на выпуск API токена
type CreateTokenRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Permissions []string   `json:"permissions"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// UpdateTokenRequest представляет запрос на изменение API токена.
// Указатели отличают отсутствующие поля от пустых значений.
type UpdateTokenRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	IsActive    *bool      `json:"is_active"`
	Permissions []string   `json:"permissions"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// CreateTokenResponse содержит созданный токен и сырой секрет.
// Секрет возвращается только здесь и только один раз.
type CreateTokenResponse struct {
	Token    string           `json:"token"` // сырой секрет, больше не восстановим
	APIToken *models.APIToken `json:"api_token"`
}

// ListTokensResponse содержит токены владельца
type ListTokensResponse struct {
	Tokens []*models.APIToken `json:"tokens"`
	Total  int                `json:"total"`
}
