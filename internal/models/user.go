package models

import "time"

// Способы аутентификации пользователя
const (
	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)

// User представляет пользователя в системе
type User struct {
	ID             string     `json:"id"`              // UUID пользователя
	Email          string     `json:"email"`           // уникальный email
	PasswordHash   string     `json:"-"`               // bcrypt хеш пароля (пустой для OAuth-аккаунтов)
	GoogleID       string     `json:"-"`               // ID внешнего провайдера (пустой для локальных аккаунтов)
	FirstName      string     `json:"first_name"`      // имя
	LastName       string     `json:"last_name"`       // фамилия
	ProfilePicture string     `json:"profile_picture"` // URL аватара
	AuthProvider   string     `json:"auth_provider"`   // local или google
	IsActive       bool       `json:"is_active"`       // активен ли аккаунт
	IsAdmin        bool       `json:"is_admin"`        // флаг администратора
	CreatedAt      time.Time  `json:"created_at"`      // время создания
	UpdatedAt      time.Time  `json:"updated_at"`      // время последнего обновления
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// HasPassword сообщает, доступен ли вход по паролю
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// APIToken представляет долгоживущий API токен пользователя.
// Сырой секрет возвращается клиенту ровно один раз при создании,
// в БД хранится только его SHA-256 хеш.
type APIToken struct {
	ID          string     `json:"id"`          // UUID токена
	Name        string     `json:"name"`        // человекочитаемое имя
	Description string     `json:"description"` // описание
	TokenHash   string     `json:"-"`           // SHA-256 хеш секрета, наружу не отдается
	UserID      string     `json:"user_id"`     // владелец токена
	IsActive    bool       `json:"is_active"`   // активен ли токен
	Permissions []string   `json:"permissions"` // например ["read","write"]
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UsageCount  int        `json:"usage_count"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Expired сообщает, истек ли срок действия токена на момент now
func (t *APIToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}
