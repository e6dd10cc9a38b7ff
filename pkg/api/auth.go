package api

// RegisterRequest представляет запрос на регистрацию по email и паролю
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest представляет запрос на вход по email и паролю
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest представляет запрос на смену пароля
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserInfo представляет публичные данные пользователя
type UserInfo struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	AuthProvider   string `json:"auth_provider"`
	IsActive       bool   `json:"is_active"`
	IsAdmin        bool   `json:"is_admin"`
}

// AuthResponse представляет ответ на успешную регистрацию или вход
type AuthResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
	Token   string   `json:"token"` // сессионный JWT
}

// MessageResponse представляет ответ без полезной нагрузки
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
