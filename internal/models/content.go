package models

import "time"

// Prompt представляет текстовый промпт пользователя
type Prompt struct {
	ID              string    `json:"id"`          // UUID промпта
	Title           string    `json:"title"`       // заголовок
	Description     string    `json:"description"` // описание
	Content         string    `json:"content"`     // текст промпта
	Category        string    `json:"category"`    // категория
	Tags            []string  `json:"tags"`        // свободные теги
	IsPublic        bool      `json:"is_public"`   // видимость для всех
	UserID          string    `json:"user_id"`     // владелец
	Variables       []string  `json:"variables"`   // извлеченные {{переменные}} шаблона
	WordCount       int       `json:"word_count"`
	CharCount       int       `json:"char_count"`
	EstimatedTokens int       `json:"estimated_tokens"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// VisibleTo сообщает, виден ли промпт запрашивающему.
// Публичные промпты видны всем, приватные — только владельцу.
func (p *Prompt) VisibleTo(u *User) bool {
	if p.IsPublic {
		return true
	}
	return u != nil && p.UserID == u.ID
}

// MutableBy сообщает, может ли запрашивающий изменять промпт.
// Администратор может править чужие промпты только если они публичные:
// приватный контент других пользователей недоступен даже админу.
func (p *Prompt) MutableBy(u *User) bool {
	if u == nil {
		return false
	}
	if p.UserID == u.ID {
		return true
	}
	return u.IsAdmin && p.IsPublic
}

// Article представляет производный документ, опционально ссылающийся
// на исходный промпт. При удалении промпта ссылка обнуляется.
type Article struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	PromptID    string         `json:"prompt_id,omitempty"`    // ссылка на исходный промпт, может быть пустой
	PromptTitle string         `json:"prompt_title,omitempty"` // заголовок исходного промпта
	UserID      string         `json:"user_id"`
	WordCount   int            `json:"word_count"`
	CharCount   int            `json:"char_count"`
	Metadata    map[string]any `json:"metadata"` // произвольные клиентские атрибуты
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
