package api

import "github.com/prombank/prompthouse/internal/models"

// PromptRequest представляет запрос на создание или обновление промпта
type PromptRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublic    bool     `json:"is_public"`
}

// ListPromptsResponse содержит видимые запрашивающему промпты
type ListPromptsResponse struct {
	Prompts []*models.Prompt `json:"prompts"`
	Total   int              `json:"total"`
}

// ImportPromptsRequest представляет запрос на импорт промптов.
// Format: json, csv или markdown; Data — сырое содержимое файла.
type ImportPromptsRequest struct {
	Format string `json:"format"`
	Data   string `json:"data"`
}

// ImportPromptsResponse содержит результат импорта
type ImportPromptsResponse struct {
	Imported int              `json:"imported"`
	Prompts  []*models.Prompt `json:"prompts"`
}

// ArticleRequest представляет запрос на создание или обновление статьи
type ArticleRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Category string         `json:"category"`
	Tags     []string       `json:"tags"`
	PromptID string         `json:"prompt_id"`
	Metadata map[string]any `json:"metadata"`
}

// ListArticlesResponse содержит статьи владельца
type ListArticlesResponse struct {
	Articles []*models.Article `json:"articles"`
	Total    int               `json:"total"`
}

// AdminStatsResponse содержит сводные счетчики для диагностики
type AdminStatsResponse struct {
	Users    int `json:"users"`
	Prompts  int `json:"prompts"`
	Tokens   int `json:"tokens"`
	Articles int `json:"articles"`
}

// AdminUsersResponse содержит всех пользователей (только для админов)
type AdminUsersResponse struct {
	Users []*models.User `json:"users"`
	Total int            `json:"total"`
}
