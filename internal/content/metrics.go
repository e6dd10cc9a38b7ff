package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// VariablePattern извлекает плейсхолдеры вида {{name}} из текста промпта
var VariablePattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// Metrics содержит производные метрики текста
type Metrics struct {
	WordCount       int `json:"word_count"`
	CharCount       int `json:"char_count"`
	EstimatedTokens int `json:"estimated_tokens"`
}

// ComputeMetrics подсчитывает слова, символы и примерное число токенов.
// Оценка токенов: примерно 4 символа на токен.
func ComputeMetrics(text string) Metrics {
	charCount := utf8.RuneCountInString(text)

	return Metrics{
		WordCount:       len(strings.Fields(text)),
		CharCount:       charCount,
		EstimatedTokens: (charCount + 3) / 4,
	}
}

// ExtractVariables возвращает уникальные имена {{переменных}} шаблона
// в порядке первого появления
func ExtractVariables(text string) []string {
	matches := VariablePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var variables []string

	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		variables = append(variables, name)
	}

	return variables
}
