package content

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
)

// Поддерживаемые форматы импорта промптов
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// PromptInput представляет один промпт из импортируемого файла
type PromptInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublic    bool     `json:"is_public"`
}

// ParseImport разбирает содержимое импортируемого файла в список промптов.
// У каждого промпта обязательны title и content.
func ParseImport(format, data string) ([]PromptInput, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return parseJSON(data)
	case FormatCSV:
		return parseCSV(data)
	case FormatMarkdown:
		return parseMarkdown(data)
	default:
		return nil, fmt.Errorf("unsupported import format: %q", format)
	}
}

// parseJSON разбирает JSON массив объектов промптов
func parseJSON(data string) ([]PromptInput, error) {
	var inputs []PromptInput
	if err := json.Unmarshal([]byte(data), &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse json import: %w", err)
	}

	for i := range inputs {
		inputs[i].Title = strings.TrimSpace(inputs[i].Title)
		if err := validateInput(inputs[i]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	return inputs, nil
}

// parseCSV разбирает CSV с заголовком.
// Распознаются колонки title, description, content, category, tags;
// теги внутри ячейки разделяются точкой с запятой.
func parseCSV(data string) ([]PromptInput, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv import: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("csv import requires a header row and at least one record")
	}

	// Позиции колонок по заголовку
	columns := make(map[string]int, len(records[0]))
	for idx, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}

	if _, ok := columns["title"]; !ok {
		return nil, fmt.Errorf("csv import is missing required column %q", "title")
	}
	if _, ok := columns["content"]; !ok {
		return nil, fmt.Errorf("csv import is missing required column %q", "content")
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	inputs := make([]PromptInput, 0, len(records)-1)
	for i, record := range records[1:] {
		input := PromptInput{
			Title:       field(record, "title"),
			Description: field(record, "description"),
			Content:     field(record, "content"),
			Category:    field(record, "category"),
		}

		if tags := field(record, "tags"); tags != "" {
			for _, tag := range strings.Split(tags, ";") {
				if tag = strings.TrimSpace(tag); tag != "" {
					input.Tags = append(input.Tags, tag)
				}
			}
		}

		if err := validateInput(input); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}

		inputs = append(inputs, input)
	}

	return inputs, nil
}

// parseMarkdown разбирает markdown документ: каждый заголовок первого
// или второго уровня начинает новый промпт, текст до следующего
// заголовка становится его содержимым
func parseMarkdown(data string) ([]PromptInput, error) {
	var inputs []PromptInput
	var current *PromptInput
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(body.String())
		if current.Content != "" {
			inputs = append(inputs, *current)
		}
		current = nil
		body.Reset()
	}

	for _, line := range strings.Split(data, "\n") {
		trimmed := strings.TrimSpace(line)

		var title string
		switch {
		case strings.HasPrefix(trimmed, "## "):
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
		case strings.HasPrefix(trimmed, "# "):
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}

		if title != "" {
			flush()
			current = &PromptInput{Title: title}
			continue
		}

		if current != nil {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	flush()

	if len(inputs) == 0 {
		return nil, fmt.Errorf("markdown import contains no prompts")
	}

	return inputs, nil
}

func validateInput(input PromptInput) error {
	if input.Title == "" {
		return fmt.Errorf("prompt title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return fmt.Errorf("prompt content is required")
	}
	return nil
}
