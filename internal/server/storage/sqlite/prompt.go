package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/storage"
)

const promptColumns = `id, title, description, content, category, tags, is_public,
	user_id, variables, word_count, char_count, estimated_tokens, created_at, updated_at`

// CreatePrompt stores a new prompt
func (s *Storage) CreatePrompt(ctx context.Context, prompt *models.Prompt) error {
	tags, err := encodeStrings(prompt.Tags)
	if err != nil {
		return err
	}
	variables, err := encodeStrings(prompt.Variables)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO prompts (` + promptColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		prompt.ID,
		prompt.Title,
		prompt.Description,
		prompt.Content,
		prompt.Category,
		tags,
		prompt.IsPublic,
		prompt.UserID,
		variables,
		prompt.WordCount,
		prompt.CharCount,
		prompt.EstimatedTokens,
		prompt.CreatedAt,
		prompt.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert prompt: %w", err)
	}

	return nil
}

// GetPromptByID retrieves a prompt by id regardless of visibility
func (s *Storage) GetPromptByID(ctx context.Context, promptID string) (*models.Prompt, error) {
	query := `SELECT ` + promptColumns + ` FROM prompts WHERE id = ?`

	prompt, err := scanPromptRow(s.db.QueryRowContext(ctx, query, promptID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPromptNotFound
		}
		return nil, err
	}

	return prompt, nil
}

// ListVisiblePrompts returns prompts that are public or owned by requesterID
func (s *Storage) ListVisiblePrompts(ctx context.Context, requesterID string, filter storage.PromptFilter) ([]*models.Prompt, error) {
	query := `
		SELECT ` + promptColumns + `
		FROM prompts
		WHERE (is_public = 1 OR user_id = ?)
	`
	args := []any{requesterID}

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Query != "" {
		query += ` AND (title LIKE ? OR content LIKE ?)`
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern)
	}

	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var prompts []*models.Prompt

	for rows.Next() {
		prompt, err := scanPromptRow(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, prompt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return prompts, nil
}

// UpdatePrompt updates a prompt's content fields
func (s *Storage) UpdatePrompt(ctx context.Context, prompt *models.Prompt) error {
	tags, err := encodeStrings(prompt.Tags)
	if err != nil {
		return err
	}
	variables, err := encodeStrings(prompt.Variables)
	if err != nil {
		return err
	}

	query := `
		UPDATE prompts
		SET title = ?, description = ?, content = ?, category = ?, tags = ?,
		    is_public = ?, variables = ?, word_count = ?, char_count = ?,
		    estimated_tokens = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		prompt.Title,
		prompt.Description,
		prompt.Content,
		prompt.Category,
		tags,
		prompt.IsPublic,
		variables,
		prompt.WordCount,
		prompt.CharCount,
		prompt.EstimatedTokens,
		prompt.UpdatedAt,
		prompt.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update prompt: %w", err)
	}

	return requireRowsAffected(result, storage.ErrPromptNotFound)
}

// DeletePrompt deletes a prompt and nulls provenance links of derived
// articles in a single transaction: либо обе записи меняются, либо ни одна
func (s *Storage) DeletePrompt(ctx context.Context, promptID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Обнуляем ссылки статей на удаляемый промпт
	if _, err := tx.ExecContext(ctx,
		`UPDATE articles SET prompt_id = NULL WHERE prompt_id = ?`, promptID,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear article references: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, promptID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete prompt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		_ = tx.Rollback()
		return storage.ErrPromptNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CountPrompts returns the total number of prompts
func (s *Storage) CountPrompts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prompts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count prompts: %w", err)
	}
	return count, nil
}

func scanPromptRow(row scanner) (*models.Prompt, error) {
	prompt := &models.Prompt{}
	var tags, variables string

	err := row.Scan(
		&prompt.ID,
		&prompt.Title,
		&prompt.Description,
		&prompt.Content,
		&prompt.Category,
		&tags,
		&prompt.IsPublic,
		&prompt.UserID,
		&variables,
		&prompt.WordCount,
		&prompt.CharCount,
		&prompt.EstimatedTokens,
		&prompt.CreatedAt,
		&prompt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan prompt: %w", err)
	}

	if prompt.Tags, err = decodeStrings(tags); err != nil {
		return nil, err
	}
	if prompt.Variables, err = decodeStrings(variables); err != nil {
		return nil, err
	}

	return prompt, nil
}
