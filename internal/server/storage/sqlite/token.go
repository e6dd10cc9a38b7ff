package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/storage"
)

const tokenColumns = `id, name, description, token_hash, user_id, is_active,
	permissions, expires_at, usage_count, last_used_at, created_at, updated_at`

// CreateToken stores a new API token record
func (s *Storage) CreateToken(ctx context.Context, token *models.APIToken) error {
	permissions, err := encodeStrings(token.Permissions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		token.ID,
		token.Name,
		token.Description,
		token.TokenHash,
		token.UserID,
		token.IsActive,
		permissions,
		token.ExpiresAt,
		token.UsageCount,
		token.LastUsedAt,
		token.CreatedAt,
		token.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}

	return nil
}

// GetTokenByHash retrieves an API token by the hash of its secret
func (s *Storage) GetTokenByHash(ctx context.Context, tokenHash string) (*models.APIToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE token_hash = ?`
	return s.scanToken(s.db.QueryRowContext(ctx, query, tokenHash))
}

// GetUserToken retrieves a token by id scoped to its owner.
// Чужой токен неотличим от несуществующего: фильтр по id И user_id.
func (s *Storage) GetUserToken(ctx context.Context, tokenID, userID string) (*models.APIToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = ? AND user_id = ?`
	return s.scanToken(s.db.QueryRowContext(ctx, query, tokenID, userID))
}

// ListUserTokens retrieves all tokens owned by the user
func (s *Storage) ListUserTokens(ctx context.Context, userID string) ([]*models.APIToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tokens: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*models.APIToken

	for rows.Next() {
		token, err := scanTokenRow(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tokens, nil
}

// UpdateUserToken updates token metadata, matching by both id and owner
func (s *Storage) UpdateUserToken(ctx context.Context, token *models.APIToken) error {
	permissions, err := encodeStrings(token.Permissions)
	if err != nil {
		return err
	}

	query := `
		UPDATE tokens
		SET name = ?, description = ?, is_active = ?, permissions = ?,
		    expires_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		token.Name,
		token.Description,
		token.IsActive,
		permissions,
		token.ExpiresAt,
		token.UpdatedAt,
		token.ID,
		token.UserID,
	)

	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	return requireRowsAffected(result, storage.ErrTokenNotFound)
}

// DeleteUserToken deletes a token by id scoped to its owner
func (s *Storage) DeleteUserToken(ctx context.Context, tokenID, userID string) error {
	query := `DELETE FROM tokens WHERE id = ? AND user_id = ?`

	result, err := s.db.ExecContext(ctx, query, tokenID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	return requireRowsAffected(result, storage.ErrTokenNotFound)
}

// RecordTokenUsage atomically increments the usage counter and
// sets the last-used timestamp
func (s *Storage) RecordTokenUsage(ctx context.Context, tokenID string) error {
	query := `
		UPDATE tokens
		SET usage_count = usage_count + 1, last_used_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, time.Now(), tokenID)
	if err != nil {
		return fmt.Errorf("failed to record token usage: %w", err)
	}

	return requireRowsAffected(result, storage.ErrTokenNotFound)
}

// CountTokens returns the total number of API tokens
func (s *Storage) CountTokens(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tokens`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return count, nil
}

func (s *Storage) scanToken(row *sql.Row) (*models.APIToken, error) {
	token, err := scanTokenRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, err
	}
	return token, nil
}

func scanTokenRow(row scanner) (*models.APIToken, error) {
	token := &models.APIToken{}
	var permissions string
	var expiresAt, lastUsedAt sql.NullTime

	err := row.Scan(
		&token.ID,
		&token.Name,
		&token.Description,
		&token.TokenHash,
		&token.UserID,
		&token.IsActive,
		&permissions,
		&expiresAt,
		&token.UsageCount,
		&lastUsedAt,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan token: %w", err)
	}

	token.Permissions, err = decodeStrings(permissions)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		token.ExpiresAt = &expiresAt.Time
	}
	if lastUsedAt.Valid {
		token.LastUsedAt = &lastUsedAt.Time
	}

	return token, nil
}
