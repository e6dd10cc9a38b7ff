package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/storage"
)

const articleColumns = `id, title, content, category, tags, prompt_id, prompt_title,
	user_id, word_count, char_count, metadata, created_at, updated_at`

// CreateArticle stores a new article
func (s *Storage) CreateArticle(ctx context.Context, article *models.Article) error {
	tags, err := encodeStrings(article.Tags)
	if err != nil {
		return err
	}

	metadata, err := encodeMetadata(article.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		article.ID,
		article.Title,
		article.Content,
		article.Category,
		tags,
		nullString(article.PromptID),
		article.PromptTitle,
		article.UserID,
		article.WordCount,
		article.CharCount,
		metadata,
		article.CreatedAt,
		article.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

// GetUserArticle retrieves an article by id scoped to its owner
func (s *Storage) GetUserArticle(ctx context.Context, articleID, userID string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = ? AND user_id = ?`

	article, err := scanArticleRow(s.db.QueryRowContext(ctx, query, articleID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrArticleNotFound
		}
		return nil, err
	}

	return article, nil
}

// ListUserArticles retrieves all articles owned by the user
func (s *Storage) ListUserArticles(ctx context.Context, userID string) ([]*models.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user articles: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var articles []*models.Article

	for rows.Next() {
		article, err := scanArticleRow(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return articles, nil
}

// UpdateUserArticle updates an article, matching by both id and owner
func (s *Storage) UpdateUserArticle(ctx context.Context, article *models.Article) error {
	tags, err := encodeStrings(article.Tags)
	if err != nil {
		return err
	}

	metadata, err := encodeMetadata(article.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE articles
		SET title = ?, content = ?, category = ?, tags = ?, prompt_id = ?,
		    prompt_title = ?, word_count = ?, char_count = ?, metadata = ?,
		    updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		article.Title,
		article.Content,
		article.Category,
		tags,
		nullString(article.PromptID),
		article.PromptTitle,
		article.WordCount,
		article.CharCount,
		metadata,
		article.UpdatedAt,
		article.ID,
		article.UserID,
	)

	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}

	return requireRowsAffected(result, storage.ErrArticleNotFound)
}

// DeleteUserArticle deletes an article by id scoped to its owner
func (s *Storage) DeleteUserArticle(ctx context.Context, articleID, userID string) error {
	query := `DELETE FROM articles WHERE id = ? AND user_id = ?`

	result, err := s.db.ExecContext(ctx, query, articleID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	return requireRowsAffected(result, storage.ErrArticleNotFound)
}

// CountArticles returns the total number of articles
func (s *Storage) CountArticles(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func scanArticleRow(row scanner) (*models.Article, error) {
	article := &models.Article{}
	var tags, metadata string
	var promptID sql.NullString

	err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.Category,
		&tags,
		&promptID,
		&article.PromptTitle,
		&article.UserID,
		&article.WordCount,
		&article.CharCount,
		&metadata,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}

	article.PromptID = promptID.String
	if article.Tags, err = decodeStrings(tags); err != nil {
		return nil, err
	}
	if article.Metadata, err = decodeMetadata(metadata); err != nil {
		return nil, err
	}

	return article, nil
}
