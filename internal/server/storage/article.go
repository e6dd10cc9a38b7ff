package storage

import (
	"context"

	"github.com/prombank/prompthouse/internal/models"
)

// ArticleStorage defines interface for article persistence.
// Articles carry no visibility flag: all operations are owner-scoped.
type ArticleStorage interface {
	// CreateArticle stores a new article
	CreateArticle(ctx context.Context, article *models.Article) error

	// GetUserArticle retrieves an article by id scoped to its owner
	// Returns ErrArticleNotFound for missing ids and foreign articles alike
	GetUserArticle(ctx context.Context, articleID, userID string) (*models.Article, error)

	// ListUserArticles retrieves all articles owned by the user, newest first
	ListUserArticles(ctx context.Context, userID string) ([]*models.Article, error)

	// UpdateUserArticle updates an article, matching by both id and owner
	// Returns ErrArticleNotFound for missing ids and foreign articles alike
	UpdateUserArticle(ctx context.Context, article *models.Article) error

	// DeleteUserArticle deletes an article by id scoped to its owner
	// Returns ErrArticleNotFound for missing ids and foreign articles alike
	DeleteUserArticle(ctx context.Context, articleID, userID string) error

	// CountArticles returns the total number of articles
	CountArticles(ctx context.Context) (int, error)
}
