package storage

import (
	"context"

	"github.com/prombank/prompthouse/internal/models"
)

// TokenStorage defines interface for API token persistence.
// Every owner-scoped operation filters by both token id and user id:
// a token id alone never authorizes anything.
type TokenStorage interface {
	// CreateToken stores a new API token record (hash only, never the secret)
	CreateToken(ctx context.Context, token *models.APIToken) error

	// GetTokenByHash retrieves an API token by the hash of its secret
	// Returns ErrTokenNotFound if no token matches
	GetTokenByHash(ctx context.Context, tokenHash string) (*models.APIToken, error)

	// GetUserToken retrieves a token by id scoped to its owner
	// Returns ErrTokenNotFound for missing ids and foreign tokens alike
	GetUserToken(ctx context.Context, tokenID, userID string) (*models.APIToken, error)

	// ListUserTokens retrieves all tokens owned by the user
	ListUserTokens(ctx context.Context, userID string) ([]*models.APIToken, error)

	// UpdateUserToken updates name/description/permissions/active flag,
	// matching by both id and owner
	// Returns ErrTokenNotFound for missing ids and foreign tokens alike
	UpdateUserToken(ctx context.Context, token *models.APIToken) error

	// DeleteUserToken deletes a token by id scoped to its owner
	// Returns ErrTokenNotFound for missing ids and foreign tokens alike
	DeleteUserToken(ctx context.Context, tokenID, userID string) error

	// RecordTokenUsage atomically increments the usage counter and
	// sets the last-used timestamp after a successful verification
	RecordTokenUsage(ctx context.Context, tokenID string) error

	// CountTokens returns the total number of API tokens
	CountTokens(ctx context.Context) (int, error)
}
