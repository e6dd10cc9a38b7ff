package storage

import (
	"context"
	"time"

	"github.com/prombank/prompthouse/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if the email is already taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByGoogleIDOrEmail retrieves a user matching either the
	// external identity id or the email, preferring the identity match.
	// Returns ErrUserNotFound if neither matches.
	GetUserByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.User, error)

	// UpdateUser updates user profile and identity fields
	// Returns ErrUserNotFound if user doesn't exist
	UpdateUser(ctx context.Context, user *models.User) error

	// UpdatePassword replaces the stored password hash
	// Returns ErrUserNotFound if user doesn't exist
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// UpdateLastLogin updates the last login timestamp
	UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error

	// ListUsers returns all users ordered by creation time (admin diagnostics)
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CountUsers returns the total number of users
	CountUsers(ctx context.Context) (int, error)
}
