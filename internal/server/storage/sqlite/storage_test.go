package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/prombank/prompthouse/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage, email string) *models.User {
	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "hash123",
		AuthProvider: models.AuthProviderLocal,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	require.NoError(t, s.CreateUser(ctx, user))
	return user
}

func timePtr(t time.Time) *time.Time {
	return &t
}
