package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/storage"
)

func createTestArticle(t *testing.T, ctx context.Context, s *Storage, userID, title string) *models.Article {
	now := time.Now()
	article := &models.Article{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   "article body",
		Tags:      []string{"draft"},
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	require.NoError(t, s.CreateArticle(ctx, article))
	return article
}

func TestArticleStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "a@x.com")
	article := createTestArticle(t, ctx, s, user.ID, "my article")

	got, err := s.GetUserArticle(ctx, article.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "my article", got.Title)
	assert.Equal(t, []string{"draft"}, got.Tags)
	assert.Empty(t, got.PromptID)
}

func TestArticleStorage_MetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "a@x.com")
	now := time.Now()
	article := &models.Article{
		ID:        uuid.New().String(),
		Title:     "annotated",
		Content:   "body",
		UserID:    user.ID,
		Metadata:  map[string]any{"source": "editor", "revision": float64(3)},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateArticle(ctx, article))

	got, err := s.GetUserArticle(ctx, article.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"source": "editor", "revision": float64(3)}, got.Metadata)

	// Без метаданных возвращается пустой map, не nil
	plain := createTestArticle(t, ctx, s, user.ID, "plain")
	got, err = s.GetUserArticle(ctx, plain.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, got.Metadata)
}

func TestArticleStorage_OwnershipScoped(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userA := createTestUser(t, ctx, s, "a@x.com")
	userB := createTestUser(t, ctx, s, "b@x.com")
	article := createTestArticle(t, ctx, s, userA.ID, "private article")

	// Чужая статья неотличима от несуществующей
	_, err := s.GetUserArticle(ctx, article.ID, userB.ID)
	assert.ErrorIs(t, err, storage.ErrArticleNotFound)

	err = s.DeleteUserArticle(ctx, article.ID, userB.ID)
	assert.ErrorIs(t, err, storage.ErrArticleNotFound)

	foreign := *article
	foreign.UserID = userB.ID
	err = s.UpdateUserArticle(ctx, &foreign)
	assert.ErrorIs(t, err, storage.ErrArticleNotFound)
}

func TestArticleStorage_ListUserArticles(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userA := createTestUser(t, ctx, s, "a@x.com")
	userB := createTestUser(t, ctx, s, "b@x.com")
	createTestArticle(t, ctx, s, userA.ID, "one")
	createTestArticle(t, ctx, s, userA.ID, "two")
	createTestArticle(t, ctx, s, userB.ID, "other")

	articles, err := s.ListUserArticles(ctx, userA.ID)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestArticleStorage_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "a@x.com")
	article := createTestArticle(t, ctx, s, user.ID, "old")

	article.Title = "new"
	article.UpdatedAt = time.Now()
	require.NoError(t, s.UpdateUserArticle(ctx, article))

	got, err := s.GetUserArticle(ctx, article.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)

	require.NoError(t, s.DeleteUserArticle(ctx, article.ID, user.ID))
	_, err = s.GetUserArticle(ctx, article.ID, user.ID)
	assert.ErrorIs(t, err, storage.ErrArticleNotFound)
}
