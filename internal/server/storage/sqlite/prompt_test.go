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

func createTestPrompt(t *testing.T, ctx context.Context, s *Storage, userID string, public bool, title string) *models.Prompt {
	now := time.Now()
	prompt := &models.Prompt{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   "Write about {{topic}}",
		Tags:      []string{"writing"},
		IsPublic:  public,
		UserID:    userID,
		Variables: []string{"topic"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	require.NoError(t, s.CreatePrompt(ctx, prompt))
	return prompt
}

func TestPromptStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "a@x.com")
	prompt := createTestPrompt(t, ctx, s, user.ID, false, "my prompt")

	got, err := s.GetPromptByID(ctx, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, "my prompt", got.Title)
	assert.Equal(t, []string{"writing"}, got.Tags)
	assert.Equal(t, []string{"topic"}, got.Variables)
	assert.False(t, got.IsPublic)

	_, err = s.GetPromptByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrPromptNotFound)
}

func TestPromptStorage_ListVisiblePrompts(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userA := createTestUser(t, ctx, s, "a@x.com")
	userB := createTestUser(t, ctx, s, "b@x.com")

	publicA := createTestPrompt(t, ctx, s, userA.ID, true, "public A")
	privateA := createTestPrompt(t, ctx, s, userA.ID, false, "private A")
	createTestPrompt(t, ctx, s, userB.ID, false, "private B")

	// Пользователь A видит свои промпты и публичные
	prompts, err := s.ListVisiblePrompts(ctx, userA.ID, storage.PromptFilter{})
	require.NoError(t, err)
	ids := promptIDs(prompts)
	assert.ElementsMatch(t, []string{publicA.ID, privateA.ID}, ids)

	// Пользователь B видит свой приватный и публичный A, но не приватный A
	prompts, err = s.ListVisiblePrompts(ctx, userB.ID, storage.PromptFilter{})
	require.NoError(t, err)
	assert.Len(t, prompts, 2)
	assert.NotContains(t, promptIDs(prompts), privateA.ID)

	// Аноним видит только публичные
	prompts, err = s.ListVisiblePrompts(ctx, "", storage.PromptFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{publicA.ID}, promptIDs(prompts))
}

func TestPromptStorage_ListVisiblePrompts_Filter(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "a@x.com")

	now := time.Now()
	prompt := &models.Prompt{
		ID:        uuid.New().String(),
		Title:     "SQL helper",
		Content:   "Generate a query",
		Category:  "coding",
		IsPublic:  true,
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreatePrompt(ctx, prompt))
	createTestPrompt(t, ctx, s, user.ID, true, "poem prompt")

	prompts, err := s.ListVisiblePrompts(ctx, user.ID, storage.PromptFilter{Category: "coding"})
	require.NoError(t, err)
	assert.Equal(t, []string{prompt.ID}, promptIDs(prompts))

	prompts, err = s.ListVisiblePrompts(ctx, user.ID, storage.PromptFilter{Query: "poem"})
	require.NoError(t, err)
	assert.Len(t, prompts, 1)
	assert.Equal(t, "poem prompt", prompts[0].Title)
}

func TestPromptStorage_UpdatePrompt(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "a@x.com")
	prompt := createTestPrompt(t, ctx, s, user.ID, false, "old title")

	prompt.Title = "new title"
	prompt.IsPublic = true
	prompt.Variables = []string{"topic", "tone"}
	prompt.UpdatedAt = time.Now()
	require.NoError(t, s.UpdatePrompt(ctx, prompt))

	got, err := s.GetPromptByID(ctx, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
	assert.True(t, got.IsPublic)
	assert.Equal(t, []string{"topic", "tone"}, got.Variables)
}

func TestPromptStorage_DeletePrompt_NullsArticleReference(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := createTestUser(t, ctx, s, "a@x.com")
	prompt := createTestPrompt(t, ctx, s, user.ID, false, "source prompt")

	now := time.Now()
	article := &models.Article{
		ID:          uuid.New().String(),
		Title:       "derived article",
		Content:     "text",
		PromptID:    prompt.ID,
		PromptTitle: prompt.Title,
		UserID:      user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, s.CreateArticle(ctx, article))

	require.NoError(t, s.DeletePrompt(ctx, prompt.ID))

	_, err := s.GetPromptByID(ctx, prompt.ID)
	assert.ErrorIs(t, err, storage.ErrPromptNotFound)

	// Статья остается, ссылка на промпт обнулена
	got, err := s.GetUserArticle(ctx, article.ID, user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PromptID)
	assert.Equal(t, "source prompt", got.PromptTitle)
}

func TestPromptStorage_DeletePrompt_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.DeletePrompt(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrPromptNotFound)
}

func promptIDs(prompts []*models.Prompt) []string {
	ids := make([]string, 0, len(prompts))
	for _, p := range prompts {
		ids = append(ids, p.ID)
	}
	return ids
}
