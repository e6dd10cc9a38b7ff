package storage

import (
	"context"

	"github.com/prombank/prompthouse/internal/models"
)

// PromptFilter narrows prompt listings
type PromptFilter struct {
	// Category matches the prompt category exactly when non-empty
	Category string
	// Query matches a substring of title or content when non-empty
	Query string
}

// PromptStorage defines interface for prompt persistence
type PromptStorage interface {
	// CreatePrompt stores a new prompt
	CreatePrompt(ctx context.Context, prompt *models.Prompt) error

	// GetPromptByID retrieves a prompt by id regardless of visibility;
	// callers apply the visibility predicate
	// Returns ErrPromptNotFound if prompt doesn't exist
	GetPromptByID(ctx context.Context, promptID string) (*models.Prompt, error)

	// ListVisiblePrompts returns prompts that are public or owned by
	// requesterID, newest first. Empty requesterID lists public only.
	ListVisiblePrompts(ctx context.Context, requesterID string, filter PromptFilter) ([]*models.Prompt, error)

	// UpdatePrompt updates a prompt's content fields
	// Returns ErrPromptNotFound if prompt doesn't exist
	UpdatePrompt(ctx context.Context, prompt *models.Prompt) error

	// DeletePrompt deletes a prompt. Articles referencing it keep a null
	// provenance link rather than being deleted.
	// Returns ErrPromptNotFound if prompt doesn't exist
	DeletePrompt(ctx context.Context, promptID string) error

	// CountPrompts returns the total number of prompts
	CountPrompts(ctx context.Context) (int, error)
}
