package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that API token was not found.
	// Returned both for missing ids and for tokens owned by another user,
	// so existence never leaks across owners.
	ErrTokenNotFound = errors.New("token not found")

	// ErrPromptNotFound indicates that prompt was not found
	ErrPromptNotFound = errors.New("prompt not found")

	// ErrArticleNotFound indicates that article was not found
	ErrArticleNotFound = errors.New("article not found")
)
