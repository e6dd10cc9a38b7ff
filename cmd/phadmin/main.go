// Command phadmin seeds or promotes an administrator account.
// Запускается оператором вручную, пароль запрашивается с терминала.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/prombank/prompthouse/internal/auth"
	"github.com/prombank/prompthouse/internal/models"
	"github.com/prombank/prompthouse/internal/server/storage"
	"github.com/prombank/prompthouse/internal/server/storage/sqlite"
	"github.com/prombank/prompthouse/internal/validation"
)

func main() {
	dbPath := flag.String("db", "prompthouse.db", "Path to the SQLite database")
	email := flag.String("email", "", "Admin email address")
	firstName := flag.String("first-name", "Admin", "Admin first name")
	lastName := flag.String("last-name", "User", "Admin last name")
	flag.Parse()

	if err := run(*dbPath, *email, *firstName, *lastName); err != nil {
		fmt.Fprintf(os.Stderr, "phadmin: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, email, firstName, lastName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid --email: %w", err)
	}

	ctx := context.Background()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	// Существующий аккаунт повышается до админа без смены пароля
	existing, err := store.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.IsAdmin {
			fmt.Printf("%s is already an administrator\n", email)
			return nil
		}

		existing.IsAdmin = true
		existing.UpdatedAt = time.Now().UTC()
		if err := store.UpdateUser(ctx, existing); err != nil {
			return fmt.Errorf("failed to promote user: %w", err)
		}

		fmt.Printf("promoted %s to administrator\n", email)
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		AuthProvider: models.AuthProviderLocal,
		IsActive:     true,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Printf("created administrator %s\n", email)
	return nil
}

// readPassword запрашивает пароль дважды без эха в терминал
func readPassword() (string, error) {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if err := validation.ValidatePassword(string(password)); err != nil {
		return "", err
	}

	fmt.Print("Repeat password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	return string(password), nil
}
