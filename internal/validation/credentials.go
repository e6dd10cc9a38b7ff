package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// EmailPattern определяет допустимый формат email.
// Упрощенная проверка: непустая локальная часть, @, домен с точкой.
var EmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var (
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxNameLen максимальная длина имени/фамилии
	MaxNameLen = 50
)

// ValidateEmail проверяет, что email непустой и похож на адрес
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}

	return nil
}

// ValidatePassword проверяет требования к паролю:
// минимум 8 символов, хотя бы одна буква и одна цифра
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if !hasLetter.MatchString(password) {
		return fmt.Errorf("password must contain at least one letter")
	}

	if !hasDigit.MatchString(password) {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// ValidateName проверяет имя или фамилию и возвращает обрезанное значение.
// Имя обязательно и не длиннее 50 символов.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	if len(trimmed) > MaxNameLen {
		return "", fmt.Errorf("name cannot be longer than %d characters", MaxNameLen)
	}

	return trimmed, nil
}
