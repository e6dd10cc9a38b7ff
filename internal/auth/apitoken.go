package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// SecretPrefix идентифицирует API токены Prompt House
	SecretPrefix = "ph_"
	// SecretLength количество случайных байт секрета (32 байта = 256 бит)
	SecretLength = 32
)

// GenerateAPISecret создает новый секрет API токена.
// Формат: ph_<base64url(32 случайных байта)>.
// Возвращает сырой секрет и его SHA-256 хеш; в БД сохраняется только хеш.
func GenerateAPISecret() (secret string, secretHash string, err error) {
	randomBytes := make([]byte, SecretLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	// Кодируем в base64url без padding
	secret = SecretPrefix + base64.RawURLEncoding.EncodeToString(randomBytes)

	return secret, HashAPISecret(secret), nil
}

// HashAPISecret вычисляет SHA-256 хеш секрета для поиска в БД.
// Хеширование детерминированное: bcrypt здесь не подходит,
// поскольку токен ищется по точному совпадению хеша.
func HashAPISecret(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(hash[:])
}

// ValidateAPISecretFormat проверяет, что строка похожа на секрет токена
func ValidateAPISecretFormat(secret string) error {
	if !strings.HasPrefix(secret, SecretPrefix) {
		return fmt.Errorf("token must start with %q", SecretPrefix)
	}

	encodedPart := strings.TrimPrefix(secret, SecretPrefix)
	if encodedPart == "" {
		return fmt.Errorf("token is too short")
	}

	if _, err := base64.RawURLEncoding.DecodeString(encodedPart); err != nil {
		return fmt.Errorf("invalid token encoding: %w", err)
	}

	return nil
}
