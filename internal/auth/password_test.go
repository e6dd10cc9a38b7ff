package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd")
	require.NoError(t, err)

	// Хеш никогда не совпадает с открытым паролем
	assert.NotEqual(t, "Passw0rd", hash)
	assert.NotEmpty(t, hash)

	// Два хеша одного пароля различаются (случайная соль)
	hash2, err := HashPassword("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "correct password", password: "Passw0rd", hash: hash, want: true},
		{name: "wrong password", password: "wrongpass1", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "garbage hash", password: "Passw0rd", hash: "not-a-hash", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.password, tt.hash))
		})
	}
}
