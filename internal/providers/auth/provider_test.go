package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLoginLogout(t *testing.T) {
	p, err := New("deck", hashOf(t, "secret123"), 3, nil)
	require.NoError(t, err)

	token, err := p.Login("deck", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, p.Valid(token))
	assert.Equal(t, 1, p.Sessions())

	p.Logout(token)
	assert.False(t, p.Valid(token))
	assert.Equal(t, 0, p.Sessions())
}

func TestDefaultCredentials(t *testing.T) {
	p, err := New("", "", 0, nil)
	require.NoError(t, err)

	_, err = p.Login(DefaultUsername, DefaultPassword)
	assert.NoError(t, err)
}

func TestInvalidHash(t *testing.T) {
	_, err := New("deck", "not-a-bcrypt-hash", 3, nil)
	assert.Error(t, err)
}

func TestLoginErrors(t *testing.T) {
	p, err := New("deck", hashOf(t, "secret123"), 3, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		login    string
		password string
		want     error
	}{
		{"missing login", "", "secret123", ErrMissingCredentials},
		{"missing password", "deck", "", ErrMissingCredentials},
		{"wrong user", "someone", "secret123", ErrInvalidCredentials},
		{"wrong password", "deck", "nope", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Login(tt.login, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	// Missing credentials do not count as attempts.
	assert.Equal(t, int64(2), p.Attempts())
}

func TestLockout(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p, err := New("deck", hashOf(t, "secret123"), 2, zap.New(core))
	require.NoError(t, err)

	for range 3 {
		_, err := p.Login("deck", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Locked even with the right password once attempts exceed the limit.
	_, err = p.Login("deck", "secret123")
	assert.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, 1, logs.FilterMessage("account locked for excess of attempts").Len())
	assert.Equal(t, 3, logs.FilterMessage("failed login attempt").Len())
}

func TestSuccessResetsAttempts(t *testing.T) {
	p, err := New("deck", hashOf(t, "secret123"), 2, nil)
	require.NoError(t, err)

	for range 2 {
		_, _ = p.Login("deck", "wrong")
	}
	_, err = p.Login("deck", "secret123")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Attempts())
}

func TestValidRejectsGarbage(t *testing.T) {
	p, err := New("deck", hashOf(t, "secret123"), 3, nil)
	require.NoError(t, err)

	assert.False(t, p.Valid(""))
	assert.False(t, p.Valid("unknown"))
	p.Logout("")
	p.Logout("unknown")
}

func TestTokensUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		tok := generateToken()
		assert.Len(t, tok, 43)
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}
