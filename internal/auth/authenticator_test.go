package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestStaticAuthenticator_PlainPassword(t *testing.T) {
	a, err := NewStaticAuthenticator("mohr", "mohr2025", "")
	require.NoError(t, err)

	ctx := context.Background()
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"correct credentials", "mohr", "mohr2025", nil},
		{"wrong password", "mohr", "wrong", ErrInvalidCredentials},
		{"wrong username", "admin", "mohr2025", ErrInvalidCredentials},
		{"username is case sensitive", "MOHR", "mohr2025", ErrInvalidCredentials},
		{"empty values", "", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Authenticate(ctx, tt.username, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestStaticAuthenticator_PasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	a, err := NewStaticAuthenticator("admin", "ignored", hash)
	require.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, a.Authenticate(ctx, "admin", "s3cret"))
	assert.ErrorIs(t, a.Authenticate(ctx, "admin", "ignored"), ErrInvalidCredentials)
}

func TestNewStaticAuthenticator_Errors(t *testing.T) {
	_, err := NewStaticAuthenticator("", "pw", "")
	assert.Error(t, err)

	_, err = NewStaticAuthenticator("user", "pw", "not-a-bcrypt-hash")
	assert.Error(t, err)

	_, err = NewStaticAuthenticator("user", "", "")
	assert.Error(t, err)
}

func TestStaticAuthenticator_CancelledContext(t *testing.T) {
	a, err := NewStaticAuthenticator("mohr", "mohr2025", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, a.Authenticate(ctx, "mohr", "mohr2025"), context.Canceled)
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("", bcrypt.MinCost)
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("x", 100), bcrypt.MinCost)
	assert.Error(t, err)

	hash, err := HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}
