// Package auth guards the dashboard behind a single configured credential
// and tracks logged-in browsers with opaque session tokens.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any username or password mismatch.
// The message is shown to the user as is.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticator checks a username and password pair
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) error
}

// StaticAuthenticator accepts exactly one configured credential pair
type StaticAuthenticator struct {
	username []byte
	hash     []byte
}

// NewStaticAuthenticator builds an authenticator for username. When
// passwordHash is non-empty it must be a bcrypt hash and password is ignored;
// otherwise password is hashed once at start-up.
func NewStaticAuthenticator(username, password, passwordHash string) (*StaticAuthenticator, error) {
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}

	var hash []byte
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
		hash = []byte(passwordHash)
	} else {
		h, err := HashPassword(password, bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = []byte(h)
	}

	return &StaticAuthenticator{username: []byte(username), hash: hash}, nil
}

// Authenticate returns ErrInvalidCredentials unless both values match.
// The password is always checked so a wrong username takes the same time.
func (a *StaticAuthenticator) Authenticate(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), a.username) == 1
	pwErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))

	if !userOK || pwErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword creates a bcrypt hash of password for the password_hash setting
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errors.New("password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}
