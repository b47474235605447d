// Package auth gates the dashboard behind a single admin credential pair and
// carries the resulting session through request contexts.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"batchdesk/internal/core"
)

// CredentialProvider checks a username/password pair. A mismatch returns
// core.ErrInvalidCredentials.
type CredentialProvider interface {
	Verify(ctx context.Context, username, password string) error
}

// StaticCredentials is one username with a bcrypt password hash.
type StaticCredentials struct {
	username string
	hash     []byte
}

var _ CredentialProvider = (*StaticCredentials)(nil)

var ErrMissingCredentials = errors.New("admin username and password hash are required")

func NewStaticCredentials(username, passwordHash string) (*StaticCredentials, error) {
	username = strings.TrimSpace(username)
	passwordHash = strings.TrimSpace(passwordHash)
	if username == "" || passwordHash == "" {
		return nil, ErrMissingCredentials
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	return &StaticCredentials{username: username, hash: []byte(passwordHash)}, nil
}

// NewStaticCredentialsFromPassword hashes a plaintext password at startup.
// Meant for local setups where no hash has been generated.
func NewStaticCredentialsFromPassword(username, password string) (*StaticCredentials, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return NewStaticCredentials(username, hash)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify compares in constant time on the username and always runs bcrypt,
// so both failure paths take about the same time.
func (c *StaticCredentials) Verify(_ context.Context, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(c.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(c.hash, []byte(password))
	if !userOK || passErr != nil {
		return core.ErrInvalidCredentials
	}
	return nil
}

func (c *StaticCredentials) Username() string {
	return c.username
}
