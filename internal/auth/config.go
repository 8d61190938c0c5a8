// Package auth guards the admin API with a single configured password and
// short-lived signed tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an issued admin token stays valid.
const DefaultTokenTTL = 12 * time.Hour

// Config holds the admin credential and token signing settings. Both
// secrets must be supplied from configuration or the environment.
type Config struct {
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many failed attempts")
	ErrInvalidToken       = errors.New("invalid token")
)

// HashPassword returns a bcrypt hash suitable for Config.PasswordHash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}
