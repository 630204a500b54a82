// Package auth validates login input and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MaxUsernameLen = 20
	MaxPasswordLen = 40
)

var (
	ErrInvalidUsername   = errors.New("username must be 1-20 letters, digits or underscores")
	ErrInvalidPassword   = errors.New("password must be 1-40 characters")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// NormalizeUsername lower-cases and trims a username.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateUsername checks length and allowed characters of a normalized
// username.
func ValidateUsername(name string) error {
	if len(name) == 0 || len(name) > MaxUsernameLen {
		return ErrInvalidUsername
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_':
		default:
			return ErrInvalidUsername
		}
	}
	return nil
}

// ValidatePassword checks the password length in characters.
func ValidatePassword(password string) error {
	n := len([]rune(password))
	if n == 0 || n > MaxPasswordLen {
		return ErrInvalidPassword
	}
	return nil
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password against hash and returns
// ErrIncorrectPassword on mismatch.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrIncorrectPassword
	}
	return fmt.Errorf("failed to check password: %w", err)
}
