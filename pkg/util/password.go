package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt reads at most 72 bytes of input; anything longer is rejected
// up front rather than silently truncated.
const maxPasswordBytes = 72

const passwordHashCost = 12

var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// HashPassword derives a bcrypt hash for storage in the users table.
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plain text password matches the
// stored hash.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
