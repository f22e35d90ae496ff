package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently truncates longer inputs, so oversized passwords are
// rejected instead of being stored with an ambiguous prefix match.
const maxPasswordBytes = 72

// HashPassword derives the bcrypt hash stored on a profile row.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: password is empty")
	}
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("auth: password exceeds %d bytes", maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks candidate against the stored hash. A mismatch, an
// empty row, and a corrupt hash all map to ErrUnauthenticated so callers
// discriminate on the kind rather than on bcrypt internals.
func VerifyPassword(hash, candidate string) error {
	if hash == "" || candidate == "" {
		return ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)); err != nil {
		return ErrUnauthenticated
	}
	return nil
}
