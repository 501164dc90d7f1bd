package membership

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/circulation/internal/errs"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errs.Validation("password is required")
	}
	if len(password) > maxPasswordBytes {
		return "", errs.Validation("password exceeds maximum length of %d bytes", maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password with its hash. A mismatch is errs.ErrAuth.
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return errs.ErrAuth
		}
		return err
	}
	return nil
}
