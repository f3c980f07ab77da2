package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password schemes accepted by NewCredentialScheme.
const (
	PasswordSchemePlain  = "plain"
	PasswordSchemeBcrypt = "bcrypt"
)

const bcryptCost = 10

// CredentialScheme turns a password into its stored form and checks a supplied password
// against it. All password comparison goes through here.
type CredentialScheme interface {
	Seal(password string) (string, error)
	Verify(stored, supplied string) bool
}

// NewCredentialScheme builds the scheme named by scheme.
func NewCredentialScheme(scheme string) (CredentialScheme, error) {
	switch scheme {
	case PasswordSchemePlain:
		return PlainScheme{}, nil
	case PasswordSchemeBcrypt:
		return BcryptScheme{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// PlainScheme stores the password as given and compares bytes exactly.
// It keeps compatibility with rows written before hashing was configured.
type PlainScheme struct{}

func (PlainScheme) Seal(password string) (string, error) {
	return password, nil
}

func (PlainScheme) Verify(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// BcryptScheme stores bcrypt hashes.
type BcryptScheme struct {
	Cost int
}

func (s BcryptScheme) Seal(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (BcryptScheme) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}
