package utils

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords. It is injected into the auth handler
// so the hashing scheme can be swapped without touching the lifecycle logic.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// BcryptHasher implements Hasher with bcrypt at a configurable cost.
type BcryptHasher struct{ Cost int }

// Hash returns the bcrypt hash of plain using the configured cost.
func (h BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify safely compares a bcrypt hash and a plain password.
func (h BcryptHasher) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordPolicy validates candidate passwords. Validate returns a list of
// human-readable violations; an empty list means the password is acceptable.
type PasswordPolicy interface {
	Validate(plain string) []string
}

// DefaultPolicy rejects empty, short and all-numeric passwords.
type DefaultPolicy struct {
	MinLength int // falls back to 8 when zero
}

// Validate returns the rule violations for plain, in a stable order.
func (p DefaultPolicy) Validate(plain string) []string {
	minLen := p.MinLength
	if minLen == 0 {
		minLen = 8
	}
	var violations []string
	if strings.TrimSpace(plain) == "" {
		return append(violations, "password is required")
	}
	if len(plain) < minLen {
		violations = append(violations, "password is too short")
	}
	if isAllDigits(plain) {
		violations = append(violations, "password is entirely numeric")
	}
	return violations
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
