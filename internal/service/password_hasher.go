package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher produces and checks salted one-way password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a bcrypt-backed hasher. Costs outside the valid
// bcrypt range fall back to the default cost.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// Verify treats any mismatch or malformed stored hash as a failed
// verification rather than an error.
func (h *bcryptHasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
