// Package hasher wraps bcrypt for one-way password hashing and
// verification. bcrypt output embeds a per-hash salt, and comparison is
// constant-time with respect to the candidate password.
package hasher

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies password credentials.
type Hasher struct {
	cost int
}

// New returns a Hasher using the default bcrypt cost.
func New() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// Hash returns the bcrypt hash of the plaintext password.
func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// Verify reports whether the plaintext password matches the stored hash.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
