// Package password hashes and verifies user passwords with bcrypt and a
// server-side pepper.
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// ErrTooLong is returned by Hash when the password plus pepper exceeds the
// 72 bytes bcrypt accepts.
var ErrTooLong = bcrypt.ErrPasswordTooLong

// ProductionCost is the bcrypt work factor used when running in production.
const ProductionCost = 14

// Hasher appends Pepper to every password before hashing or comparing.
type Hasher struct {
	Pepper string
	Cost   int
}

// NewHasher picks the work factor from the environment flag.
func NewHasher(pepper string, production bool) Hasher {
	cost := bcrypt.MinCost
	if production {
		cost = ProductionCost
	}
	return Hasher{Pepper: pepper, Cost: cost}
}

func (h Hasher) Hash(plaintext string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext+h.Pepper), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether plaintext matches the stored hash. The constant
// time comparison is done by bcrypt.
func (h Hasher) Compare(plaintext, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext+h.Pepper)) == nil
}
