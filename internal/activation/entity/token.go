package entity

import (
	"time"

	"github.com/google/uuid"
)

// Expiration is how long an activation token stays usable.
const Expiration = 15 * time.Minute

// Token is a single-use activation credential. It is valid while UsedAt is
// nil and ExpiresAt is in the future.
type Token struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	UsedAt    *time.Time `db:"used_at" json:"used_at"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Valid reports whether the token can still be consumed at now.
func (t *Token) Valid(now time.Time) bool {
	return t.UsedAt == nil && t.ExpiresAt.After(now)
}
