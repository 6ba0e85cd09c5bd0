package entity

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

// Expiration is the lifetime of a freshly issued or renewed session.
const Expiration = 30 * 24 * time.Hour

// Session represents a persisted login session. Token is the opaque bearer
// credential carried in the session cookie.
type Session struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Token     string    `db:"token" json:"token"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NeedsRenewal reports whether less than half of the expiration window is left.
func (s *Session) NeedsRenewal(now time.Time) bool {
	return s.ExpiresAt.Sub(now) < Expiration/2
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks presence only. A malformed email is left to fail
// authentication like any unknown one.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
}
