package entity

import (
	"errors"
	"net/mail"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User represents an account row in the `users` table.
// Password holds the bcrypt hash and never leaves the process.
type User struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	Username  string         `db:"username" json:"username"`
	Email     string         `db:"email" json:"email"`
	Password  string         `db:"password" json:"-"`
	Features  pq.StringArray `db:"features" json:"features"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// HasFeature reports whether the user was granted feature.
func (u *User) HasFeature(feature string) bool {
	for _, f := range u.Features {
		if f == feature {
			return true
		}
	}
	return false
}

var errEmailAddress = errors.New("must be a valid email address")

// EmailAddress accepts a bare RFC 5322 address, the same form the mailer
// parses. The domain is not resolved.
var EmailAddress = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	s, _ := v.(string)
	if isNil || s == "" {
		return nil
	}
	a, err := mail.ParseAddress(s)
	if err != nil || a.Name != "" || a.Address != s {
		return errEmailAddress
	}
	return nil
})

// CreateInput is the registration payload.
type CreateInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks field shape only; uniqueness is checked against the store.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, validation.Length(1, 30)),
		validation.Field(&in.Email, validation.Required, validation.Length(3, 254), EmailAddress),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 72)),
	)
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.NilOrNotEmpty, validation.Length(1, 30)),
		validation.Field(&in.Email, validation.NilOrNotEmpty, validation.Length(3, 254), EmailAddress),
		validation.Field(&in.Password, validation.NilOrNotEmpty, validation.Length(8, 72)),
	)
}

// Empty reports whether no field was supplied.
func (in UpdateInput) Empty() bool {
	return in.Username == nil && in.Email == nil && in.Password == nil
}
