// Package authentication verifies email and password credentials.
package authentication

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
)

// UserFinder looks a user up by email, failing with a NotFound error.
type UserFinder interface {
	FindOneByEmail(ctx context.Context, email string) (*entity.User, error)
}

type PasswordComparer interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, stored string) bool
}

type Service struct {
	users  UserFinder
	hasher PasswordComparer
	// hash compared against when the email is unknown, so both failure
	// paths pay one bcrypt comparison
	dummy string
}

func NewService(users UserFinder, hasher PasswordComparer) (*Service, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &Service{users: users, hasher: hasher, dummy: dummy}, nil
}

// ErrMismatch is the single failure reported for an unknown email or a wrong
// password.
func ErrMismatch() error {
	return errs.Unauthorized("Authentication data doesn't match", "Verify if sended data is correct")
}

// GetAuthenticatedUser returns the user owning email when password matches.
func (s *Service) GetAuthenticatedUser(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.users.FindOneByEmail(ctx, email)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			s.hasher.Compare(password, s.dummy)
			return nil, ErrMismatch()
		}
		return nil, err
	}
	if !s.hasher.Compare(password, u.Password) {
		return nil, ErrMismatch()
	}
	return u, nil
}
