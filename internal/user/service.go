package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/authorization"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/password"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

// PasswordHasher hashes passwords before they are stored.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// UserService is the user directory: CRUD over users with case-insensitive
// uniqueness of username and email.
type UserService struct {
	repo   *userrepo.UserRepo
	hasher PasswordHasher
}

func NewUserService(db database.Queryer, hasher PasswordHasher) *UserService {
	return &UserService{repo: userrepo.NewUserRepo(db), hasher: hasher}
}

const (
	actionCreate = "to create an account"
	actionUpdate = "for this operation"
)

// Create registers a new user. Username is checked before email; the unique
// indexes remain the authoritative guard when two registrations race.
func (s *UserService) Create(ctx context.Context, in entity.CreateInput) (*entity.User, error) {
	if err := s.validateUniqueUsername(ctx, in.Username, actionCreate); err != nil {
		return nil, err
	}
	if err := s.validateUniqueEmail(ctx, in.Email, actionCreate); err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, &entity.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Features: []string{authorization.FeatureReadActivationToken},
	})
	if err != nil {
		return nil, mapUniqueViolation(err, actionCreate)
	}
	return u, nil
}

// Update applies a partial update to the user identified by username.
func (s *UserService) Update(ctx context.Context, username string, in entity.UpdateInput) (*entity.User, error) {
	current, err := s.FindOneByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	next := *current

	if in.Username != nil {
		if !strings.EqualFold(current.Username, *in.Username) {
			if err := s.validateUniqueUsername(ctx, *in.Username, actionUpdate); err != nil {
				return nil, err
			}
		}
		next.Username = *in.Username
	}
	if in.Email != nil {
		if err := s.validateUniqueEmail(ctx, *in.Email, actionUpdate); err != nil {
			return nil, err
		}
		next.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		next.Password = hash
	}

	u, err := s.repo.Update(ctx, &next)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userNotFoundByUsername()
		}
		return nil, mapUniqueViolation(err, actionUpdate)
	}
	return u, nil
}

func (s *UserService) hash(plaintext string) (string, error) {
	hash, err := s.hasher.Hash(plaintext)
	if errors.Is(err, password.ErrTooLong) {
		return "", errs.Validation("Password is too long", "Use a shorter password")
	}
	if err != nil {
		return "", errs.Internal(err)
	}
	return hash, nil
}

func (s *UserService) FindOneByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("Requested user ID was not founded", "Verify if requested user ID is right")
	}
	return u, err
}

func (s *UserService) FindOneByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, userNotFoundByUsername()
	}
	return u, err
}

func (s *UserService) FindOneByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("Requested email was not founded", "Verify if requested email is right")
	}
	return u, err
}

// SetFeatures overwrites the feature set of the user.
func (s *UserService) SetFeatures(ctx context.Context, id uuid.UUID, features []string) (*entity.User, error) {
	u, err := s.repo.SetFeatures(ctx, id, features)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("Requested user ID was not founded", "Verify if requested user ID is right")
	}
	return u, err
}

func (s *UserService) validateUniqueUsername(ctx context.Context, username, action string) error {
	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return duplicateUsername(action)
	}
	return nil
}

func (s *UserService) validateUniqueEmail(ctx context.Context, email, action string) error {
	taken, err := s.repo.EmailTaken(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return duplicateEmail(action)
	}
	return nil
}

func mapUniqueViolation(err error, action string) error {
	index, ok := userrepo.UniqueViolation(err)
	if !ok {
		return err
	}
	switch index {
	case userrepo.UsernameIndex:
		return duplicateUsername(action)
	case userrepo.EmailIndex:
		return duplicateEmail(action)
	}
	return err
}

func duplicateUsername(action string) error {
	return errs.Validation("This username is already been used", "Use another username "+action)
}

func duplicateEmail(action string) error {
	if action == actionUpdate {
		return errs.Validation("This email is already been used", "Use another email to this operation")
	}
	return errs.Validation("This email is already been used", "Use another email "+action)
}

func userNotFoundByUsername() error {
	return errs.NotFound("Requested username was not founded", "Verify if requested username is right")
}
