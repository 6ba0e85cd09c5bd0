package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

// Unique indexes backing the case-insensitive uniqueness guarantees.
const (
	UsernameIndex = "users_username_lower_idx"
	EmailIndex    = "users_email_lower_idx"
)

const userColumns = `id, username, email, password, features, created_at, updated_at`

// UserRepo provides data access for the users table.
type UserRepo struct {
	db database.Queryer
}

func NewUserRepo(db database.Queryer) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row and returns it as stored.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	const q = `INSERT INTO users (username, email, password, features)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, u.Username, u.Email, u.Password, pq.StringArray(u.Features)); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByID returns the user or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByUsername matches case-insensitively.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1) LIMIT 1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, username); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByEmail matches case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *UserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username) = LOWER($1))`
	var taken bool
	if err := r.db.GetContext(ctx, &taken, q, username); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	var taken bool
	if err := r.db.GetContext(ctx, &taken, q, email); err != nil {
		return false, err
	}
	return taken, nil
}

// Update persists username, email and password hash of u.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) (*entity.User, error) {
	const q = `UPDATE users
		SET username = $2, email = $3, password = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, u.ID, u.Username, u.Email, u.Password); err != nil {
		return nil, err
	}
	return &row, nil
}

// SetFeatures overwrites the feature set of a user.
func (r *UserRepo) SetFeatures(ctx context.Context, id uuid.UUID, features []string) (*entity.User, error) {
	const q = `UPDATE users
		SET features = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id, pq.StringArray(features)); err != nil {
		return nil, err
	}
	return &row, nil
}

// UniqueViolation returns the index name when err is a unique constraint
// violation reported by Postgres.
func UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}
