package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/activation/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

const tokenColumns = `id, user_id, used_at, expires_at, created_at, updated_at`

// TokenRepo provides data access for user_activation_tokens.
type TokenRepo struct {
	db database.Queryer
}

func NewTokenRepo(db database.Queryer) *TokenRepo { return &TokenRepo{db: db} }

func (r *TokenRepo) Create(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (*entity.Token, error) {
	const q = `INSERT INTO user_activation_tokens (user_id, expires_at) VALUES ($1, $2) RETURNING ` + tokenColumns
	var t entity.Token
	if err := r.db.GetContext(ctx, &t, q, userID, expiresAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetValid returns the unused, unexpired token or sql.ErrNoRows.
func (r *TokenRepo) GetValid(ctx context.Context, id uuid.UUID) (*entity.Token, error) {
	const q = `SELECT ` + tokenColumns + ` FROM user_activation_tokens
		WHERE id = $1 AND expires_at > NOW() AND used_at IS NULL
		LIMIT 1`
	var t entity.Token
	if err := r.db.GetContext(ctx, &t, q, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetLatestByUserID returns the most recently issued token of the user.
func (r *TokenRepo) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*entity.Token, error) {
	const q = `SELECT ` + tokenColumns + ` FROM user_activation_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	var t entity.Token
	if err := r.db.GetContext(ctx, &t, q, userID); err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkUsed consumes the token in a single conditional statement. Zero rows
// (sql.ErrNoRows) means it was unknown, expired or already used.
func (r *TokenRepo) MarkUsed(ctx context.Context, id uuid.UUID) (*entity.Token, error) {
	const q = `UPDATE user_activation_tokens
		SET used_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND expires_at > NOW() AND used_at IS NULL
		RETURNING ` + tokenColumns
	var t entity.Token
	if err := r.db.GetContext(ctx, &t, q, id); err != nil {
		return nil, err
	}
	return &t, nil
}
