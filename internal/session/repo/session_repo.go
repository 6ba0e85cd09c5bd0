package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/session/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

// expected table schema lives in internal/migration/sql.

const sessionColumns = `id, token, user_id, expires_at, created_at, updated_at`

type SessionRepo struct {
	db database.Queryer
}

func NewSessionRepo(db database.Queryer) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Save(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) (*entity.Session, error) {
	const q = `INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3) RETURNING ` + sessionColumns
	var s entity.Session
	if err := r.db.GetContext(ctx, &s, q, token, userID, expiresAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetValid returns the unexpired session holding token, or sql.ErrNoRows.
func (r *SessionRepo) GetValid(ctx context.Context, token string) (*entity.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE token = $1 AND expires_at > NOW() LIMIT 1`
	var s entity.Session
	if err := r.db.GetContext(ctx, &s, q, token); err != nil {
		return nil, err
	}
	return &s, nil
}

// Expire invalidates the session immediately. The row is kept.
func (r *SessionRepo) Expire(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	const q = `UPDATE sessions SET expires_at = NOW(), updated_at = NOW() WHERE id = $1 RETURNING ` + sessionColumns
	var s entity.Session
	if err := r.db.GetContext(ctx, &s, q, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// Renew moves the expiry of a still valid session to expiresAt.
func (r *SessionRepo) Renew(ctx context.Context, id uuid.UUID, expiresAt time.Time) (*entity.Session, error) {
	const q = `UPDATE sessions SET expires_at = $2, updated_at = NOW()
		WHERE id = $1 AND expires_at > NOW()
		RETURNING ` + sessionColumns
	var s entity.Session
	if err := r.db.GetContext(ctx, &s, q, id, expiresAt); err != nil {
		return nil, err
	}
	return &s, nil
}
