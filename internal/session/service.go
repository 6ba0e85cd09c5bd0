package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/session/entity"
	sessionrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

// SessionService issues, validates, renews and terminates opaque sessions.
type SessionService struct {
	repo *sessionrepo.SessionRepo
	// seams for tests
	now      func() time.Time
	newToken func() (string, error)
}

func NewSessionService(db database.Queryer) *SessionService {
	return &SessionService{
		repo:     sessionrepo.NewSessionRepo(db),
		now:      time.Now,
		newToken: utilities.NewSessionToken,
	}
}

// ErrInvalidSession is returned for unknown, expired or terminated sessions.
func ErrInvalidSession() error {
	return errs.Unauthorized("User session not valid", "Verify if user is logged and try again")
}

// Create opens a new session for userID valid for entity.Expiration.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID) (*entity.Session, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, errs.Internal(err)
	}
	return s.repo.Save(ctx, token, userID, s.now().Add(entity.Expiration))
}

func (s *SessionService) FindOneValidByToken(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession()
	}
	sess, err := s.repo.GetValid(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidSession()
	}
	return sess, err
}

// ExpireByID terminates a session early.
func (s *SessionService) ExpireByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	sess, err := s.repo.Expire(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidSession()
	}
	return sess, err
}

// Renew extends a valid session to a full expiration window from now.
func (s *SessionService) Renew(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	sess, err := s.repo.Renew(ctx, id, s.now().Add(entity.Expiration))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidSession()
	}
	return sess, err
}

// RenewIfStale renews sess when less than half of its window is left. The
// boolean reports whether a renewal happened, so the caller knows to
// re-issue the cookie.
func (s *SessionService) RenewIfStale(ctx context.Context, sess *entity.Session) (*entity.Session, bool, error) {
	if !sess.NeedsRenewal(s.now()) {
		return sess, false, nil
	}
	renewed, err := s.Renew(ctx, sess.ID)
	if err != nil {
		return nil, false, err
	}
	return renewed, true, nil
}
