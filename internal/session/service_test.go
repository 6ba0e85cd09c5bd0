package session

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/session/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

var columns = []string{"id", "token", "user_id", "expires_at", "created_at", "updated_at"}

func newTestService(t *testing.T, now time.Time) (*SessionService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := NewSessionService(database.NewGateway(sqlx.NewDb(db, "postgres")))
	s.now = func() time.Time { return now }
	s.newToken = func() (string, error) { return "tok", nil }
	return s, mock
}

func TestCreate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, mock := newTestService(t, now)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectQuery("INSERT INTO sessions").
		WithArgs("tok", userID, now.Add(entity.Expiration)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(id.String(), "tok", userID.String(), now.Add(entity.Expiration), now, now))

	sess, err := s.Create(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, userID, sess.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOneValidByToken_Unknown(t *testing.T) {
	s, mock := newTestService(t, time.Now())

	mock.ExpectQuery("SELECT .+ FROM sessions WHERE token").
		WithArgs("expired").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := s.FindOneValidByToken(context.Background(), "expired")
	assert.True(t, errs.Is(err, errs.KindUnauthorized))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOneValidByToken_Empty(t *testing.T) {
	s, _ := newTestService(t, time.Now())
	_, err := s.FindOneValidByToken(context.Background(), "")
	assert.True(t, errs.Is(err, errs.KindUnauthorized))
}

func TestExpireByID(t *testing.T) {
	now := time.Now().UTC()
	s, mock := newTestService(t, now)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectQuery("UPDATE sessions SET expires_at = NOW()").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(id.String(), "tok", userID.String(), now, now, now))

	sess, err := s.ExpireByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, now, sess.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewIfStale_Fresh(t *testing.T) {
	now := time.Now().UTC()
	s, mock := newTestService(t, now)
	sess := &entity.Session{ID: uuid.New(), ExpiresAt: now.Add(entity.Expiration - time.Hour)}

	got, renewed, err := s.RenewIfStale(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, renewed)
	assert.Same(t, sess, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewIfStale_Stale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, mock := newTestService(t, now)
	userID := uuid.New()
	sess := &entity.Session{ID: uuid.New(), UserID: userID, ExpiresAt: now.Add(time.Hour)}
	next := now.Add(entity.Expiration)

	mock.ExpectQuery("UPDATE sessions SET expires_at = \\$2").
		WithArgs(sess.ID, next).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(sess.ID.String(), "tok", userID.String(), next, now, now))

	got, renewed, err := s.RenewIfStale(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, renewed)
	assert.Equal(t, next, got.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenew_ExpiredMeanwhile(t *testing.T) {
	s, mock := newTestService(t, time.Now())
	id := uuid.New()

	mock.ExpectQuery("UPDATE sessions").WillReturnRows(sqlmock.NewRows(columns))

	_, err := s.Renew(context.Background(), id)
	assert.True(t, errs.Is(err, errs.KindUnauthorized))
}
