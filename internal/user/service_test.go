package user

import (
	"context"
	"database/sql/driver"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/password"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

var userCols = []string{"id", "username", "email", "password", "features", "created_at", "updated_at"}

func newTestService(t *testing.T) (*UserService, password.Hasher, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := password.NewHasher("", false)
	return NewUserService(database.NewGateway(sqlx.NewDb(db, "postgres")), h), h, mock
}

func exists(v bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(v)
}

func TestCreate_HashesPassword(t *testing.T) {
	s, h, mock := newTestService(t)
	now := time.Now().UTC()
	id := uuid.New()

	var stored string
	mock.ExpectQuery("SELECT EXISTS .+ LOWER\\(username\\)").WithArgs("abrxao").WillReturnRows(exists(false))
	mock.ExpectQuery("SELECT EXISTS .+ LOWER\\(email\\)").WithArgs("abrxao@gmail.com").WillReturnRows(exists(false))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("abrxao", "abrxao@gmail.com", capture{&stored}, pq.StringArray{"read:activation_token"}).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(id.String(), "abrxao", "abrxao@gmail.com", "hash", "{read:activation_token}", now, now))

	u, err := s.Create(context.Background(), entity.CreateInput{Username: "abrxao", Email: "abrxao@gmail.com", Password: "notStrongValue"})
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.True(t, h.Compare("notStrongValue", stored))
	assert.False(t, h.Compare("otherValue", stored))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// capture records the argument it is matched against.
type capture struct{ into *string }

func (c capture) Match(v driver.Value) bool {
	s, ok := v.(string)
	if ok {
		*c.into = s
	}
	return ok
}

func TestCreate_DuplicateUsernameIgnoresCase(t *testing.T) {
	s, _, mock := newTestService(t)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("User").WillReturnRows(exists(true))

	_, err := s.Create(context.Background(), entity.CreateInput{Username: "User", Email: "user@mail.com", Password: "notStrongValue"})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))
	assert.Equal(t, "This username is already been used", errs.Public(err).Message)
	assert.Equal(t, "Use another username to create an account", errs.Public(err).Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RaceCaughtByUniqueIndex(t *testing.T) {
	s, _, mock := newTestService(t)

	mock.ExpectQuery("SELECT EXISTS").WillReturnRows(exists(false))
	mock.ExpectQuery("SELECT EXISTS").WillReturnRows(exists(false))
	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505", Constraint: userrepo.EmailIndex})

	_, err := s.Create(context.Background(), entity.CreateInput{Username: "abrxao", Email: "abrxao@gmail.com", Password: "notStrongValue"})
	assert.True(t, errs.Is(err, errs.KindValidation))
	assert.Equal(t, "This email is already been used", errs.Public(err).Message)
}

func TestCreate_PasswordTooLongWithPepper(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := NewUserService(database.NewGateway(sqlx.NewDb(db, "postgres")), password.NewHasher(strings.Repeat("p", 32), false))

	mock.ExpectQuery("SELECT EXISTS .+ LOWER\\(username\\)").WillReturnRows(exists(false))
	mock.ExpectQuery("SELECT EXISTS .+ LOWER\\(email\\)").WillReturnRows(exists(false))

	in := entity.CreateInput{Username: "duplicated_username", Email: "contato@curso.dev", Password: strings.Repeat("a", 60)}
	require.NoError(t, in.Validate())

	_, err = s.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))
	assert.Equal(t, "Password is too long", errs.Public(err).Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UsernameWithUnderscore(t *testing.T) {
	s, _, mock := newTestService(t)
	now := time.Now().UTC()
	id := uuid.New()

	mock.ExpectQuery("SELECT EXISTS .+ LOWER\\(username\\)").WithArgs("duplicated_username").WillReturnRows(exists(false))
	mock.ExpectQuery("SELECT EXISTS .+ LOWER\\(email\\)").WithArgs("contato@curso.dev").WillReturnRows(exists(false))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("duplicated_username", "contato@curso.dev", sqlmock.AnyArg(), pq.StringArray{"read:activation_token"}).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(id.String(), "duplicated_username", "contato@curso.dev", "hash", "{read:activation_token}", now, now))

	in := entity.CreateInput{Username: "duplicated_username", Email: "contato@curso.dev", Password: "notStrongValue"}
	require.NoError(t, in.Validate())
	u, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "duplicated_username", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_SameUsernameDifferentCase(t *testing.T) {
	s, _, mock := newTestService(t)
	now := time.Now().UTC()
	id := uuid.New()

	mock.ExpectQuery("FROM users WHERE LOWER\\(username\\)").
		WithArgs("abrxao").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(id.String(), "abrxao", "old@gmail.com", "hash", "{}", now, now))
	mock.ExpectQuery("SELECT EXISTS .+ LOWER\\(email\\)").WithArgs("new@gmail.com").WillReturnRows(exists(false))
	mock.ExpectQuery("UPDATE users").
		WithArgs(id, "ABRXAO", "new@gmail.com", "hash").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(id.String(), "ABRXAO", "new@gmail.com", "hash", "{}", now, now))

	username, mail := "ABRXAO", "new@gmail.com"
	u, err := s.Update(context.Background(), "abrxao", entity.UpdateInput{Username: &username, Email: &mail})
	require.NoError(t, err)
	assert.Equal(t, "ABRXAO", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_DuplicateEmail(t *testing.T) {
	s, _, mock := newTestService(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM users WHERE LOWER\\(username\\)").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(uuid.NewString(), "abrxao", "old@gmail.com", "hash", "{}", now, now))
	mock.ExpectQuery("SELECT EXISTS").WillReturnRows(exists(true))

	mail := "taken@gmail.com"
	_, err := s.Update(context.Background(), "abrxao", entity.UpdateInput{Email: &mail})
	assert.Equal(t, "Use another email to this operation", errs.Public(err).Action)
}

func TestFindOneByUsername_NotFound(t *testing.T) {
	s, _, mock := newTestService(t)

	mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows(userCols))

	_, err := s.FindOneByUsername(context.Background(), "ghost")
	assert.True(t, errs.Is(err, errs.KindNotFound))
	assert.Equal(t, "Requested username was not founded", errs.Public(err).Message)
}

func TestFindOneByEmail_ServiceError(t *testing.T) {
	s, _, mock := newTestService(t)

	mock.ExpectQuery("FROM users").WillReturnError(assert.AnError)

	_, err := s.FindOneByEmail(context.Background(), "a@b.com")
	assert.True(t, errs.Is(err, errs.KindService))
}
