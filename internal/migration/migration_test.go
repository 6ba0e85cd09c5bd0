package migration

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
)

type fakeProvider struct {
	statuses []*goose.MigrationStatus
	results  []*goose.MigrationResult
	err      error
}

func (f *fakeProvider) Status(context.Context) ([]*goose.MigrationStatus, error) {
	return f.statuses, f.err
}

func (f *fakeProvider) Up(context.Context) ([]*goose.MigrationResult, error) {
	return f.results, f.err
}

func source(v int64, name string) *goose.Source {
	return &goose.Source{Type: goose.TypeSQL, Path: name, Version: v}
}

func TestFiles(t *testing.T) {
	names, err := fs.Glob(Files(), "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_sessions.sql",
		"00003_create_user_activation_tokens.sql",
	}, names)
}

func TestTimestampDefaultsKeepInstant(t *testing.T) {
	names, err := fs.Glob(Files(), "*.sql")
	require.NoError(t, err)
	for _, name := range names {
		b, err := fs.ReadFile(Files(), name)
		require.NoError(t, err)
		sql := string(b)
		assert.NotContains(t, sql, "timezone(", name)
		if strings.Contains(sql, "created_at timestamptz") {
			assert.Contains(t, sql, "created_at timestamptz NOT NULL DEFAULT now()", name)
			assert.Contains(t, sql, "updated_at timestamptz NOT NULL DEFAULT now()", name)
		}
	}
}

func TestPending(t *testing.T) {
	r := &Runner{p: &fakeProvider{statuses: []*goose.MigrationStatus{
		{State: goose.StateApplied, Source: source(1, "00001_create_users.sql")},
		{State: goose.StatePending, Source: source(2, "00002_create_sessions.sql")},
	}}}

	got, err := r.Pending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Migration{{Version: 2, Name: "00002_create_sessions.sql"}}, got)
}

func TestHandlerRun(t *testing.T) {
	log := zap.NewNop().Sugar()

	r := &Runner{p: &fakeProvider{results: []*goose.MigrationResult{{Source: source(1, "00001_create_users.sql")}}}}
	w := httptest.NewRecorder()
	require.NoError(t, NewHandler(r, log).Run(w, httptest.NewRequest(http.MethodPost, "/migrations", nil)))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"00001_create_users.sql"`)

	r = &Runner{p: &fakeProvider{}}
	w = httptest.NewRecorder()
	require.NoError(t, NewHandler(r, log).Run(w, httptest.NewRequest(http.MethodPost, "/migrations", nil)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandlerList_Failure(t *testing.T) {
	r := &Runner{p: &fakeProvider{err: assert.AnError}}
	err := NewHandler(r, zap.NewNop().Sugar()).List(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/migrations", nil))
	assert.True(t, errs.Is(err, errs.KindService))
}
