// Package migration applies the embedded schema migrations with goose.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// Files returns the migration sources rooted at their directory.
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migration describes one migration file.
type Migration struct {
	Version int64  `json:"version"`
	Name    string `json:"name"`
}

type provider interface {
	Status(ctx context.Context) ([]*goose.MigrationStatus, error)
	Up(ctx context.Context) ([]*goose.MigrationResult, error)
}

// Runner lists and applies pending migrations.
type Runner struct {
	p provider
}

// NewRunner builds a runner over db. The runner does not own db.
func NewRunner(db *sql.DB) (*Runner, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, Files())
	if err != nil {
		return nil, fmt.Errorf("migration: new provider: %w", err)
	}
	return &Runner{p: p}, nil
}

// Pending lists migrations not yet applied, without running them.
func (r *Runner) Pending(ctx context.Context) ([]Migration, error) {
	statuses, err := r.p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration: status: %w", err)
	}
	out := []Migration{}
	for _, st := range statuses {
		if st.State == goose.StatePending {
			out = append(out, fromSource(st.Source))
		}
	}
	return out, nil
}

// Up applies every pending migration and returns the ones it ran.
func (r *Runner) Up(ctx context.Context) ([]Migration, error) {
	results, err := r.p.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration: up: %w", err)
	}
	out := []Migration{}
	for _, res := range results {
		out = append(out, fromSource(res.Source))
	}
	return out, nil
}

func fromSource(s *goose.Source) Migration {
	return Migration{Version: s.Version, Name: path.Base(s.Path)}
}
