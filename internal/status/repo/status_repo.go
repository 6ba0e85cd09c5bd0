package repo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

// Repo reads server facts from Postgres.
type Repo struct {
	db database.Queryer
}

func NewRepo(db database.Queryer) *Repo { return &Repo{db: db} }

func (r *Repo) ServerVersion(ctx context.Context) (string, error) {
	var v string
	if err := r.db.GetContext(ctx, &v, `SHOW server_version`); err != nil {
		return "", err
	}
	return v, nil
}

func (r *Repo) MaxConnections(ctx context.Context) (int, error) {
	var v string
	if err := r.db.GetContext(ctx, &v, `SHOW max_connections`); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse max_connections %q: %w", v, err)
	}
	return n, nil
}

// OpenedConnections counts backends attached to the current database.
func (r *Repo) OpenedConnections(ctx context.Context) (int, error) {
	const q = `SELECT count(*)::int FROM pg_stat_activity WHERE datname = current_database()`
	var n int
	if err := r.db.GetContext(ctx, &n, q); err != nil {
		return 0, err
	}
	return n, nil
}
