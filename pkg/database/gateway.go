package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
)

// Queryer is the subset of sqlx used by repositories. The Gateway and the
// transaction handle passed to WithTx both satisfy it.
type Queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Gateway runs every statement on its own connection, released on every
// exit path. Failures other than sql.ErrNoRows come back as a ServiceError
// wrapping the driver error.
type Gateway struct {
	db *sqlx.DB
}

func NewGateway(db *sqlx.DB) *Gateway { return &Gateway{db: db} }

func (g *Gateway) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return g.withConn(ctx, func(c *sqlx.Conn) error {
		return c.GetContext(ctx, dest, query, args...)
	})
}

func (g *Gateway) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return g.withConn(ctx, func(c *sqlx.Conn) error {
		return c.SelectContext(ctx, dest, query, args...)
	})
}

func (g *Gateway) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := g.withConn(ctx, func(c *sqlx.Conn) error {
		var err error
		res, err = c.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

func (g *Gateway) withConn(ctx context.Context, fn func(c *sqlx.Conn) error) error {
	conn, err := g.db.Connx(ctx)
	if err != nil {
		return wrap(fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Close()
	return wrap(fn(conn))
}

// WithTx runs fn inside a transaction on a dedicated connection. It commits
// when fn returns nil and rolls back on error or panic; panics are rethrown.
// Errors returned by fn are passed through untouched so domain errors keep
// their kind.
func (g *Gateway) WithTx(ctx context.Context, fn func(ctx context.Context, q Queryer) error) (err error) {
	conn, err := g.db.Connx(ctx)
	if err != nil {
		return wrap(fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return wrap(fmt.Errorf("begin: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = wrap(fmt.Errorf("commit: %w", cerr))
		}
	}()

	err = fn(ctx, txQueryer{tx: tx})
	return err
}

type txQueryer struct {
	tx *sqlx.Tx
}

func (t txQueryer) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return wrap(t.tx.GetContext(ctx, dest, query, args...))
}

func (t txQueryer) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return wrap(t.tx.SelectContext(ctx, dest, query, args...))
}

func (t txQueryer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	return res, wrap(err)
}

func wrap(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	return errs.Service(err)
}
