package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Config struct {
	DSN        string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	CA         string
	Production bool
	MaxConns   int
	Timeout    time.Duration
	TimeZone   string
}

// ConfigFromEnv reads DB config from environment variables.
// DATABASE_URL, when set, wins over the POSTGRES_* variables.
func ConfigFromEnv() Config {
	cfg := Config{
		DSN:        os.Getenv("DATABASE_URL"),
		Host:       getenv("POSTGRES_HOST", "localhost"),
		Port:       getenv("POSTGRES_PORT", "5432"),
		User:       getenv("POSTGRES_USER", "postgres"),
		Password:   getenv("POSTGRES_PASSWORD", "postgres"),
		Name:       getenv("POSTGRES_DB", "postgres"),
		CA:         os.Getenv("POSTGRES_CA"),
		Production: os.Getenv("APP_ENV") == "production",
		MaxConns:   5,
		Timeout:    5 * time.Second,
		TimeZone:   os.Getenv("DATABASE_TIMEZONE"),
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// sslMode picks the TLS posture: an explicit CA pins verification,
// production without a CA still requires TLS.
func (c Config) sslMode() string {
	switch {
	case c.CA != "":
		return "verify-full"
	case c.Production:
		return "require"
	default:
		return "disable"
	}
}

// ConnString returns the lib/pq connection string for the config.
func (c Config) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	q := url.Values{}
	q.Set("sslmode", c.sslMode())
	if c.CA != "" {
		q.Set("sslinline", "true")
		q.Set("sslrootcert", c.CA)
	}
	if c.TimeZone != "" {
		q.Set("timezone", c.TimeZone)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Connect opens a *sqlx.DB and verifies connectivity with a ping
func Connect(cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	max := cfg.MaxConns
	if max <= 0 {
		max = 5
	}
	db.SetMaxOpenConns(max)
	db.SetMaxIdleConns(max)
	db.SetConnMaxLifetime(30 * time.Minute)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// redact hides the password of a connection URL for logging.
func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	// keep inline certificates out of logs too
	q := u.Query()
	if q.Has("sslrootcert") {
		q.Set("sslrootcert", "inline")
		u.RawQuery = q.Encode()
	}
	return strings.TrimSpace(u.String())
}

// Redacted returns the connection string with secrets masked.
func (c Config) Redacted() string { return redact(c.ConnString()) }
