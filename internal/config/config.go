// Package config gathers the process configuration once at start up. The
// result is passed explicitly to whatever needs it.
package config

import (
	"os"
	"time"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/email"
	sessionentity "github.com/ovaphlow/pitchfork/service-account-go/internal/session/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/web"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

type Config struct {
	Env            string
	HTTPAddr       string
	Origin         string
	PasswordPepper string
	ShutdownGrace  time.Duration

	Database database.Config
	Log      utilities.Config
	Email    email.Config
}

// FromEnv reads APP_ENV, HTTP_ADDR, WEBSERVER_ORIGIN and PASSWORD_PEPPER
// plus the sub configs of each component.
func FromEnv() Config {
	env := getenv("APP_ENV", EnvDevelopment)
	addr := getenv("HTTP_ADDR", "0.0.0.0:3000")
	return Config{
		Env:            env,
		HTTPAddr:       addr,
		Origin:         getenv("WEBSERVER_ORIGIN", "http://localhost:3000"),
		PasswordPepper: os.Getenv("PASSWORD_PEPPER"),
		ShutdownGrace:  5 * time.Second,
		Database:       database.ConfigFromEnv(),
		Log:            utilities.ConfigFromEnv(),
		Email:          email.ConfigFromEnv(),
	}
}

func (c Config) IsProduction() bool { return c.Env == EnvProduction }

// Cookies returns the session cookie settings: Secure only in production.
func (c Config) Cookies() web.Cookies {
	return web.Cookies{Secure: c.IsProduction(), MaxAge: sessionentity.Expiration}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
