package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("WEBSERVER_ORIGIN", "")
	t.Setenv("PASSWORD_PEPPER", "")

	c := FromEnv()
	assert.Equal(t, EnvDevelopment, c.Env)
	assert.Equal(t, "0.0.0.0:3000", c.HTTPAddr)
	assert.Equal(t, "http://localhost:3000", c.Origin)
	assert.Empty(t, c.PasswordPepper)
	assert.False(t, c.IsProduction())
	assert.False(t, c.Cookies().Secure)
}

func TestFromEnv_Production(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PASSWORD_PEPPER", "s3cr3t")
	t.Setenv("WEBSERVER_ORIGIN", "https://externbr.com")

	c := FromEnv()
	assert.True(t, c.IsProduction())
	assert.True(t, c.Database.Production)
	assert.Equal(t, "s3cr3t", c.PasswordPepper)
	assert.Equal(t, "https://externbr.com", c.Origin)

	cookies := c.Cookies()
	assert.True(t, cookies.Secure)
	assert.Equal(t, 30*24*time.Hour, cookies.MaxAge)
}
