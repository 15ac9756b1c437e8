package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// chdir switches the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SSO_AUTH_JWTSECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr)
	assert.Equal(t, "data/sso.db", cfg.Database.Path)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 30, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, bcrypt.DefaultCost, cfg.Auth.BcryptCost)
	assert.Equal(t, "sso-backend", cfg.Auth.Issuer)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.GoogleEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SSO_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("SSO_AUTH_TOKENTTLMINUTES", "5")
	t.Setenv("SSO_GOOGLE_CLIENTID", "id")
	t.Setenv("SSO_GOOGLE_CLIENTSECRET", "secret")
	t.Setenv("JWT_SECRET_KEY", "legacy")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.TokenTTL())
	assert.Equal(t, "legacy", cfg.Auth.JWTSecret)
	assert.True(t, cfg.GoogleEnabled())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Database.Path = "data/sso.db"
		c.Auth.JWTSecret = "secret"
		c.Auth.TokenTTLMinutes = 30
		c.Auth.BcryptCost = bcrypt.MinCost
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "  " }},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.TokenTTLMinutes = 0 }},
		{name: "cost too low", mutate: func(c *Config) { c.Auth.BcryptCost = bcrypt.MinCost - 1 }},
		{name: "cost too high", mutate: func(c *Config) { c.Auth.BcryptCost = bcrypt.MaxCost + 1 }},
		{name: "missing db path", mutate: func(c *Config) { c.Database.Path = "" }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
