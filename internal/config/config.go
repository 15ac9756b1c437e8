package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		BcryptCost      int
		Issuer          string
	}
	Google struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// real environment wins over .env
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SSO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8000")
	v.SetDefault("database.path", "data/sso.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 30)
	v.SetDefault("auth.bcryptcost", bcrypt.DefaultCost)
	v.SetDefault("auth.issuer", "sso-backend")
	v.SetDefault("google.clientid", "")
	v.SetDefault("google.clientsecret", "")
	v.SetDefault("google.redirecturl", "http://localhost:8000/auth/google/callback")
	v.SetDefault("log.level", "info")

	// JWT_SECRET_KEY is the name older deployments use.
	if err := v.BindEnv("auth.jwtsecret", "SSO_AUTH_JWTSECRET", "JWT_SECRET_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind jwt secret env: %w", err)
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports configuration the process cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth jwt secret is required")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth token ttl must be positive, got %d minutes", c.Auth.TokenTTLMinutes)
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth bcrypt cost must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	return nil
}

// TokenTTL returns the access token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// GoogleEnabled reports whether Google sign-in credentials are present.
func (c Config) GoogleEnabled() bool {
	return strings.TrimSpace(c.Google.ClientID) != "" && strings.TrimSpace(c.Google.ClientSecret) != ""
}
