// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTKey is the shared HMAC secret used to sign session tokens. Required.
	JWTKey string `mapstructure:"JWT_KEY"`
	// JWTIssuer is set as both iss and aud on issued tokens.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTExpireMinutes is the token lifetime and the session window in minutes.
	JWTExpireMinutes int `mapstructure:"JWT_EXPIRE_MINUTES"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// LoginRatePerMin limits signin/signup requests per client IP per minute.
	LoginRatePerMin int `mapstructure:"LOGIN_RATE_PER_MIN"`
	// LoginBurst is the burst size for the login rate limiter.
	LoginBurst int `mapstructure:"LOGIN_BURST"`
	// Env is the application environment (e.g. "development", "production").
	// cmd/seed refuses to run when Env is production.
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_KEY", "")
	v.SetDefault("JWT_ISSUER", "searchuser-api")
	v.SetDefault("JWT_EXPIRE_MINUTES", 30)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOGIN_RATE_PER_MIN", 10)
	v.SetDefault("LOGIN_BURST", 10)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.JWTKey == "" {
		return nil, errors.New("config: JWT_KEY must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// ExpireWindow returns JWTExpireMinutes as a time.Duration. Returns 30m if unset or zero.
func (c *Config) ExpireWindow() time.Duration {
	if c == nil || c.JWTExpireMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.JWTExpireMinutes) * time.Minute
}
