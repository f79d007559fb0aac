// Package config handles configuration for the auth server: defaults,
// an optional JSON file, environment variables and command-line flags,
// applied in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// defaultSecretKey is the development signing secret set by LoadDefaults.
const defaultSecretKey = "secretKey"

// Config holds runtime settings for the auth server.
//
// Fields:
//   - Env: logging profile, one of local, dev, prod.
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - EndpointAddrHTTP: bind address for the ops endpoint (/metrics, /healthz).
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - Issuer: "iss" claim of access tokens.
//   - *ValidityDuration: token lifetimes.
//   - BcryptCost: work factor of the password hash.
//   - FrontendURL: base of the links sent in verification and reset emails.
//   - NATSURL / NotificationSubject: notification publisher. Empty URL logs
//     notifications instead of publishing them.
type Config struct {
	Env                          string        `env:"APP_ENV"`
	EndpointAddrGRPC             string        `env:"GRPC_ADDRESS"`
	EndpointAddrHTTP             string        `env:"HTTP_ADDRESS"`
	DatabaseDSN                  string        `env:"DATABASE_DSN"`
	SecretKey                    string        `env:"SECRET_KEY"`
	Issuer                       string        `env:"TOKEN_ISSUER"`
	AccessTokenValidityDuration  time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `env:"REFRESH_TOKEN_TTL"`
	EmailTokenValidityDuration   time.Duration `env:"EMAIL_TOKEN_TTL"`
	ResetTokenValidityDuration   time.Duration `env:"RESET_TOKEN_TTL"`
	BcryptCost                   int           `env:"BCRYPT_COST"`
	FrontendURL                  string        `env:"FRONTEND_URL"`
	NATSURL                      string        `env:"NATS_URL"`
	NotificationSubject          string        `env:"NOTIFICATION_SUBJECT"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Env = "local"
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8081"
	c.DatabaseDSN = ""
	c.SecretKey = defaultSecretKey
	c.Issuer = "gophauth"
	c.AccessTokenValidityDuration = 1 * time.Hour
	c.RefreshTokenValidityDuration = 720 * time.Hour
	c.EmailTokenValidityDuration = 24 * time.Hour
	c.ResetTokenValidityDuration = 1 * time.Hour
	c.BcryptCost = bcrypt.DefaultCost
	c.FrontendURL = "http://localhost:3000"
	c.NATSURL = ""
	c.NotificationSubject = "gophauth.notifications"
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.Env == logging.EnvProd && c.SecretKey == defaultSecretKey {
		errs = append(errs, errors.New("default secret key is not allowed in prod"))
	}
	if c.EndpointAddrGRPC == "" {
		errs = append(errs, errors.New("grpc address is required"))
	}
	for name, d := range map[string]time.Duration{
		"access token validity":  c.AccessTokenValidityDuration,
		"refresh token validity": c.RefreshTokenValidityDuration,
		"email token validity":   c.EmailTokenValidityDuration,
		"reset token validity":   c.ResetTokenValidityDuration,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	return errors.Join(errs...)
}

// Load builds a Config from defaults, then overlays values from the JSON
// file named by -c/-config, environment variables and finally the flags in
// args (program name excluded).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args; it panics on invalid configuration.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
