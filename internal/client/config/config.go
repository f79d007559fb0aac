package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the GophAuth CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - SessionFile: SQLite file the login session is kept in.
//   - RequestTimeout: upper bound for a single command's server round trip.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	SessionFile         string
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.SessionFile = "gophauth_session.db"
	c.RequestTimeout = 10 * time.Second
}

// Validate reports settings the CLI cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerEndpointAddr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if c.SessionFile == "" {
		errs = append(errs, errors.New("session file is required"))
	}
	if c.OnlineCheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}

// Load constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags in args (program name excluded).
// Later sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
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
