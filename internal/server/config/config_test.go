package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "local", c.Env)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, ":8081", c.EndpointAddrHTTP)
	assert.Empty(t, c.DatabaseDSN)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, "gophauth", c.Issuer)
	assert.Equal(t, 1*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, 720*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 24*time.Hour, c.EmailTokenValidityDuration)
	assert.Equal(t, 1*time.Hour, c.ResetTokenValidityDuration)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, "http://localhost:3000", c.FrontendURL)
	assert.Empty(t, c.NATSURL)
	assert.Equal(t, "gophauth.notifications", c.NotificationSubject)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "empty secret", mutate: func(c *Config) { c.SecretKey = "" }, errMsg: "secret key is required"},
		{name: "empty grpc address", mutate: func(c *Config) { c.EndpointAddrGRPC = "" }, errMsg: "grpc address is required"},
		{name: "zero access ttl", mutate: func(c *Config) { c.AccessTokenValidityDuration = 0 }, errMsg: "access token validity must be positive"},
		{name: "negative reset ttl", mutate: func(c *Config) { c.ResetTokenValidityDuration = -time.Minute }, errMsg: "reset token validity must be positive"},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.BcryptCost = 1 }, errMsg: "bcrypt cost must be within"},
		{name: "default secret in prod", mutate: func(c *Config) { c.Env = "prod" }, errMsg: "default secret key is not allowed in prod"},
		{name: "bcrypt cost too high", mutate: func(c *Config) { c.BcryptCost = 40 }, errMsg: "bcrypt cost must be within"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_ProdWithOwnSecret(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.Env = "prod"
	c.SecretKey = "a-real-secret"

	assert.NoError(t, c.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"endpoint_addr_grpc": ":7000",
		"secret_key":         "from-json",
		"issuer":             "json-issuer",
	})

	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("TOKEN_ISSUER", "env-issuer")

	cfg, err := Load([]string{"-c", path, "-i", "flag-issuer"})
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.EndpointAddrGRPC)
	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, "flag-issuer", cfg.Issuer)
	assert.Equal(t, 720*time.Hour, cfg.RefreshTokenValidityDuration)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing json file", func(t *testing.T) {
		_, err := Load([]string{"-c", "/definitely/not/here.json"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "json config")
	})

	t.Run("bad env duration", func(t *testing.T) {
		t.Setenv("ACCESS_TOKEN_TTL", "soon")
		_, err := Load(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "env config")
	})

	t.Run("bad flag value", func(t *testing.T) {
		_, err := Load([]string{"-b", "many"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flags")
	})

	t.Run("invalid result", func(t *testing.T) {
		_, err := Load([]string{"-t", "0s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access token validity")
	})
}

func TestLoadConfig_PanicsOnInvalid(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("BCRYPT_COST", "2")
	require.Panics(t, func() { LoadConfig() })
}
