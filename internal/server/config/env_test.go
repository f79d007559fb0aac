package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Run("set variables override", func(t *testing.T) {
		t.Setenv("APP_ENV", "prod")
		t.Setenv("DATABASE_DSN", "postgres://u:p@db:5432/auth")
		t.Setenv("REFRESH_TOKEN_TTL", "48h")
		t.Setenv("BCRYPT_COST", "12")
		t.Setenv("NATS_URL", "nats://nats:4222")

		var cfg Config
		cfg.LoadDefaults()
		require.NoError(t, parseEnv(&cfg))

		assert.Equal(t, "prod", cfg.Env)
		assert.Equal(t, "postgres://u:p@db:5432/auth", cfg.DatabaseDSN)
		assert.Equal(t, 48*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, "nats://nats:4222", cfg.NATSURL)
	})

	t.Run("unset variables keep values", func(t *testing.T) {
		cfg := Config{EndpointAddrGRPC: ":1234", AccessTokenValidityDuration: time.Minute}
		require.NoError(t, parseEnv(&cfg))

		assert.Equal(t, ":1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("malformed value", func(t *testing.T) {
		t.Setenv("BCRYPT_COST", "twelve")
		var cfg Config
		require.Error(t, parseEnv(&cfg))
	})
}
