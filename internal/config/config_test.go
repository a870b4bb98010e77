package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Cache.ShortTTL)
	assert.Equal(t, time.Hour, cfg.Cache.CatalogTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.DetailTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.InvitationTTL)
	assert.Equal(t, 25*time.Second, cfg.Realtime.Heartbeat)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
cache:
  driver: memory
  catalog_ttl: 30m
realtime:
  driver: local
security:
  rate_limit:
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Cache.CatalogTTL)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.NeedsRedis())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:      "production",
			Auth:     AuthConfig{JWTSecret: "secret"},
			Cache:    CacheConfig{Driver: CacheDriverMemory},
			Realtime: RealtimeConfig{Driver: RealtimeDriverLocal, BufferSize: 8},
		}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Auth.JWTSecret = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Cache.Driver = "memcached"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Realtime.Driver = "websocket"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Kafka.Enabled = true
	assert.Error(t, cfg.Validate())
}
