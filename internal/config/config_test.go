package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsRequireSecret(t *testing.T) {
	_, err := load(viper.New(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9999"
database:
  driver: memory
storage:
  driver: memory
auth:
  jwt_secret: s3cret
  token_ttl: 2h
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)

	// untouched defaults
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "notification.email", cfg.RabbitMQ.RoutingKey)
	assert.Equal(t, 4, cfg.Notifications.MaxWorkers)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadSize)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "from-env")
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "memory", cfg.Database.Driver)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "x")
	t.Setenv("DATABASE_DRIVER", "mongo")

	_, err := load(viper.New(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database driver")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, Name: "tf", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/tf?sslmode=disable", c.DSN())
}
