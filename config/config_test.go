package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Example(t *testing.T) {
	cfg, err := Load("config.example.yaml")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.CacheTTLSeconds)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Database.EnableExclusion)
	assert.Equal(t, 30, cfg.Booking.CancellationCutoffMinutes)
	assert.Equal(t, 30*time.Second, cfg.Sweeper.Interval)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  dsn: \"file:test.db\"\n  driver: sqlite\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 0.50, cfg.Booking.DefaultCostPerMinute)
	assert.Equal(t, 240, cfg.Booking.MaxSessionMinutes)
	assert.Equal(t, 240, cfg.Booking.MaxReservationMinutes)
	assert.Equal(t, 5, cfg.Auth.LeewaySecs)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 10, cfg.Server.CacheTTLSeconds)
}

func TestApplyDefaults_CacheTTLCapped(t *testing.T) {
	cfg := Config{Server: ServerConfig{CacheTTLSeconds: 600}}
	cfg.ApplyDefaults()
	assert.Equal(t, MaxCacheTTLSeconds, cfg.Server.CacheTTLSeconds)

	cfg = Config{Server: ServerConfig{CacheTTLSeconds: 15}}
	cfg.ApplyDefaults()
	assert.Equal(t, 15, cfg.Server.CacheTTLSeconds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
