package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	req := require.New(t)

	// Given
	t.Setenv("CONFIG_ENV", "does-not-exist")

	// When
	cfg, err := Load(nil)

	// Then
	req.NoError(err)
	req.Equal("release", cfg.Mode)
	req.Equal(8080, cfg.Port)
	req.Equal(int64(32768), cfg.ReadLimit)
	req.Equal(54*time.Second, cfg.PingPeriod)
	req.Equal(10*time.Second, cfg.WriteWait)
	req.Equal(64, cfg.SendBuffer)
	req.Equal(10, cfg.TextRateLimit)
	req.Equal(time.Second, cfg.TextRateInterval)
	req.Empty(cfg.RedisAddr)
	req.Equal("roomchat", cfg.RedisChannel)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	req := require.New(t)

	// Given a config file, an env override and a changed flag
	path := filepath.Join(t.TempDir(), "custom.yaml")
	req.NoError(os.WriteFile(path, []byte("mode: debug\nport: 9000\nsend_buffer: 8\nping_period: 30s\n"), 0o600))
	t.Setenv("ROOMCHAT_SEND_BUFFER", "16")
	t.Setenv("ROOMCHAT_REDIS_ADDR", "localhost:6379")

	fs := Flags()
	req.NoError(fs.Parse([]string{"--config", path, "--port", "9100"}))

	// When
	cfg, err := Load(fs)

	// Then
	req.NoError(err)
	req.Equal("debug", cfg.Mode)
	req.Equal(9100, cfg.Port)
	req.Equal(16, cfg.SendBuffer)
	req.Equal(30*time.Second, cfg.PingPeriod)
	req.Equal("localhost:6379", cfg.RedisAddr)
}

func TestLoad_UnchangedFlagsKeepFileValues(t *testing.T) {
	req := require.New(t)

	// Given
	path := filepath.Join(t.TempDir(), "c.yaml")
	req.NoError(os.WriteFile(path, []byte("port: 7000\n"), 0o600))
	fs := Flags()
	req.NoError(fs.Parse([]string{"--config", path}))

	// When
	cfg, err := Load(fs)

	// Then
	req.NoError(err)
	req.Equal(7000, cfg.Port)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	req := require.New(t)

	// Given
	t.Setenv("CONFIG_ENV", "does-not-exist")
	t.Setenv("ROOMCHAT_PORT", "70000")

	// When
	_, err := Load(nil)

	// Then
	req.Error(err)
	req.Contains(err.Error(), "invalid config")
}
