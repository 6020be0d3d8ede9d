package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ServerAddress)
	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, filepath.Join(dir, "token"), cfg.TokenPath)
	assert.Equal(t, 5*time.Minute, cfg.PasswordCacheTTL)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("SERVER_ADDRESS", "diary.example.com")
	t.Setenv("ENABLE_TLS", "true")
	t.Setenv("PASSWORD_CACHE_TTL", "0s")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://diary.example.com", cfg.BaseURL())
	assert.Zero(t, cfg.PasswordCacheTTL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("PASSWORD_CACHE_TTL", "-1m")

	_, err := Load(viper.New())
	assert.Error(t, err)
}
