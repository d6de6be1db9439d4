package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.UpstreamURL)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, 600*time.Millisecond, cfg.ThinkingDelay)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "http://localhost:3000", cfg.LocalProxyURL())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("GROQ_API_KEY", "secret")
	t.Setenv("GROQ_MODEL", "llama-3.1-8b-instant")
	t.Setenv("PARLEY_THINKING_DELAY", "1s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.Model)
	assert.Equal(t, time.Second, cfg.ThinkingDelay)
}

func TestLoadDotenvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GROQ_API_KEY=from-file\nSTATIC_DIR=/srv/www\n"), 0o644))
	t.Setenv("GROQ_API_KEY", "from-env")
	t.Setenv("STATIC_DIR", "")
	os.Unsetenv("STATIC_DIR")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "/srv/www", cfg.StaticDir)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
