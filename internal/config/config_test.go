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
	c, err := load(t.TempDir(), ".env.test")
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Port)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, "first", c.TieBreak)
	assert.Equal(t, time.Hour, c.LookupCacheTTL)
	assert.Equal(t, 10*time.Minute, c.ReloadInterval)
	assert.Equal(t, 500, c.BatchMaxPoints)
	assert.Equal(t, 8, c.BatchWorkers)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".env.test"), []byte(
		"PORT=:9090\nTIE_BREAK=smallest_area\nLOOKUP_CACHE_TTL=15m\nBATCH_WORKERS=2\n",
	), 0o600)
	require.NoError(t, err)

	t.Setenv("BATCH_WORKERS", "4")
	t.Setenv("RELOAD_INTERVAL", "0s")

	c, err := load(dir, ".env.test")
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Port)
	assert.Equal(t, "smallest_area", c.TieBreak)
	assert.Equal(t, 15*time.Minute, c.LookupCacheTTL)
	assert.Equal(t, 4, c.BatchWorkers, "environment wins over the file")
	assert.Equal(t, time.Duration(0), c.ReloadInterval)
}

func TestValidate(t *testing.T) {
	c, err := load(t.TempDir(), ".env.test")
	require.NoError(t, err)

	bad := c
	bad.BatchMaxPoints = 0
	assert.Error(t, bad.Validate())

	bad = c
	bad.ReloadInterval = -time.Second
	assert.Error(t, bad.Validate())
}
