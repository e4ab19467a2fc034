package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api", cfg.APIURL)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 15*time.Second, cfg.ProbeInterval)
	assert.Equal(t, filepath.Join(home, ".roomtour", "queue.db"), cfg.QueuePath)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, configFileName),
		[]byte("api_url: http://file.test/api\nqueue_path: /tmp/q.db\n"), 0o600))

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://file.test/api", cfg.APIURL)
	assert.Equal(t, "/tmp/q.db", cfg.QueuePath)

	t.Setenv("ROOMTOUR_API_URL", "http://env.test/api")
	t.Setenv("ROOMTOUR_TIMEOUT", "3s")
	cfg, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://env.test/api", cfg.APIURL, "env wins over the file")
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "explicit file must exist")

	t.Setenv("ROOMTOUR_PROBE_INTERVAL", "0s")
	_, err = loadConfig("")
	assert.ErrorContains(t, err, "probe_interval")
}
