package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3389, cfg.SessionPort)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 5, cfg.ProbeConcurrency)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "keyring", cfg.VaultBackend)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, filepath.Join(cfg.DataDir, DefaultRegistryFileName), cfg.RegistryPath)
	assert.Equal(t, filepath.Join(cfg.DataDir, DefaultVaultFileName), cfg.VaultPath)
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "data_dir: " + dir + "\n" +
		"session_port: 3390\n" +
		"probe_timeout: 5s\n" +
		"vault_backend: file\n" +
		"fullscreen: false\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 3390, cfg.SessionPort)
	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, "file", cfg.VaultBackend)
	assert.False(t, cfg.Fullscreen)
	// Unset fields keep their defaults.
	assert.Equal(t, 5, cfg.ProbeConcurrency)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session_port: 3390\n"), 0600))

	t.Setenv("RDPMEN_SESSION_PORT", "3391")
	t.Setenv("RDPMEN_PROBE_CONCURRENCY", "9")
	t.Setenv("RDPMEN_VAULT_PASSPHRASE", "hunter2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3391, cfg.SessionPort)
	assert.Equal(t, 9, cfg.ProbeConcurrency)
	assert.Equal(t, "hunter2", cfg.VaultPassphrase)
}

func TestMalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{invalid: ["), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
