package conf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbachurski/taucheck/internal/conf"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := conf.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "natural", cfg.Order)
	assert.Equal(t, "loose", cfg.Verify)
	assert.Equal(t, 1, cfg.Processes)
	assert.Zero(t, cfg.Timeout)
	assert.False(t, cfg.Fatal)
}

func TestConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "taucheck.toml"), []byte(`
order = "filesize"
timeout = 2.5
processes = 4
fatal = true
`), 0644))

	cfg, err := conf.Load(configDir)
	require.NoError(t, err)

	assert.Equal(t, "filesize", cfg.Order)
	assert.Equal(t, 2.5, cfg.Timeout)
	assert.Equal(t, 4, cfg.Processes)
	assert.True(t, cfg.Fatal)
	assert.Equal(t, "loose", cfg.Verify, "unset keys keep their defaults")
}

func TestWorkingDirOverridesConfigDir(t *testing.T) {
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "taucheck.toml"), []byte("order = \"random\"\n"), 0644))
	t.Chdir(workDir)

	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "taucheck.toml"), []byte("order = \"lexicographical\"\nprocesses = 8\n"), 0644))

	cfg, err := conf.Load(configDir)
	require.NoError(t, err)

	assert.Equal(t, "random", cfg.Order)
	assert.Equal(t, 8, cfg.Processes, "keys only in the user file survive")
}

func TestEnvironmentOverridesFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "taucheck.toml"), []byte("order = \"random\"\ntimeout = 1.0\n"), 0644))

	t.Setenv("TAUCHECK_ORDER", "lexicographical")
	t.Setenv("TAUCHECK_TIMEOUT", "3.5")
	t.Setenv("TAUCHECK_FATAL", "true")

	cfg, err := conf.Load(configDir)
	require.NoError(t, err)

	assert.Equal(t, "lexicographical", cfg.Order)
	assert.Equal(t, 3.5, cfg.Timeout)
	assert.True(t, cfg.Fatal)
}

func TestInvalidEnvValueIgnored(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TAUCHECK_PROCESSES", "lots")

	cfg, err := conf.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Processes)
}

func TestDotEnvFile(t *testing.T) {
	os.Unsetenv("TAUCHECK_VERIFY")
	t.Cleanup(func() { os.Unsetenv("TAUCHECK_VERIFY") })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TAUCHECK_VERIFY=identical\n"), 0644))
	t.Chdir(dir)

	cfg, err := conf.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "identical", cfg.Verify)
}

func TestBrokenConfigFileFails(t *testing.T) {
	t.Chdir(t.TempDir())
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "taucheck.toml"), []byte("order = [unclosed\n"), 0644))

	_, err := conf.Load(configDir)
	require.Error(t, err)
}
