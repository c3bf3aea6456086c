package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelmint/mintkey/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "modelmint-common-key", cfg.KeyName)
	assert.Equal(t, "~/.ssh", cfg.SSHDir)
	assert.Empty(t, cfg.PrivateKey)
	assert.Empty(t, cfg.PublicKey)
	assert.Equal(t, ".env", cfg.EnvFile)
	assert.Equal(t, StepErrorFail, cfg.OnStepError)
	assert.True(t, cfg.Strict())
	assert.False(t, cfg.Backup)
	assert.True(t, cfg.Lock.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Lock.Timeout)
	assert.Equal(t, ColorAuto, cfg.Output.Color)
	assert.NoError(t, Validate(cfg))
}

func TestStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OnStepError = StepErrorWarn
	assert.False(t, cfg.Strict())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
key_name: team-gpu-key
ssh_dir: /opt/keys
env_file: config/.env
on_step_error: warn
backup: true
lock:
  enabled: false
  timeout: 30s
output:
  color: never
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "team-gpu-key", cfg.KeyName)
	assert.Equal(t, "/opt/keys", cfg.SSHDir)
	assert.Equal(t, "config/.env", cfg.EnvFile)
	assert.Equal(t, StepErrorWarn, cfg.OnStepError)
	assert.True(t, cfg.Backup)
	assert.False(t, cfg.Lock.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Lock.Timeout)
	assert.Equal(t, ColorNever, cfg.Output.Color)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("key_name: other-key\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "other-key", cfg.KeyName)
	assert.Equal(t, "~/.ssh", cfg.SSHDir)
	assert.Equal(t, ".env", cfg.EnvFile)
	assert.Equal(t, StepErrorFail, cfg.OnStepError)
	assert.True(t, cfg.Lock.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Lock.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("key_name: from-file\n"), 0644))

	t.Setenv("MINTKEY_KEY_NAME", "from-env")
	t.Setenv("MINTKEY_ON_STEP_ERROR", "WARN")
	t.Setenv("MINTKEY_LOCK_TIMEOUT", "2s")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.KeyName)
	assert.Equal(t, StepErrorWarn, cfg.OnStepError, "policy should be normalized to lower case")
	assert.Equal(t, 2*time.Second, cfg.Lock.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("key_name: [unclosed\n"), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("version: 1\n"), 0644))

		found, err := Find(configPath)
		require.NoError(t, err)
		assert.Equal(t, configPath, found)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Specified config file not found")
	})

	t.Run("current directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("HOME", t.TempDir())
		configPath := filepath.Join(dir, ConfigFileName)
		require.NoError(t, os.WriteFile(configPath, []byte("version: 1\n"), 0644))
		t.Chdir(dir)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Base(configPath), filepath.Base(found))
	})

	t.Run("parent directory below git root", func(t *testing.T) {
		root := t.TempDir()
		t.Setenv("HOME", t.TempDir())
		require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("version: 1\n"), 0644))
		sub := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(sub, 0755))
		t.Chdir(sub)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, ConfigFileName, filepath.Base(found))
	})

	t.Run("global config", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		globalDir := filepath.Join(home, GlobalConfigDir)
		require.NoError(t, os.MkdirAll(globalDir, 0755))
		globalPath := filepath.Join(globalDir, GlobalConfigFile)
		require.NoError(t, os.WriteFile(globalPath, []byte("version: 1\n"), 0644))

		work := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(work, ".git"), 0755))
		t.Chdir(work)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, globalPath, found)
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		work := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(work, ".git"), 0755))
		t.Chdir(work)

		found, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestLoadOrDefault_NoFileUsesEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	work := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(work, ".git"), 0755))
	t.Chdir(work)
	t.Setenv("MINTKEY_ENV_FILE", "deploy.env")

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "deploy.env", cfg.EnvFile)
	assert.Equal(t, DefaultKeyName, cfg.KeyName)
}
