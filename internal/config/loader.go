package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/modelmint/mintkey/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".mintkey.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/mintkey"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix is prepended to every environment override (MINTKEY_ENV_FILE, ...).
	EnvPrefix = "MINTKEY"
)

// Load reads config from the specified path, layered over defaults and
// MINTKEY_* environment overrides.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Create "+ConfigFileName+" or point --config at an existing file")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .mintkey.yaml in current directory
// 3. .mintkey.yaml in parent directories (stops at git root or home)
// 4. ~/.config/mintkey/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for !isGitRoot(dir) {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults
// (still honoring MINTKEY_* overrides) if no file exists.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// newViper returns a viper instance with defaults and env overrides wired up.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults mirrors DefaultConfig so env-only keys are visible to Unmarshal.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("key_name", def.KeyName)
	v.SetDefault("ssh_dir", def.SSHDir)
	v.SetDefault("private_key", "")
	v.SetDefault("public_key", "")
	v.SetDefault("env_file", def.EnvFile)
	v.SetDefault("on_step_error", def.OnStepError)
	v.SetDefault("backup", def.Backup)
	v.SetDefault("lock.enabled", def.Lock.Enabled)
	v.SetDefault("lock.timeout", def.Lock.Timeout.String())
	v.SetDefault("output.color", def.Output.Color)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "the environment"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where)
	}

	cfg.KeyName = strings.TrimSpace(cfg.KeyName)
	cfg.OnStepError = strings.ToLower(strings.TrimSpace(cfg.OnStepError))
	cfg.Output.Color = strings.ToLower(strings.TrimSpace(cfg.Output.Color))

	return cfg, nil
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}
