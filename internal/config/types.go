package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// DefaultKeyName is the name the key pair is registered under with cloud providers.
// It doubles as the key filename inside SSHDir.
const DefaultKeyName = "modelmint-common-key"

// Step error policies for chmod/read/write failures during setup.
const (
	// StepErrorFail surfaces step failures as errors and aborts the run.
	StepErrorFail = "fail"
	// StepErrorWarn logs step failures and keeps going.
	StepErrorWarn = "warn"
)

// Color modes for terminal output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the complete .mintkey.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// KeyName is written as COMMON_SSH_KEY_NAME and names the key files.
	KeyName string `yaml:"key_name" mapstructure:"key_name"`

	// SSHDir holds the key pair. Supports ~, ${HOME} and ${USER}.
	SSHDir string `yaml:"ssh_dir" mapstructure:"ssh_dir"`

	// PrivateKey overrides <ssh_dir>/<key_name>.
	PrivateKey string `yaml:"private_key,omitempty" mapstructure:"private_key"`

	// PublicKey overrides <private_key>.pub.
	PublicKey string `yaml:"public_key,omitempty" mapstructure:"public_key"`

	// EnvFile is the environment file that receives the COMMON_SSH_ block.
	EnvFile string `yaml:"env_file" mapstructure:"env_file"`

	// OnStepError is either "fail" or "warn".
	OnStepError string `yaml:"on_step_error" mapstructure:"on_step_error"`

	// Backup writes <env_file>.bak with the previous contents before replacing.
	Backup bool `yaml:"backup" mapstructure:"backup"`

	Lock   LockConfig   `yaml:"lock" mapstructure:"lock"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// LockConfig controls the advisory lock held while the env file is rewritten.
type LockConfig struct {
	// Enabled toggles locking on/off.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Timeout is how long to wait for a lock before giving up.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// OutputConfig controls terminal output.
type OutputConfig struct {
	// Color is auto, always, or never.
	Color string `yaml:"color" mapstructure:"color"`
}

// Paths are the fully resolved, absolute file locations used by a run.
type Paths struct {
	PrivateKey string
	PublicKey  string
	EnvFile    string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:     CurrentConfigVersion,
		KeyName:     DefaultKeyName,
		SSHDir:      "~/.ssh",
		EnvFile:     ".env",
		OnStepError: StepErrorFail,
		Backup:      false,
		Lock: LockConfig{
			Enabled: true,
			Timeout: 5 * time.Second,
		},
		Output: OutputConfig{
			Color: ColorAuto,
		},
	}
}

// Strict reports whether step failures should abort the run.
func (c *Config) Strict() bool {
	return c.OnStepError != StepErrorWarn
}
