package doctor

import (
	"fmt"

	"github.com/modelmint/mintkey/internal/config"
)

// ConfigFileCheck reports which config file is in effect. Running without
// one is fine; defaults apply.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run() CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %v", summarize(err)),
			Suggestion: "Check the --config path and its permissions",
		}
	}

	if path == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No " + config.ConfigFileName + " found, using defaults",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

func (c *ConfigFileCheck) Fix() error {
	return nil
}

// ConfigValidCheck loads the config, environment overrides included, and validates it.
type ConfigValidCheck struct {
	ConfigPath string
}

func (c *ConfigValidCheck) Name() string     { return "config_valid" }
func (c *ConfigValidCheck) Category() string { return CategoryConfig }

func (c *ConfigValidCheck) Run() CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %v", summarize(err)),
			Suggestion: "Check the YAML syntax and any MINTKEY_* environment variables",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Config error: %v", summarize(err)),
			Suggestion: "Fix the values in your " + config.ConfigFileName,
		}
	}

	msg := fmt.Sprintf("Config valid (key %s, on_step_error=%s)", cfg.KeyName, cfg.OnStepError)
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: msg,
	}
}

func (c *ConfigValidCheck) Fix() error {
	return nil // Config issues require manual intervention
}

// NewConfigChecks creates all config-related checks.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigValidCheck{ConfigPath: configPath},
	}
}
