package config

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/util"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but mintkey only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade mintkey to a newer release")
	}

	if err := ValidateKeyName(cfg.KeyName); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.EnvFile) == "" {
		return errors.New(errors.ErrConfig,
			"env_file can't be empty",
			"Set env_file to the .env file to update, e.g. env_file: .env")
	}

	switch cfg.OnStepError {
	case StepErrorFail, StepErrorWarn:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid on_step_error value", cfg.OnStepError),
			didYouMean(cfg.OnStepError, []string{StepErrorFail, StepErrorWarn})+
				"Use 'fail' to stop on chmod/read/write errors or 'warn' to log them and continue")
	}

	if cfg.Lock.Enabled && cfg.Lock.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("lock.timeout must be positive, got %s", cfg.Lock.Timeout),
			"Try something like 5s or 1m, or disable locking with lock.enabled: false")
	}

	switch cfg.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid output.color", cfg.Output.Color),
			didYouMean(cfg.Output.Color, []string{ColorAuto, ColorAlways, ColorNever})+
				"Pick from: auto, always, never")
	}

	return nil
}

// ValidateKeyName checks that a key name is usable both as a filename and as
// the value of COMMON_SSH_KEY_NAME.
func ValidateKeyName(name string) error {
	if name == "" {
		return errors.New(errors.ErrConfig,
			"key_name can't be empty",
			"Set key_name, e.g. key_name: "+DefaultKeyName)
	}

	for _, r := range name {
		if unicode.IsSpace(r) || r == '=' || r == '/' || r == '\\' || unicode.IsControl(r) {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("key_name %q contains %q", name, r),
				"Key names may not contain whitespace, '=', or path separators")
		}
	}

	if name == "." || name == ".." {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("key_name %q isn't a valid file name", name),
			"Pick a plain name like "+DefaultKeyName)
	}

	return nil
}

// didYouMean returns a "Did you mean X? " prefix for a near-miss value, or "".
func didYouMean(value string, options []string) string {
	if s := util.SuggestSimilar(value, options, 1); len(s) > 0 {
		return fmt.Sprintf("Did you mean '%s'? ", s[0])
	}
	return ""
}
