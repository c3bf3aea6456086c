package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/modelmint/mintkey/internal/errors"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return unchanged if we can't get home
		}
		return filepath.Join(home, path[2:])
	}

	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// Expand replaces variables in a string with their values.
// Supported variables:
//   - ${USER} - current username
//   - ${HOME} - user's home directory
//
// Note: Does NOT expand ~ - use ExpandPath for filesystem paths.
func Expand(s string) string {
	if s == "" {
		return s
	}

	result := s

	if strings.Contains(result, "${USER}") {
		result = strings.ReplaceAll(result, "${USER}", getUser())
	}

	if strings.Contains(result, "${HOME}") {
		result = strings.ReplaceAll(result, "${HOME}", getHome())
	}

	return result
}

// ExpandPath expands variables and ~, then makes the path absolute
// relative to the current working directory.
func ExpandPath(path string) (string, error) {
	expanded := ExpandTilde(Expand(path))
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// Resolve turns the configured key and env file settings into absolute paths.
//
//	private key: private_key, or <ssh_dir>/<key_name>
//	public key:  public_key, or <private key>.pub
//	env file:    env_file, relative to the working directory
func (c *Config) Resolve() (Paths, error) {
	var p Paths

	privateKey := c.PrivateKey
	if privateKey == "" {
		privateKey = filepath.Join(ExpandTilde(Expand(c.SSHDir)), c.KeyName)
	}

	var err error
	if p.PrivateKey, err = ExpandPath(privateKey); err != nil {
		return Paths{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't resolve private key path: "+privateKey,
			"Use an absolute path for private_key")
	}

	if c.PublicKey == "" {
		p.PublicKey = p.PrivateKey + ".pub"
	} else if p.PublicKey, err = ExpandPath(c.PublicKey); err != nil {
		return Paths{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't resolve public key path: "+c.PublicKey,
			"Use an absolute path for public_key")
	}

	if p.EnvFile, err = ExpandPath(c.EnvFile); err != nil {
		return Paths{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't resolve env file path: "+c.EnvFile,
			"Use an absolute path for env_file")
	}

	return p, nil
}

// getUser returns the current username for ${USER} expansion.
func getUser() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}

	// POSIX standard
	if name := os.Getenv("LOGNAME"); name != "" {
		return name
	}

	// Windows
	if name := os.Getenv("USERNAME"); name != "" {
		return name
	}

	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "user"
}

// getHome returns the home directory for ${HOME} expansion.
func getHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "~"
}
