package cli

import (
	"fmt"
	"strings"

	"github.com/modelmint/mintkey/internal/config"
	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/setup"
	"github.com/modelmint/mintkey/internal/util"
	"github.com/spf13/cobra"
)

// Output formats for status.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var outputFormats = []string{FormatText, FormatJSON, FormatYAML}

// PathFlags holds the key and env file overrides shared by setup, status, and doctor.
type PathFlags struct {
	KeyName    string
	SSHDir     string
	PrivateKey string
	PublicKey  string
	EnvFile    string
}

// AddPathFlags registers --key-name, --ssh-dir, --private-key, --public-key, and --env-file.
func AddPathFlags(cmd *cobra.Command, flags *PathFlags) {
	cmd.Flags().StringVar(&flags.KeyName, "key-name", "", "key pair name (default "+config.DefaultKeyName+")")
	cmd.Flags().StringVar(&flags.SSHDir, "ssh-dir", "", "directory holding the key pair (default ~/.ssh)")
	cmd.Flags().StringVar(&flags.PrivateKey, "private-key", "", "private key path (default <ssh-dir>/<key-name>)")
	cmd.Flags().StringVar(&flags.PublicKey, "public-key", "", "public key path (default <private-key>.pub)")
	cmd.Flags().StringVar(&flags.EnvFile, "env-file", "", "env file to update (default .env)")
}

// Apply overrides cfg with every flag that was set.
func (f PathFlags) Apply(cfg *config.Config) {
	if f.KeyName != "" {
		cfg.KeyName = f.KeyName
	}
	if f.SSHDir != "" {
		cfg.SSHDir = f.SSHDir
	}
	if f.PrivateKey != "" {
		cfg.PrivateKey = f.PrivateKey
	}
	if f.PublicKey != "" {
		cfg.PublicKey = f.PublicKey
	}
	if f.EnvFile != "" {
		cfg.EnvFile = f.EnvFile
	}
}

// loadConfig loads the config, applies overrides, validates, and resolves paths.
// The override hook runs before validation so flag values are checked too.
func loadConfig(flags PathFlags, override func(*config.Config)) (*config.Config, config.Paths, error) {
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, config.Paths{}, err
	}

	flags.Apply(cfg)
	if override != nil {
		override(cfg)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, config.Paths{}, err
	}
	applyColor(cfg)

	paths, err := cfg.Resolve()
	if err != nil {
		return nil, config.Paths{}, err
	}
	return cfg, paths, nil
}

// keyPair builds the key pair the resolved config points at.
func keyPair(cfg *config.Config, paths config.Paths) setup.KeyPair {
	return setup.KeyPair{
		Name:        cfg.KeyName,
		PrivatePath: paths.PrivateKey,
		PublicPath:  paths.PublicKey,
	}
}

// ParseFormat validates an output format flag. Empty means text.
func ParseFormat(flag string) (string, error) {
	if flag == "" {
		return FormatText, nil
	}

	format := strings.ToLower(flag)
	for _, f := range outputFormats {
		if f == format {
			return format, nil
		}
	}

	suggestion := "Use one of: " + strings.Join(outputFormats, ", ")
	if similar := util.SuggestSimilar(format, outputFormats, 1); len(similar) > 0 {
		suggestion = fmt.Sprintf("Did you mean '%s'? %s", similar[0], suggestion)
	}
	return "", errors.New(errors.ErrUsage,
		fmt.Sprintf("'%s' isn't an output format", flag),
		suggestion)
}
