package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/modelmint/mintkey/internal/config"
	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/logger"
	"github.com/modelmint/mintkey/internal/ui"
	"github.com/modelmint/mintkey/internal/util"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	verbose bool
	quiet   bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "mintkey",
	Short: "Wire a shared SSH key into a project's .env",
	Long: `mintkey prepares the common SSH key used to reach GPU instances.

It checks that the key pair exists in ~/.ssh, fixes the file permissions,
and records the key in the project's .env file as COMMON_SSH_* variables
so provisioning scripts can register and use it.

Examples:
  mintkey setup
  mintkey setup --env-file deploy/.env --backup
  mintkey status --format json
  mintkey doctor --fix`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	DisableSuggestions: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applyGlobalFlags()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search for "+config.ConfigFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command. Unknown commands come back as a structured
// error with a suggestion.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && isUnknownCommandError(err) {
		return unknownCommandError(err)
	}
	return err
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Quiet reports whether --quiet was given.
func Quiet() bool {
	return quiet
}

func applyGlobalFlags() {
	if verbose {
		logger.SetDebug(true)
	}
	if noColor {
		ui.DisableColors()
	}
}

// applyColor sets the color mode from config unless --no-color already won.
func applyColor(cfg *config.Config) {
	if noColor {
		ui.DisableColors()
		return
	}
	ui.SetColorMode(cfg.Output.Color, os.Stdout)
}

// PrintError writes err for a human. ExitErrors were reported by the command
// itself and print nothing.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if _, ok := errors.GetExitCode(err); ok {
		return
	}

	var mkErr *errors.Error
	if stderrors.As(err, &mkErr) {
		fmt.Fprint(w, mkErr.Error())
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.SymbolFail, strings.TrimSpace(err.Error()))
}

func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "mintkey"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

func unknownCommandError(err error) error {
	msg := strings.SplitN(err.Error(), "\n", 2)[0]
	suggestion := "Run 'mintkey --help' to see available commands"

	if name := extractUnknownCommand(err); name != "" {
		if similar := util.SuggestSimilar(name, commandNames(), 1); len(similar) > 0 {
			suggestion = fmt.Sprintf("Did you mean 'mintkey %s'?", similar[0])
		}
	}

	return errors.New(errors.ErrUsage, msg, suggestion)
}

func commandNames() []string {
	var names []string
	for _, c := range rootCmd.Commands() {
		if c.IsAvailableCommand() {
			names = append(names, c.Name())
		}
	}
	return names
}
