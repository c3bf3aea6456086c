package cli

import (
	"github.com/modelmint/mintkey/internal/errors"
	"github.com/spf13/cobra"
)

// setupCmd checks the key pair and writes the .env block
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Fix key permissions and record the key in .env",
	Long: `Prepare the common SSH key and record it in the project's env file.

Steps:
  1. Check that the private and public key exist
  2. Set permissions to 0600 (private) and 0644 (public)
  3. Read the public key
  4. Replace every COMMON_SSH_* line in the env file with a fresh block

Running it again with the same key leaves the env file unchanged.

Examples:
  mintkey setup
  mintkey setup --key-name team-gpu-key
  mintkey setup --env-file deploy/.env --backup
  mintkey setup --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setupCommand(cmd.Context(), cmd.OutOrStdout(), setupOpts)
	},
}

// statusCmd shows what the env file currently holds
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the COMMON_SSH_* values in .env",
	Long: `Show the COMMON_SSH_* values currently in the env file and whether they
still match the key pair on disk.

Examples:
  mintkey status
  mintkey status --format json
  mintkey status --env-file deploy/.env --format yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(cmd.OutOrStdout(), statusPaths, statusFormat)
	},
}

// doctorCmd diagnoses key and env file issues
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose key and .env issues",
	Long: `Run diagnostic checks to identify and fix common issues.

Checks:
  - Configuration validity
  - Key pair presence and permissions
  - Public key format and pair match
  - COMMON_SSH_* block in the env file
  - ~/.ssh/config hosts using the key
  - ssh-keygen and ssh on PATH

Examples:
  mintkey doctor
  mintkey doctor --fix
  mintkey doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.OutOrStdout(), doctorPaths, doctorFix, doctorJSON)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for mintkey.

Examples:
  # Bash
  mintkey completion bash > /etc/bash_completion.d/mintkey

  # Zsh
  mintkey completion zsh > "${fpath[1]}/_mintkey"

  # Fish
  mintkey completion fish > ~/.config/fish/completions/mintkey.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return errors.New(errors.ErrUsage,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(completionCmd)
}
