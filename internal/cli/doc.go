// Package cli implements the mintkey command-line interface.
//
// Each command is a cobra.Command defined in commands.go and delegates to a
// plain function that takes its flags and an output writer, so the commands
// can be exercised without a terminal:
//
//	mintkey setup       - Normalize key permissions and write the .env block
//	mintkey status      - Show the COMMON_SSH_ values currently in .env
//	mintkey doctor      - Diagnose key, permission, and .env problems
//	mintkey version     - Print build information
//	mintkey completion  - Generate shell completion scripts
//
// # Configuration
//
// Every command loads .mintkey.yaml through the config package, then applies
// command flags on top. The resolved paths are absolute before any work
// starts.
//
// # Output
//
// Human output goes through ui.Printer and honors --quiet and --no-color.
// status and doctor can emit JSON (and status YAML) for scripts; JSON uses
// the envelope in json.go.
package cli
