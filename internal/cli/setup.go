package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/modelmint/mintkey/internal/config"
	"github.com/modelmint/mintkey/internal/envfile"
	"github.com/modelmint/mintkey/internal/logger"
	"github.com/modelmint/mintkey/internal/setup"
	"github.com/modelmint/mintkey/internal/ui"
	"github.com/modelmint/mintkey/internal/util"
)

// SetupFlags holds the flags for mintkey setup.
type SetupFlags struct {
	PathFlags
	OnStepError string
	Backup      bool
	NoLock      bool
	DryRun      bool
	Yes         bool
}

var setupOpts SetupFlags

func init() {
	AddPathFlags(setupCmd, &setupOpts.PathFlags)
	setupCmd.Flags().StringVar(&setupOpts.OnStepError, "on-step-error", "", "on chmod/read/write failure: fail or warn (default fail)")
	setupCmd.Flags().BoolVar(&setupOpts.Backup, "backup", false, "save the previous env file as <env-file>.bak")
	setupCmd.Flags().BoolVar(&setupOpts.NoLock, "no-lock", false, "don't take the advisory lock on the env file")
	setupCmd.Flags().BoolVar(&setupOpts.DryRun, "dry-run", false, "show what would change without touching any file")
	setupCmd.Flags().BoolVarP(&setupOpts.Yes, "yes", "y", false, "replace an existing block without asking")
}

// setupCommand implements mintkey setup.
func setupCommand(ctx context.Context, w io.Writer, flags SetupFlags) error {
	cfg, paths, err := loadConfig(flags.PathFlags, func(cfg *config.Config) {
		if flags.OnStepError != "" {
			cfg.OnStepError = flags.OnStepError
		}
		if flags.Backup {
			cfg.Backup = true
		}
		if flags.NoLock {
			cfg.Lock.Enabled = false
		}
	})
	if err != nil {
		return err
	}

	log := logger.NewEnvLogger("[setup]")
	opts := setup.Options{
		KeyName:     cfg.KeyName,
		Paths:       paths,
		Strict:      cfg.Strict(),
		Backup:      cfg.Backup,
		Lock:        cfg.Lock.Enabled,
		LockTimeout: cfg.Lock.Timeout,
		DryRun:      flags.DryRun,
		Logger:      log,
	}
	if !flags.Yes && !Quiet() && ui.Interactive() {
		opts.Confirm = confirmReplace
	}

	p := ui.NewPrinter(w, Quiet())
	title := "mintkey setup"
	if flags.DryRun {
		title += " (dry run)"
	}
	p.Line(strings.TrimSuffix(ui.RenderHeader(ui.HeaderInfo{
		Title:   title,
		Version: formatVersion(version),
		Detail:  paths.EnvFile,
	}), "\n"))

	res, err := setup.Run(ctx, opts)
	if err != nil {
		if res != nil {
			log.Debug("stopped at %s", res.State)
		}
		return err
	}

	renderSetupReport(p, res)
	return nil
}

// confirmReplace asks before overwriting a block that holds different values.
func confirmReplace(current, next envfile.Block) (bool, error) {
	return ui.Confirm(
		"Replace the existing "+envfile.Prefix+" block?",
		strings.Join(blockDiff(current, next), "\n"))
}

// blockDiff lists the variables whose values differ between two blocks.
// An empty want field is treated as unknown and never reported.
func blockDiff(have, want envfile.Block) []string {
	var diffs []string
	if want.KeyName != "" && have.KeyName != want.KeyName {
		diffs = append(diffs, fmt.Sprintf("%s: %s -> %s", envfile.KeyNameVar, orNone(have.KeyName), want.KeyName))
	}
	if want.PublicKey != "" && have.PublicKey != want.PublicKey {
		diffs = append(diffs, envfile.PublicKeyVar+": different key")
	}
	if want.PrivateKeyPath != "" && have.PrivateKeyPath != want.PrivateKeyPath {
		diffs = append(diffs, fmt.Sprintf("%s: %s -> %s", envfile.PrivateKeyPathVar, orNone(have.PrivateKeyPath), want.PrivateKeyPath))
	}
	return diffs
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func renderSetupReport(p *ui.Printer, res *setup.Result) {
	p.Status(ui.StatusSuccess, "Found key pair %s", res.Keys.Name)

	if res.DryRun {
		p.Status(ui.StatusSkipped, "Permissions left alone (dry run)")
	} else if res.Permissions != nil {
		p.Status(ui.StatusSuccess, "%s", describePermissions(res.Permissions))
	}

	switch {
	case res.Info != nil:
		p.Status(ui.StatusSuccess, "Read public key (%s)", res.Info.Type)
	case res.PublicKey != "":
		p.Status(ui.StatusSuccess, "Read public key")
	}

	switch {
	case res.Skipped:
		p.Status(ui.StatusSkipped, "Left %s unchanged", res.EnvFile)
	case res.Update == nil:
		p.Status(ui.StatusWarning, "%s was not updated", res.EnvFile)
	case res.DryRun:
		renderDryRun(p, res)
	default:
		p.Status(ui.StatusSuccess, "%s", describeUpdate(res.Update))
		if res.Update.BackupPath != "" {
			p.Status(ui.StatusSuccess, "Previous contents saved to %s", res.Update.BackupPath)
		}
	}

	if n := len(res.Warnings); n > 0 {
		p.Status(ui.StatusWarning, "Finished with %d %s", n, util.Pluralize(n, "warning", "warnings"))
	}

	p.Blank()
	p.Line(strings.TrimSuffix(ui.RenderKeyValues(reportRows(res)), "\n"))

	if res.Skipped || res.DryRun || res.Update == nil {
		return
	}

	p.Blank()
	p.Section("Next steps")
	p.Numbered(nextSteps(res))
}

func describePermissions(changes []setup.PermissionChange) string {
	changed := 0
	for _, c := range changes {
		if c.Changed {
			changed++
		}
	}
	modes := fmt.Sprintf("%04o private, %04o public", setup.PrivateKeyPerm, setup.PublicKeyPerm)
	if changed == 0 {
		return "Permissions already " + modes
	}
	return fmt.Sprintf("Permissions set to %s (%d %s changed)", modes, changed, util.Pluralize(changed, "file", "files"))
}

func describeUpdate(u *envfile.Result) string {
	switch {
	case u.Created:
		return "Created " + u.Path
	case !u.Changed:
		return u.Path + " already up to date"
	case len(u.Removed) > 0:
		n := len(u.Removed)
		return fmt.Sprintf("Updated %s (replaced %d stale %s)", u.Path, n, util.Pluralize(n, "line", "lines"))
	default:
		return "Updated " + u.Path
	}
}

func renderDryRun(p *ui.Printer, res *setup.Result) {
	u := res.Update
	if !u.Changed {
		p.Status(ui.StatusSuccess, "%s already up to date, nothing to write", u.Path)
		return
	}

	p.Status(ui.StatusPending, "Would write to %s:", u.Path)
	for _, line := range res.Block().Lines() {
		if line == "" {
			continue
		}
		p.Line("      " + ui.Muted(line))
	}

	if n := len(u.Removed); n > 0 {
		p.Status(ui.StatusPending, "Would remove %d stale %s:", n, util.Pluralize(n, "line", "lines"))
		for _, line := range u.Removed {
			p.Line("      - " + ui.Muted(line))
		}
	}
}

func reportRows(res *setup.Result) []ui.KeyValue {
	rows := []ui.KeyValue{
		{Key: "Key name", Value: res.Keys.Name},
		{Key: "Private key", Value: res.Keys.PrivatePath},
		{Key: "Public key", Value: res.Keys.PublicPath},
	}
	if res.Info != nil {
		rows = append(rows, ui.KeyValue{Key: "Fingerprint", Value: res.Info.Fingerprint})
	}
	rows = append(rows, ui.KeyValue{Key: "Env file", Value: res.EnvFile})
	return rows
}

// nextSteps are printed for the operator. None of them are run.
func nextSteps(res *setup.Result) []string {
	name := res.Keys.Name
	return []string{
		fmt.Sprintf("Register the public key with your GPU cloud provider as %s", ui.Highlight(name)),
		fmt.Sprintf("Launch instances with the key name %s", name),
		fmt.Sprintf("Connect: ssh -i %s ubuntu@<ip>", util.QuoteIfNeeded(res.Keys.PrivatePath)),
	}
}
