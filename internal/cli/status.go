package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/modelmint/mintkey/internal/envfile"
	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/lock"
	"github.com/modelmint/mintkey/internal/setup"
	"github.com/modelmint/mintkey/internal/ui"
)

var (
	statusPaths  PathFlags
	statusFormat string
)

func init() {
	AddPathFlags(statusCmd, &statusPaths)
	statusCmd.Flags().StringVarP(&statusFormat, "format", "o", FormatText, "output format: text, json, or yaml")
}

// StatusOutput is the structured form of mintkey status.
type StatusOutput struct {
	KeyName    string         `json:"key_name" yaml:"key_name"`
	EnvFile    string         `json:"env_file" yaml:"env_file"`
	EnvExists  bool           `json:"env_exists" yaml:"env_exists"`
	Configured bool           `json:"configured" yaml:"configured"`
	Complete   bool           `json:"complete" yaml:"complete"`
	Duplicates bool           `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Current    envfile.Block  `json:"current" yaml:"current"`
	Expected   envfile.Block  `json:"expected" yaml:"expected"`
	InSync     bool           `json:"in_sync" yaml:"in_sync"`
	Drift      []string       `json:"drift,omitempty" yaml:"drift,omitempty"`
	PrivateKey KeyFileStatus  `json:"private_key" yaml:"private_key"`
	PublicKey  KeyFileStatus  `json:"public_key" yaml:"public_key"`
	Key        *setup.KeyInfo `json:"key,omitempty" yaml:"key,omitempty"`
	LockedBy   string         `json:"locked_by,omitempty" yaml:"locked_by,omitempty"`
	Misread    []string       `json:"dotenv_misread,omitempty" yaml:"dotenv_misread,omitempty"`
}

// KeyFileStatus describes one half of the key pair on disk.
type KeyFileStatus struct {
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
	Mode   string `json:"mode,omitempty" yaml:"mode,omitempty"`
	ModeOK bool   `json:"mode_ok" yaml:"mode_ok"`
}

// statusCommand implements mintkey status.
func statusCommand(w io.Writer, flags PathFlags, formatFlag string) error {
	format, err := ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	out, err := collectStatus(flags)
	if format != FormatText {
		if werr := writeStructured(w, format, out, err); werr != nil {
			return werr
		}
		if err != nil {
			return errors.NewExitError(1)
		}
		return nil
	}
	if err != nil {
		return err
	}

	renderStatusText(ui.NewPrinter(w, Quiet()), out)
	return nil
}

// collectStatus compares the env file block with the key pair on disk.
func collectStatus(flags PathFlags) (*StatusOutput, error) {
	cfg, paths, err := loadConfig(flags, nil)
	if err != nil {
		return nil, err
	}
	keys := keyPair(cfg, paths)

	cur, err := envfile.Read(paths.EnvFile)
	if err != nil {
		return nil, err
	}

	out := &StatusOutput{
		KeyName:    cfg.KeyName,
		EnvFile:    paths.EnvFile,
		EnvExists:  cur.Exists,
		Configured: cur.Found,
		Complete:   cur.Complete,
		Duplicates: cur.Lines > 3,
		Current:    cur.Block,
		Misread:    cur.Misread,
		Expected: envfile.Block{
			KeyName:        keys.Name,
			PrivateKeyPath: keys.PrivatePath,
		},
		PrivateKey: keyFileStatus(keys.PrivatePath, setup.PrivateKeyPerm),
		PublicKey:  keyFileStatus(keys.PublicPath, setup.PublicKeyPerm),
	}

	if out.PublicKey.Exists {
		if pub, err := setup.ReadPublicKey(keys.PublicPath); err == nil {
			out.Expected.PublicKey = pub
			if info, _, err := setup.InspectPublicKey(pub); err == nil {
				out.Key = info
			}
		}
	}

	if target, err := envfile.ResolveTarget(paths.EnvFile); err == nil && cfg.Lock.Enabled && lock.IsLocked(target) {
		out.LockedBy = lock.Holder(target)
	}

	out.Drift = blockDiff(out.Current, out.Expected)
	out.InSync = out.Configured && out.Complete && !out.Duplicates && len(out.Drift) == 0
	return out, nil
}

func keyFileStatus(path string, want os.FileMode) KeyFileStatus {
	st := KeyFileStatus{Path: path}
	perm, ok, err := setup.PermissionsOK(path, want)
	if err != nil {
		return st
	}
	st.Exists = true
	st.Mode = fmt.Sprintf("%04o", perm)
	st.ModeOK = ok
	return st
}

func renderStatusText(p *ui.Printer, out *StatusOutput) {
	p.Line(strings.TrimSuffix(ui.RenderHeader(ui.HeaderInfo{
		Title:  "mintkey status",
		Detail: out.EnvFile,
	}), "\n"))

	p.Section("ENV")
	if out.LockedBy != "" {
		p.Status(ui.StatusPending, "Being updated by %s", out.LockedBy)
	}
	switch {
	case !out.EnvExists:
		p.Status(ui.StatusFail, "%s doesn't exist", out.EnvFile)
	case !out.Configured:
		p.Status(ui.StatusFail, "No %s block in %s", envfile.Prefix, out.EnvFile)
	default:
		p.Line(strings.TrimSuffix(ui.RenderKeyValues([]ui.KeyValue{
			{Key: envfile.KeyNameVar, Value: orNone(out.Current.KeyName)},
			{Key: envfile.PublicKeyVar, Value: abbreviate(orNone(out.Current.PublicKey), 48)},
			{Key: envfile.PrivateKeyPathVar, Value: orNone(out.Current.PrivateKeyPath)},
		}), "\n"))
	}
	p.Blank()

	p.Section("KEYS")
	for _, k := range []struct {
		label string
		st    KeyFileStatus
	}{
		{"Private key", out.PrivateKey},
		{"Public key", out.PublicKey},
	} {
		switch {
		case !k.st.Exists:
			p.Status(ui.StatusFail, "%s missing: %s", k.label, k.st.Path)
		case !k.st.ModeOK:
			p.Status(ui.StatusWarning, "%s %s (mode %s)", k.label, k.st.Path, k.st.Mode)
		default:
			p.Status(ui.StatusSuccess, "%s %s (mode %s)", k.label, k.st.Path, k.st.Mode)
		}
	}
	if out.Key != nil {
		p.Status(ui.StatusSuccess, "%s %s", out.Key.Type, out.Key.Fingerprint)
	}
	p.Blank()

	switch {
	case out.InSync:
		p.Status(ui.StatusSuccess, "In sync with the key pair on disk")
	case !out.Configured:
		p.Status(ui.StatusWarning, "Not configured. Run: mintkey setup")
	default:
		for _, d := range out.Drift {
			p.Status(ui.StatusWarning, "%s", d)
		}
		if !out.Complete {
			p.Status(ui.StatusWarning, "Block is incomplete")
		}
		if out.Duplicates {
			p.Status(ui.StatusWarning, "Block has duplicate %s lines", envfile.Prefix)
		}
		p.Status(ui.StatusWarning, "Out of date. Run: mintkey setup")
	}
	if len(out.Misread) > 0 {
		p.Status(ui.StatusWarning, "Dotenv loaders would read %s differently", strings.Join(out.Misread, ", "))
	}
}

// abbreviate shortens s to at most n runes, marking the cut with an ellipsis.
func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
