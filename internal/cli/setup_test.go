package cli

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelmint/mintkey/internal/envfile"
	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/setup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// cliFixture is a temp HOME with a key pair and an explicit config file.
type cliFixture struct {
	home    string
	priv    string
	pub     string
	pubLine string
	env     string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	sshDir := filepath.Join(home, ".ssh")
	require.NoError(t, os.MkdirAll(sshDir, 0700))

	f := &cliFixture{
		home: home,
		priv: filepath.Join(sshDir, "modelmint-common-key"),
		pub:  filepath.Join(sshDir, "modelmint-common-key.pub"),
		env:  filepath.Join(t.TempDir(), ".env"),
	}

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(privKey, "modelmint-common-key")
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pubKey)
	require.NoError(t, err)

	f.pubLine = strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))) + " modelmint-common-key"
	require.NoError(t, os.WriteFile(f.priv, pem.EncodeToMemory(block), 0644))
	require.NoError(t, os.WriteFile(f.pub, []byte(f.pubLine+"\n"), 0600))

	// doctor warns when the OpenSSH tools are missing
	bin := t.TempDir()
	for _, tool := range []string{"ssh", "ssh-keygen"} {
		require.NoError(t, os.WriteFile(filepath.Join(bin, tool), []byte("#!/bin/sh\nexit 0\n"), 0755))
	}
	t.Setenv("PATH", bin)

	useConfig(t, "version: 1\noutput:\n  color: never\n")
	return f
}

func (f *cliFixture) paths() PathFlags {
	return PathFlags{EnvFile: f.env}
}

func (f *cliFixture) expectedBlock() string {
	return "\n# Common SSH Key Configuration\n" +
		"COMMON_SSH_KEY_NAME=modelmint-common-key\n" +
		"COMMON_SSH_PUBLIC_KEY=" + f.pubLine + "\n" +
		"COMMON_SSH_PRIVATE_KEY_PATH=" + f.priv + "\n"
}

// useConfig points --config at a temp file holding content.
func useConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".mintkey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	old := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = old })
}

func setQuiet(t *testing.T, q bool) {
	t.Helper()
	old := quiet
	quiet = q
	t.Cleanup(func() { quiet = old })
}

func runSetup(t *testing.T, flags SetupFlags) (string, error) {
	t.Helper()
	flags.Yes = true
	var buf bytes.Buffer
	err := setupCommand(context.Background(), &buf, flags)
	return buf.String(), err
}

func TestSetupCommand_WritesBlock(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, os.WriteFile(f.env, []byte("API_KEY=abc\n"), 0644))

	out, err := runSetup(t, SetupFlags{PathFlags: f.paths()})
	require.NoError(t, err)

	data, err := os.ReadFile(f.env)
	require.NoError(t, err)
	assert.Equal(t, "API_KEY=abc\n"+f.expectedBlock(), string(data))

	info, err := os.Stat(f.priv)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	assert.Contains(t, out, "Found key pair modelmint-common-key")
	assert.Contains(t, out, "Permissions set to 0600 private, 0644 public (2 files changed)")
	assert.Contains(t, out, "Read public key (ssh-ed25519)")
	assert.Contains(t, out, "Updated "+f.env)
	assert.Contains(t, out, "Fingerprint")
	assert.Contains(t, out, "Next steps")
	assert.Contains(t, out, "ssh -i "+f.priv+" ubuntu@<ip>")
}

func TestSetupCommand_Idempotent(t *testing.T) {
	f := newCLIFixture(t)

	_, err := runSetup(t, SetupFlags{PathFlags: f.paths()})
	require.NoError(t, err)
	first, err := os.ReadFile(f.env)
	require.NoError(t, err)

	out, err := runSetup(t, SetupFlags{PathFlags: f.paths()})
	require.NoError(t, err)
	second, err := os.ReadFile(f.env)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Contains(t, out, "already up to date")
	assert.Contains(t, out, "Permissions already 0600 private, 0644 public")
}

func TestSetupCommand_ReplacesStaleLines(t *testing.T) {
	f := newCLIFixture(t)
	stale := "A=1\nCOMMON_SSH_KEY_NAME=old\nB=2\nCOMMON_SSH_PUBLIC_KEY=ssh-rsa OLD\n"
	require.NoError(t, os.WriteFile(f.env, []byte(stale), 0644))

	out, err := runSetup(t, SetupFlags{PathFlags: f.paths()})
	require.NoError(t, err)

	data, err := os.ReadFile(f.env)
	require.NoError(t, err)
	assert.Equal(t, "A=1\nB=2\n"+f.expectedBlock(), string(data))
	assert.Contains(t, out, "replaced 2 stale lines")
}

func TestSetupCommand_MissingKey(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, os.Remove(f.priv))

	out, err := runSetup(t, SetupFlags{PathFlags: f.paths()})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMissingPrivateKey))
	assert.Equal(t, 1, errors.ExitCode(err))
	assert.NotContains(t, out, "Next steps")

	_, statErr := os.Stat(f.env)
	assert.True(t, os.IsNotExist(statErr), "env file must not be created")
}

func TestSetupCommand_DryRun(t *testing.T) {
	f := newCLIFixture(t)
	original := "A=1\nCOMMON_SSH_KEY_NAME=old\n"
	require.NoError(t, os.WriteFile(f.env, []byte(original), 0644))

	out, err := runSetup(t, SetupFlags{PathFlags: f.paths(), DryRun: true})
	require.NoError(t, err)

	data, err := os.ReadFile(f.env)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))

	info, err := os.Stat(f.priv)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm(), "dry run leaves permissions alone")

	assert.Contains(t, out, "mintkey setup (dry run)")
	assert.Contains(t, out, "Would write to "+f.env)
	assert.Contains(t, out, envfile.KeyNameVar+"=modelmint-common-key")
	assert.Contains(t, out, "Would remove 1 stale line:")
	assert.Contains(t, out, "- COMMON_SSH_KEY_NAME=old")
	assert.NotContains(t, out, "Next steps")
}

func TestSetupCommand_Backup(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, os.WriteFile(f.env, []byte("A=1\n"), 0644))

	out, err := runSetup(t, SetupFlags{PathFlags: f.paths(), Backup: true})
	require.NoError(t, err)

	backup, err := os.ReadFile(f.env + envfile.BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "A=1\n", string(backup))
	assert.Contains(t, out, "Previous contents saved to")
}

func TestSetupCommand_FlagValidation(t *testing.T) {
	f := newCLIFixture(t)

	tests := []struct {
		name    string
		flags   SetupFlags
		wantMsg string
	}{
		{
			name:    "misspelled step policy",
			flags:   SetupFlags{PathFlags: f.paths(), OnStepError: "wran"},
			wantMsg: "Did you mean 'warn'?",
		},
		{
			name:    "key name with a path separator",
			flags:   SetupFlags{PathFlags: PathFlags{EnvFile: f.env, KeyName: "../evil"}},
			wantMsg: "key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runSetup(t, tt.flags)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSetupCommand_WarnPolicy(t *testing.T) {
	f := newCLIFixture(t)
	// A directory in place of the env file makes the update step fail.
	require.NoError(t, os.Mkdir(f.env, 0755))

	_, err := runSetup(t, SetupFlags{PathFlags: f.paths()})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrStepFailed))

	out, err := runSetup(t, SetupFlags{PathFlags: f.paths(), OnStepError: "warn"})
	require.NoError(t, err)
	assert.Contains(t, out, "was not updated")
	assert.Contains(t, out, "Finished with 1 warning")
}

func TestSetupCommand_Quiet(t *testing.T) {
	f := newCLIFixture(t)
	setQuiet(t, true)

	out, err := runSetup(t, SetupFlags{PathFlags: f.paths()})
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(f.env)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(f.expectedBlock(), "\n"), strings.TrimPrefix(string(data), "\n"))
}

func TestBlockDiff(t *testing.T) {
	want := envfile.Block{KeyName: "k", PublicKey: "ssh-ed25519 AAAA", PrivateKeyPath: "/home/u/.ssh/k"}

	assert.Empty(t, blockDiff(want, want))

	diffs := blockDiff(envfile.Block{KeyName: "old"}, want)
	require.Len(t, diffs, 3)
	assert.Equal(t, "COMMON_SSH_KEY_NAME: old -> k", diffs[0])
	assert.Equal(t, "COMMON_SSH_PUBLIC_KEY: different key", diffs[1])
	assert.Equal(t, "COMMON_SSH_PRIVATE_KEY_PATH: (none) -> /home/u/.ssh/k", diffs[2])

	// Unknown expected values are never reported
	assert.Empty(t, blockDiff(envfile.Block{KeyName: "k", PublicKey: "x"}, envfile.Block{KeyName: "k"}))
}

func TestNextSteps(t *testing.T) {
	res := &setup.Result{
		Keys: setup.KeyPair{
			Name:        "modelmint-common-key",
			PrivatePath: "/home/u/my keys/modelmint-common-key",
		},
	}

	steps := nextSteps(res)
	require.Len(t, steps, 3)
	assert.Contains(t, steps[0], "modelmint-common-key")
	assert.Equal(t, "Launch instances with the key name modelmint-common-key", steps[1])
	assert.Equal(t, "Connect: ssh -i '/home/u/my keys/modelmint-common-key' ubuntu@<ip>", steps[2])
}
