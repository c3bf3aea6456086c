package sshutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseSSHConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configPath := writeConfig(t, `
Host gpu-a
    HostName 129.146.10.1
    User ubuntu
    IdentityFile ~/.ssh/modelmint-common-key

Host gpu-b
    HostName 129.146.10.2
    User ubuntu
    Port 2222
    IdentityFile ~/.ssh/id_ed25519
    IdentityFile ~/.ssh/modelmint-common-key

Host *
    ServerAliveInterval 60

Host work-*
    User workuser
`)

	hosts, err := ParseSSHConfigFile(configPath)
	require.NoError(t, err)

	// Wildcards (*) and patterns (work-*) are excluded
	require.Len(t, hosts, 2)
	assert.Equal(t, "gpu-a", hosts[0].Alias)
	assert.Equal(t, "gpu-b", hosts[1].Alias)

	assert.Equal(t, "129.146.10.1", hosts[0].Hostname)
	assert.Equal(t, "ubuntu", hosts[0].User)
	assert.Equal(t, []string{filepath.Join(home, ".ssh", "modelmint-common-key")}, hosts[0].IdentityFiles)

	assert.Equal(t, "2222", hosts[1].Port)
	assert.Len(t, hosts[1].IdentityFiles, 2)
}

func TestParseSSHConfigFile_NotExists(t *testing.T) {
	hosts, err := ParseSSHConfigFile("/nonexistent/path/config")
	assert.NoError(t, err)
	assert.Nil(t, hosts)
}

func TestParseSSHConfigFile_StopsAtMatch(t *testing.T) {
	configPath := writeConfig(t, `
Host before
    HostName before.example.com

Match host *.internal
    User internal

Host after
    HostName after.example.com
`)

	hosts, err := ParseSSHConfigFile(configPath)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "before", hosts[0].Alias)
}

func TestParseSSHConfigFile_EmptyAndComments(t *testing.T) {
	for name, content := range map[string]string{
		"empty":         "",
		"comments only": "# nothing here\n# still nothing\n",
	} {
		t.Run(name, func(t *testing.T) {
			hosts, err := ParseSSHConfigFile(writeConfig(t, content))
			require.NoError(t, err)
			assert.Empty(t, hosts)
		})
	}
}

func TestParseSSHConfigFile_MultiplePatterns(t *testing.T) {
	configPath := writeConfig(t, `
Host alpha beta !gamma
    User shared
`)

	hosts, err := ParseSSHConfigFile(configPath)
	require.NoError(t, err)
	require.Len(t, hosts, 2)
	assert.Equal(t, "alpha", hosts[0].Alias)
	assert.Equal(t, "beta", hosts[1].Alias)
	assert.Equal(t, "shared", hosts[1].User)
}

func TestParseSSHConfigFile_NegatedPatternsSkipped(t *testing.T) {
	configPath := writeConfig(t, `
Host !bastion-* !gamma
    User nobody

Host gamma
    User real
`)

	hosts, err := ParseSSHConfigFile(configPath)
	require.NoError(t, err)
	require.Len(t, hosts, 1, "only the positive gamma entry is a host")
	assert.Equal(t, "gamma", hosts[0].Alias)
	assert.Equal(t, "real", hosts[0].User)
}

func TestParseSSHConfigFile_DuplicateHosts(t *testing.T) {
	configPath := writeConfig(t, `
Host dup
    User first

Host dup
    User second
`)

	hosts, err := ParseSSHConfigFile(configPath)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "first", hosts[0].User, "first match wins, as in ssh")
}

func TestSSHHostEntryDescription(t *testing.T) {
	tests := []struct {
		name     string
		entry    SSHHostEntry
		expected string
	}{
		{
			name:     "full entry",
			entry:    SSHHostEntry{Alias: "gpu", Hostname: "10.0.0.1", User: "ubuntu", Port: "2222"},
			expected: "10.0.0.1, user: ubuntu, port: 2222",
		},
		{
			name:     "default port hidden",
			entry:    SSHHostEntry{Alias: "gpu", Hostname: "10.0.0.1", Port: "22"},
			expected: "10.0.0.1",
		},
		{
			name:     "hostname same as alias",
			entry:    SSHHostEntry{Alias: "gpu", Hostname: "gpu", User: "ubuntu"},
			expected: "user: ubuntu",
		},
		{
			name:     "minimal entry",
			entry:    SSHHostEntry{Alias: "gpu"},
			expected: "gpu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.Description())
		})
	}
}

func TestHostsUsingKey(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	key := filepath.Join(home, ".ssh", "modelmint-common-key")

	hosts := []SSHHostEntry{
		{Alias: "a", IdentityFiles: []string{key}},
		{Alias: "b", IdentityFiles: []string{filepath.Join(home, ".ssh", "id_rsa")}},
		{Alias: "c", IdentityFiles: []string{"~/.ssh/../.ssh/modelmint-common-key"}},
		{Alias: "d"},
	}

	got := HostsUsingKey(hosts, key)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Alias)
	assert.Equal(t, "c", got[1].Alias)

	assert.Empty(t, HostsUsingKey(nil, key))
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".ssh", "k"), expandPath("~/.ssh/k"))
	assert.Equal(t, home, expandPath("~"))
	assert.Equal(t, "/abs/k", expandPath("/abs/k"))
	assert.Equal(t, "/quoted/k", expandPath(`"/quoted/k"`))
}
