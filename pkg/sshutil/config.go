// Package sshutil reads OpenSSH client configuration.
package sshutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// SSHHostEntry represents a parsed host entry from SSH config.
type SSHHostEntry struct {
	Alias         string   // The Host pattern (alias)
	Hostname      string   // The HostName value (actual host to connect to)
	User          string   // The User value
	Port          string   // The Port value
	IdentityFiles []string // Every IdentityFile value, ~ expanded
}

// Description returns a user-friendly description of the host.
func (h SSHHostEntry) Description() string {
	parts := []string{}

	if h.Hostname != "" && h.Hostname != h.Alias {
		parts = append(parts, h.Hostname)
	}

	if h.User != "" {
		parts = append(parts, "user: "+h.User)
	}

	if h.Port != "" && h.Port != "22" {
		parts = append(parts, "port: "+h.Port)
	}

	if len(parts) == 0 {
		return h.Alias
	}

	return strings.Join(parts, ", ")
}

// UsesKey reports whether any IdentityFile of the host is keyPath.
func (h SSHHostEntry) UsesKey(keyPath string) bool {
	want := cleanPath(keyPath)
	for _, id := range h.IdentityFiles {
		if cleanPath(id) == want {
			return true
		}
	}
	return false
}

// DefaultConfigPath is ~/.ssh/config.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".ssh", "config")
}

// ParseSSHConfigFile parses the specified SSH config file. Wildcard patterns
// are skipped, so only concrete host aliases are returned. A missing file
// yields no hosts and no error.
func ParseSSHConfigFile(configPath string) ([]SSHHostEntry, error) {
	content, _, err := preprocessSSHConfig(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No SSH config is fine
		}
		return nil, err
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var hosts []SSHHostEntry
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()

			// Skip wildcards. String() drops the "!" of a negated pattern, and a
			// negated pattern never matches its own name.
			if strings.ContainsAny(alias, "*?") || !host.Matches(alias) {
				continue
			}

			if seen[alias] {
				continue
			}
			seen[alias] = true

			entry := SSHHostEntry{
				Alias: alias,
			}

			if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
				entry.Hostname = hostname
			}

			if user, _ := cfg.Get(alias, "User"); user != "" {
				entry.User = user
			}

			if port, _ := cfg.Get(alias, "Port"); port != "" {
				entry.Port = port
			}

			ids, _ := cfg.GetAll(alias, "IdentityFile")
			for _, id := range ids {
				if id != "" {
					entry.IdentityFiles = append(entry.IdentityFiles, expandPath(id))
				}
			}

			hosts = append(hosts, entry)
		}
	}

	// Sort by alias for consistent ordering
	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Alias < hosts[j].Alias
	})

	return hosts, nil
}

// HostsUsingKey returns the hosts that name keyPath as an IdentityFile.
func HostsUsingKey(hosts []SSHHostEntry, keyPath string) []SSHHostEntry {
	var filtered []SSHHostEntry
	for _, h := range hosts {
		if h.UsesKey(keyPath) {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

// preprocessSSHConfig reads the SSH config and returns content up to the first Match directive,
// which ssh_config can't decode. Also returns the 1-indexed line of that directive (0 if none).
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	matchLine := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "match ") {
			matchLine = i + 1
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), matchLine, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func expandPath(path string) string {
	path = strings.Trim(path, `"`)
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func cleanPath(path string) string {
	path = expandPath(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}
