package doctor

import (
	"fmt"
	"strings"

	"github.com/modelmint/mintkey/pkg/sshutil"
)

// SSHConfigHostsCheck lists the ~/.ssh/config hosts that use the private key.
// It never fails; it only tells the operator where the key is already wired up.
type SSHConfigHostsCheck struct {
	ConfigPath string // Empty means ~/.ssh/config
	KeyPath    string
}

func (c *SSHConfigHostsCheck) Name() string     { return "ssh_config_hosts" }
func (c *SSHConfigHostsCheck) Category() string { return CategorySSH }

func (c *SSHConfigHostsCheck) Run() CheckResult {
	path := c.ConfigPath
	if path == "" {
		path = sshutil.DefaultConfigPath()
	}

	hosts, err := sshutil.ParseSSHConfigFile(path)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusWarn,
			Message: fmt.Sprintf("Can't parse %s: %v", path, err),
		}
	}

	using := sshutil.HostsUsingKey(hosts, c.KeyPath)
	if len(using) == 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No ssh config hosts use this key",
		}
	}

	names := make([]string, len(using))
	for i, h := range using {
		names[i] = h.Alias
	}
	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("%d host%s use%s this key: %s",
			len(using), pluralize(len(using)), verbSuffix(len(using)), strings.Join(names, ", ")),
	}
}

func (c *SSHConfigHostsCheck) Fix() error {
	return nil
}

func verbSuffix(n int) string {
	if n == 1 {
		return "s"
	}
	return ""
}

// NewSSHChecks creates the ssh client config checks.
func NewSSHChecks(sshConfigPath, keyPath string) []Check {
	return []Check{
		&SSHConfigHostsCheck{ConfigPath: sshConfigPath, KeyPath: keyPath},
	}
}
