package doctor

import (
	"fmt"
	"strings"

	"github.com/modelmint/mintkey/internal/envfile"
	"github.com/modelmint/mintkey/internal/setup"
)

// EnvBlockCheck compares the COMMON_SSH_ block in the env file with the key pair on disk.
type EnvBlockCheck struct {
	EnvFile string
	Keys    setup.KeyPair
}

func (c *EnvBlockCheck) Name() string     { return "env_block" }
func (c *EnvBlockCheck) Category() string { return CategoryEnv }

func (c *EnvBlockCheck) Run() CheckResult {
	cur, err := envfile.Read(c.EnvFile)
	if err != nil {
		return c.stale(summarize(err))
	}

	if !cur.Exists {
		return c.stale(fmt.Sprintf("%s doesn't exist", c.EnvFile))
	}
	if !cur.Found {
		return c.stale(fmt.Sprintf("No %s lines in %s", envfile.Prefix, c.EnvFile))
	}
	if !cur.Complete {
		return c.stale("Block is incomplete")
	}
	if cur.Lines > 3 {
		return c.stale(fmt.Sprintf("%d %s lines, expected 3", cur.Lines, envfile.Prefix))
	}

	var drift []string
	if cur.KeyName != c.Keys.Name {
		drift = append(drift, envfile.KeyNameVar)
	}
	if cur.PrivateKeyPath != c.Keys.PrivatePath {
		drift = append(drift, envfile.PrivateKeyPathVar)
	}
	if pub, err := setup.ReadPublicKey(c.Keys.PublicPath); err == nil && pub != cur.PublicKey {
		drift = append(drift, envfile.PublicKeyVar)
	}

	if len(drift) > 0 {
		return c.stale(fmt.Sprintf("Out of date: %v", drift))
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s is current", c.EnvFile),
	}
}

func (c *EnvBlockCheck) stale(msg string) CheckResult {
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusWarn,
		Message:    msg,
		Suggestion: "Run: mintkey setup",
	}
}

func (c *EnvBlockCheck) Fix() error {
	return nil // Rewriting the env file is what setup is for
}

// EnvDotenvCheck warns when a dotenv loader would read a block value
// differently from what mintkey wrote, such as a key comment holding "$" or " #".
type EnvDotenvCheck struct {
	EnvFile string
}

func (c *EnvDotenvCheck) Name() string     { return "env_dotenv" }
func (c *EnvDotenvCheck) Category() string { return CategoryEnv }

func (c *EnvDotenvCheck) Run() CheckResult {
	cur, err := envfile.Read(c.EnvFile)
	if err != nil || !cur.Found {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No block to compare",
		}
	}

	if len(cur.Misread) > 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Dotenv loaders would read %s differently", strings.Join(cur.Misread, ", ")),
			Suggestion: "Remove '$', '#' and quotes from the key comment, then run: mintkey setup",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Dotenv loaders read the block as written",
	}
}

func (c *EnvDotenvCheck) Fix() error {
	return nil
}

// NewEnvChecks creates the env file checks.
func NewEnvChecks(envFile string, keys setup.KeyPair) []Check {
	return []Check{
		&EnvBlockCheck{EnvFile: envFile, Keys: keys},
		&EnvDotenvCheck{EnvFile: envFile},
	}
}
