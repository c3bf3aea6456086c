package doctor

import (
	"fmt"
	"os"

	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/setup"
)

// KeyPresentCheck verifies one half of the key pair exists.
type KeyPresentCheck struct {
	Keys    setup.KeyPair
	Private bool
}

func (c *KeyPresentCheck) Name() string {
	if c.Private {
		return "private_key"
	}
	return "public_key"
}

func (c *KeyPresentCheck) Category() string { return CategoryKeys }

func (c *KeyPresentCheck) path() string {
	if c.Private {
		return c.Keys.PrivatePath
	}
	return c.Keys.PublicPath
}

func (c *KeyPresentCheck) Run() CheckResult {
	label := "Public key"
	suggestion := fmt.Sprintf("Recreate it: ssh-keygen -y -f %s > %s", c.Keys.PrivatePath, c.Keys.PublicPath)
	if c.Private {
		label = "Private key"
		suggestion = "Generate one: " + setup.GenerateCommand(c.Keys)
	}

	info, err := os.Stat(c.path())
	if err != nil || info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s missing: %s", label, c.path()),
			Suggestion: suggestion,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s: %s", label, c.path()),
	}
}

func (c *KeyPresentCheck) Fix() error {
	return nil // Key generation is left to the operator
}

// KeyPermissionsCheck verifies a key file has the expected mode.
type KeyPermissionsCheck struct {
	Path    string
	Want    os.FileMode
	Private bool
}

func (c *KeyPermissionsCheck) Name() string {
	if c.Private {
		return "private_key_perms"
	}
	return "public_key_perms"
}

func (c *KeyPermissionsCheck) Category() string { return CategoryKeys }

func (c *KeyPermissionsCheck) Run() CheckResult {
	perm, ok, err := setup.PermissionsOK(c.Path, c.Want)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusWarn,
			Message: fmt.Sprintf("Can't check permissions on %s", c.Path),
		}
	}

	if !ok {
		status := StatusWarn
		if c.Private && perm&0077 != 0 {
			status = StatusFail // ssh refuses group/world readable private keys
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     status,
			Message:    fmt.Sprintf("%s is %04o, want %04o", c.Path, perm, c.Want),
			Suggestion: fmt.Sprintf("Fix: chmod %o %s (or mintkey doctor --fix)", c.Want, c.Path),
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Permissions %04o", perm),
	}
}

func (c *KeyPermissionsCheck) Fix() error {
	return os.Chmod(c.Path, c.Want)
}

// PublicKeyFormatCheck verifies the public key is a single authorized_keys line.
type PublicKeyFormatCheck struct {
	Keys setup.KeyPair
}

func (c *PublicKeyFormatCheck) Name() string     { return "public_key_format" }
func (c *PublicKeyFormatCheck) Category() string { return CategoryKeys }

func (c *PublicKeyFormatCheck) Run() CheckResult {
	content, err := setup.ReadPublicKey(c.Keys.PublicPath)
	if err != nil {
		status := StatusWarn
		if errors.IsCode(err, errors.ErrInvalidPublicKey) {
			status = StatusFail
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     status,
			Message:    summarize(err),
			Suggestion: fmt.Sprintf("Regenerate it: ssh-keygen -y -f %s > %s", c.Keys.PrivatePath, c.Keys.PublicPath),
		}
	}

	info, _, err := setup.InspectPublicKey(content)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Public key isn't in authorized_keys format",
			Suggestion: "Expected 'type base64 comment', e.g. ssh-ed25519 AAAA... " + c.Keys.Name,
		}
	}

	msg := fmt.Sprintf("%s %s", info.Type, info.Fingerprint)
	if info.Comment != "" {
		msg += " (" + info.Comment + ")"
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: msg,
	}
}

func (c *PublicKeyFormatCheck) Fix() error {
	return nil
}

// KeyPairMatchCheck verifies the private key derives the public key.
type KeyPairMatchCheck struct {
	Keys setup.KeyPair
}

func (c *KeyPairMatchCheck) Name() string     { return "key_pair_match" }
func (c *KeyPairMatchCheck) Category() string { return CategoryKeys }

func (c *KeyPairMatchCheck) Run() CheckResult {
	content, err := setup.ReadPublicKey(c.Keys.PublicPath)
	if err != nil {
		return c.unverifiable("public key unreadable")
	}
	_, pub, err := setup.InspectPublicKey(content)
	if err != nil {
		return c.unverifiable("public key doesn't parse")
	}

	match, err := setup.VerifyPair(c.Keys.PrivatePath, pub)
	switch match {
	case setup.PairMatches:
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Private and public key match",
		}
	case setup.PairMismatch:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Public key doesn't belong to the private key",
			Suggestion: fmt.Sprintf("Rebuild it: ssh-keygen -y -f %s > %s", c.Keys.PrivatePath, c.Keys.PublicPath),
		}
	default:
		reason := "private key unreadable"
		if setup.IsPassphraseProtected(err) {
			reason = "private key is passphrase protected"
		}
		return c.unverifiable(reason)
	}
}

func (c *KeyPairMatchCheck) unverifiable(reason string) CheckResult {
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusWarn,
		Message: "Can't verify key pair: " + reason,
	}
}

func (c *KeyPairMatchCheck) Fix() error {
	return nil
}

// NewKeyChecks creates the key pair checks. Checks that need file contents
// are only added when both halves exist.
func NewKeyChecks(keys setup.KeyPair) []Check {
	checks := []Check{
		&KeyPresentCheck{Keys: keys, Private: true},
		&KeyPresentCheck{Keys: keys},
	}
	if keys.Check() != nil {
		return checks
	}

	return append(checks,
		&KeyPermissionsCheck{Path: keys.PrivatePath, Want: setup.PrivateKeyPerm, Private: true},
		&KeyPermissionsCheck{Path: keys.PublicPath, Want: setup.PublicKeyPerm},
		&PublicKeyFormatCheck{Keys: keys},
		&KeyPairMatchCheck{Keys: keys},
	)
}
