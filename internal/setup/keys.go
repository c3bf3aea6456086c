package setup

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/util"
	"golang.org/x/crypto/ssh"
)

// Target permissions for the key pair.
const (
	PrivateKeyPerm os.FileMode = 0600
	PublicKeyPerm  os.FileMode = 0644
)

// KeyPair points at the private and public halves on disk.
type KeyPair struct {
	Name        string // Name the key is registered under (COMMON_SSH_KEY_NAME)
	PrivatePath string // Full path to private key
	PublicPath  string // Full path to public key
}

// KeyInfo describes a parsed public key.
type KeyInfo struct {
	Type        string `json:"type" yaml:"type"`               // ssh-ed25519, ssh-rsa, ...
	Comment     string `json:"comment" yaml:"comment"`         // trailing comment, often user@host
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"` // SHA256:...
}

// Check verifies that both halves exist. The private key is checked first and
// nothing else is looked at when it is missing.
func (k KeyPair) Check() error {
	if err := requireFile(k.PrivatePath); err != nil {
		return errors.WrapWithCode(err, errors.ErrMissingPrivateKey,
			fmt.Sprintf("Private key not found: %s", k.PrivatePath),
			"Generate one first: "+GenerateCommand(k))
	}

	if err := requireFile(k.PublicPath); err != nil {
		return errors.WrapWithCode(err, errors.ErrMissingPublicKey,
			fmt.Sprintf("Public key not found: %s", k.PublicPath),
			fmt.Sprintf("Recreate it from the private key: ssh-keygen -y -f %s > %s",
				util.QuoteIfNeeded(k.PrivatePath), util.QuoteIfNeeded(k.PublicPath)))
	}

	return nil
}

// GenerateCommand is the ssh-keygen invocation suggested when the pair is missing.
func GenerateCommand(k KeyPair) string {
	return fmt.Sprintf("ssh-keygen -t rsa -b 4096 -f %s -C %s", util.QuoteIfNeeded(k.PrivatePath), util.QuoteIfNeeded(k.Name))
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// ReadPublicKey reads the contents of a public key file.
//
// Surrounding whitespace, including the trailing newline ssh-keygen writes, is
// trimmed. Content that would still span several lines is rejected because
// it cannot be stored as a single env file value.
func ReadPublicKey(pubPath string) (string, error) {
	data, err := os.ReadFile(pubPath)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrStepFailed,
			fmt.Sprintf("Failed to read public key: %s", pubPath),
			"Check that the file exists and is readable")
	}

	content := strings.TrimSpace(string(data))
	if strings.ContainsAny(content, "\r\n") {
		return "", errors.New(errors.ErrInvalidPublicKey,
			fmt.Sprintf("Public key %s spans multiple lines", pubPath),
			"A public key file should hold a single 'type base64 comment' line")
	}

	return content, nil
}

// InspectPublicKey parses an authorized_keys style line.
func InspectPublicKey(content string) (*KeyInfo, ssh.PublicKey, error) {
	pub, comment, _, _, err := ssh.ParseAuthorizedKey([]byte(content))
	if err != nil {
		return nil, nil, fmt.Errorf("parse public key: %w", err)
	}

	return &KeyInfo{
		Type:        pub.Type(),
		Comment:     comment,
		Fingerprint: ssh.FingerprintSHA256(pub),
	}, pub, nil
}

// PairMatch is the outcome of comparing the private key with the public key.
type PairMatch int

const (
	PairMatches PairMatch = iota
	PairMismatch
	PairUnverifiable // encrypted or unparseable private key
)

// String returns a human-readable match result.
func (m PairMatch) String() string {
	switch m {
	case PairMatches:
		return "match"
	case PairMismatch:
		return "mismatch"
	default:
		return "unverifiable"
	}
}

// VerifyPair checks that the private key at privPath produces pub.
func VerifyPair(privPath string, pub ssh.PublicKey) (PairMatch, error) {
	data, err := os.ReadFile(privPath)
	if err != nil {
		return PairUnverifiable, err
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return PairUnverifiable, err
	}

	if ssh.FingerprintSHA256(signer.PublicKey()) != ssh.FingerprintSHA256(pub) {
		return PairMismatch, nil
	}
	return PairMatches, nil
}

// IsPassphraseProtected reports whether err came from parsing an encrypted private key.
func IsPassphraseProtected(err error) bool {
	var missing *ssh.PassphraseMissingError
	return stderrors.As(err, &missing)
}
