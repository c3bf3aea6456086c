// Package envfile maintains the COMMON_SSH_ block inside a KEY=VALUE
// environment file.
//
// Updates use replace-by-prefix semantics: every line starting with Prefix is
// dropped, all other lines keep their order, and a fresh block is appended at
// the end. The header comment and the blank line above it are dropped only
// when an owned line directly follows the header. Applying the same block
// twice yields identical bytes.
//
//	<unrelated lines...>
//
//	# Common SSH Key Configuration
//	COMMON_SSH_KEY_NAME=modelmint-common-key
//	COMMON_SSH_PUBLIC_KEY=ssh-ed25519 AAAA... modelmint-common-key
//	COMMON_SSH_PRIVATE_KEY_PATH=/home/me/.ssh/modelmint-common-key
package envfile

import (
	"fmt"
	"strings"

	"github.com/modelmint/mintkey/internal/errors"
)

// Prefix marks every line owned by mintkey.
const Prefix = "COMMON_SSH_"

// Header is the comment line written above the block.
const Header = "# Common SSH Key Configuration"

// Variable names written into the block, in order.
const (
	KeyNameVar        = Prefix + "KEY_NAME"
	PublicKeyVar      = Prefix + "PUBLIC_KEY"
	PrivateKeyPathVar = Prefix + "PRIVATE_KEY_PATH"
)

// Block is the set of values mintkey writes.
type Block struct {
	KeyName        string `json:"key_name" yaml:"key_name"`
	PublicKey      string `json:"public_key" yaml:"public_key"`
	PrivateKeyPath string `json:"private_key_path" yaml:"private_key_path"`
}

// Validate rejects values that would break the line-oriented file format.
func (b Block) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{KeyNameVar, b.KeyName},
		{PublicKeyVar, b.PublicKey},
		{PrivateKeyPathVar, b.PrivateKeyPath},
	}

	for _, f := range fields {
		if strings.ContainsAny(f.value, "\r\n") {
			return errors.New(errors.ErrInvalidPublicKey,
				fmt.Sprintf("%s would span multiple lines", f.name),
				"Values written to the env file must fit on a single line")
		}
	}
	return nil
}

// Lines renders the block as it is appended: a blank separator, the header,
// then one KEY=VALUE line per field.
func (b Block) Lines() []string {
	return []string{
		"",
		Header,
		KeyNameVar + "=" + b.KeyName,
		PublicKeyVar + "=" + b.PublicKey,
		PrivateKeyPathVar + "=" + b.PrivateKeyPath,
	}
}

// SplitLines breaks file content into lines. A single trailing newline does
// not produce an empty final line.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.Split(s, "\n")
}

// JoinLines is the inverse of SplitLines. Non-empty output always ends in a newline.
func JoinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// IsOwned reports whether a line belongs to the managed block.
func IsOwned(line string) bool {
	return strings.HasPrefix(line, Prefix)
}

// Strip removes every owned line. A block header directly followed by an
// owned line goes too, with the blank line directly above it; a header
// standing on its own is kept. It returns the kept lines and the removed
// owned lines.
func Strip(lines []string) (kept, removed []string) {
	kept = make([]string, 0, len(lines))
	for i, line := range lines {
		switch {
		case IsOwned(line):
			removed = append(removed, line)
		case strings.TrimRight(line, "\r") == Header && i+1 < len(lines) && IsOwned(lines[i+1]):
			if n := len(kept); n > 0 && strings.TrimSpace(kept[n-1]) == "" {
				kept = kept[:n-1]
			}
		default:
			kept = append(kept, line)
		}
	}
	return kept, removed
}

// Apply strips any existing block and appends b.
func Apply(lines []string, b Block) (out, removed []string) {
	kept, removed := Strip(lines)
	return append(kept, b.Lines()...), removed
}

// Plan describes the change an update would make.
type Plan struct {
	Before  []byte
	After   []byte
	Removed []string
}

// Changed reports whether applying the plan alters the file.
func (p Plan) Changed() bool {
	return string(p.Before) != string(p.After)
}

// Compute builds the plan for replacing the block in current with b.
func Compute(current []byte, b Block) Plan {
	out, removed := Apply(SplitLines(current), b)
	return Plan{
		Before:  current,
		After:   JoinLines(out),
		Removed: removed,
	}
}
