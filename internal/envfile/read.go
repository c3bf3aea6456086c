package envfile

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/modelmint/mintkey/internal/errors"
	"github.com/subosito/gotenv"
)

// Current is the managed block exactly as written in the file.
type Current struct {
	Block

	// Found is false when the file has no COMMON_SSH_ lines at all.
	Found bool

	// Lines counts the owned lines. More than three means duplicates.
	Lines int

	// Complete is true when all three variables are present.
	Complete bool

	// Exists is false when the env file is missing.
	Exists bool

	// Misread lists the variables a dotenv loader would see differently from
	// the raw value, e.g. a "$" that gets expanded or a " #" comment that gets cut.
	Misread []string
}

// Read extracts the managed block from the env file at path.
//
// Values are taken verbatim from after the first "=", the exact inverse of
// Block.Lines, so a value always reads back as written.
func Read(path string) (*Current, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Current{}, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrStepFailed,
			fmt.Sprintf("Failed to read %s", path),
			"Check that the env file is readable")
	}

	values, owned := ParseOwned(data)

	complete := true
	for _, k := range []string{KeyNameVar, PublicKeyVar, PrivateKeyPathVar} {
		if _, ok := values[k]; !ok {
			complete = false
		}
	}

	cur := &Current{
		Exists:   true,
		Found:    owned > 0,
		Lines:    owned,
		Complete: complete,
		Block:    blockOf(values),
		Misread:  Misread(values),
	}
	return cur, nil
}

func blockOf(values map[string]string) Block {
	return Block{
		KeyName:        values[KeyNameVar],
		PublicKey:      values[PublicKeyVar],
		PrivateKeyPath: values[PrivateKeyPathVar],
	}
}

// ParseOwned extracts the owned KEY=VALUE pairs from env file content and
// returns them along with the number of owned lines. The last assignment of
// a variable wins. Owned lines without "=" are counted but carry no value.
func ParseOwned(data []byte) (map[string]string, int) {
	values := make(map[string]string)
	owned := 0
	for _, line := range SplitLines(data) {
		if !IsOwned(line) {
			continue
		}
		owned++
		key, value, ok := strings.Cut(strings.TrimRight(line, "\r"), "=")
		if !ok {
			continue
		}
		values[key] = value
	}
	return values, owned
}

// Misread returns, sorted, the variables whose raw value a dotenv parser
// reads back differently.
func Misread(values map[string]string) []string {
	var out []string
	for key, raw := range values {
		parsed, err := gotenv.StrictParse(strings.NewReader(key + "=" + raw + "\n"))
		if err != nil || parsed[key] != raw {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
