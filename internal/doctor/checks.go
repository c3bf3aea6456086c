package doctor

import (
	"fmt"

	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/setup"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its name in JSON and YAML output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Check categories, in report order.
const (
	CategoryConfig = "CONFIG"
	CategoryKeys   = "KEYS"
	CategoryEnv    = "ENV"
	CategorySSH    = "SSH"
	CategoryTools  = "TOOLS"
)

// CategoryOrder is the order categories are reported in.
var CategoryOrder = []string{CategoryConfig, CategoryKeys, CategoryEnv, CategorySSH, CategoryTools}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name" yaml:"name"`
	Status     CheckStatus `json:"status" yaml:"status"`
	Message    string      `json:"message" yaml:"message"`
	Suggestion string      `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty" yaml:"fixable,omitempty"` // Whether --fix can address this
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g., "CONFIG", "KEYS", "ENV").
	Category() string

	// Run executes the check and returns the result.
	Run() CheckResult

	// Fix attempts to automatically fix the issue (if supported).
	// Returns nil if fix was successful or not applicable.
	Fix() error
}

// RunAll executes all checks in order and returns the results.
func RunAll(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run()
	}
	return results
}

// FixAll runs Fix for every fixable failing result and re-runs that check.
// Fix errors are returned alongside the refreshed results.
func FixAll(checks []Check, results []CheckResult) ([]CheckResult, []error) {
	var errs []error
	for i, result := range results {
		if !result.Fixable || result.Status == StatusPass {
			continue
		}
		if err := checks[i].Fix(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", checks[i].Name(), err))
			continue
		}
		results[i] = checks[i].Run()
	}
	return results, errs
}

// CategoryResults holds the results of one category.
type CategoryResults struct {
	Name    string        `json:"name" yaml:"name"`
	Results []CheckResult `json:"results" yaml:"results"`
}

// GroupByCategory pairs checks with their results and groups them by
// category. Known categories come first in CategoryOrder, then any others in
// the order they appear.
func GroupByCategory(checks []Check, results []CheckResult) []CategoryResults {
	grouped := make(map[string][]CheckResult)
	var seen []string
	for i, check := range checks {
		cat := check.Category()
		if _, ok := grouped[cat]; !ok {
			seen = append(seen, cat)
		}
		grouped[cat] = append(grouped[cat], results[i])
	}

	var out []CategoryResults
	for _, cat := range CategoryOrder {
		if r, ok := grouped[cat]; ok {
			out = append(out, CategoryResults{Name: cat, Results: r})
			delete(grouped, cat)
		}
	}
	for _, cat := range seen {
		if r, ok := grouped[cat]; ok {
			out = append(out, CategoryResults{Name: cat, Results: r})
		}
	}
	return out
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusWarn {
			return true
		}
	}
	return false
}

// FixableCount returns the number of issues that can be fixed automatically.
func FixableCount(results []CheckResult) int {
	count := 0
	for _, r := range results {
		if r.Fixable && (r.Status == StatusFail || r.Status == StatusWarn) {
			count++
		}
	}
	return count
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	warn := counts[StatusWarn]
	fail := counts[StatusFail]

	if fail == 0 && warn == 0 {
		return "Everything looks good"
	}

	total := warn + fail
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

// summarize flattens a structured error onto one line for a result message.
func summarize(err error) string {
	return errors.Summary(err)
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Target is what a full doctor run inspects.
type Target struct {
	ConfigPath    string // --config value, may be empty
	Keys          setup.KeyPair
	EnvFile       string
	SSHConfigPath string // empty means ~/.ssh/config
}

// NewChecks builds every check for t in report order.
func NewChecks(t Target) []Check {
	var checks []Check
	checks = append(checks, NewConfigChecks(t.ConfigPath)...)
	checks = append(checks, NewKeyChecks(t.Keys)...)
	checks = append(checks, NewEnvChecks(t.EnvFile, t.Keys)...)
	checks = append(checks, NewSSHChecks(t.SSHConfigPath, t.Keys.PrivatePath)...)
	checks = append(checks, NewToolsChecks()...)
	return checks
}
