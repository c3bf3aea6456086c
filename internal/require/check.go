package require

import "os/exec"

// CheckRequirement looks tool up in PATH.
func CheckRequirement(tool string) CheckResult {
	result := CheckResult{Name: tool}

	if !ValidateToolName(tool) {
		return result
	}

	path, err := exec.LookPath(tool)
	if err != nil {
		return result
	}

	result.Satisfied = true
	result.Path = path
	return result
}
