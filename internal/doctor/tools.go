package doctor

import (
	"fmt"

	"github.com/modelmint/mintkey/internal/require"
)

// ToolCheck verifies an OpenSSH client tool is on PATH.
type ToolCheck struct {
	Tool    string
	Purpose string
}

func (c *ToolCheck) Name() string     { return "tool_" + c.Tool }
func (c *ToolCheck) Category() string { return CategoryTools }

func (c *ToolCheck) Run() CheckResult {
	res := require.CheckRequirement(c.Tool)
	if !res.Satisfied {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s not found in PATH (used to %s)", c.Tool, c.Purpose),
			Suggestion: "Install the OpenSSH client (e.g. apt install openssh-client)",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s: %s", c.Tool, res.Path),
	}
}

func (c *ToolCheck) Fix() error {
	return nil
}

// NewToolsChecks creates a check for each tool mintkey's suggestions use.
func NewToolsChecks() []Check {
	checks := make([]Check, 0, len(require.DefaultTools))
	for _, tool := range require.DefaultTools {
		checks = append(checks, &ToolCheck{Tool: tool.Name, Purpose: tool.Purpose})
	}
	return checks
}
