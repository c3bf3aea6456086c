// Package require checks that the OpenSSH client tools mintkey points
// operators at are installed locally.
package require

import (
	"regexp"
)

// validToolName matches safe tool names: alphanumeric, hyphens, underscores, and periods.
// Examples: ssh, ssh-keygen, ssh-add
var validToolName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

// ValidateToolName checks if a tool name is a plain command name.
func ValidateToolName(name string) bool {
	return validToolName.MatchString(name)
}

// Tool is an external command mintkey's suggestions rely on.
type Tool struct {
	Name    string
	Purpose string
}

// DefaultTools are the tools named in mintkey's suggestions and next steps.
var DefaultTools = []Tool{
	{Name: "ssh-keygen", Purpose: "generate and recreate keys"},
	{Name: "ssh", Purpose: "connect to instances"},
}

// CheckResult represents the result of checking a single requirement.
type CheckResult struct {
	// Name is the tool name.
	Name string
	// Satisfied is true if the tool is available.
	Satisfied bool
	// Path is where the tool was found (if satisfied).
	Path string
}
