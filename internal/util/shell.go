package util

import "strings"

// ShellQuote wraps a string in single quotes, escaping any existing single quotes.
// This is safe for use in shell commands where the string should be treated literally.
func ShellQuote(s string) string {
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// shellSafe holds the characters that never need quoting.
const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./:@%+=,"

// QuoteIfNeeded returns s unchanged when it is safe to paste into a shell,
// and ShellQuote(s) otherwise. Used for commands printed as suggestions.
func QuoteIfNeeded(s string) string {
	if s == "" {
		return "''"
	}
	for _, r := range s {
		if !strings.ContainsRune(shellSafe, r) {
			return ShellQuote(s)
		}
	}
	return s
}
