// Package ui renders mintkey's terminal output.
//
// Output is plain lines with a colored status glyph, styled with Lip Gloss:
//
//	✓ Permissions set (0600 / 0644)
//	⚠ Public key isn't in authorized_keys format
//	✗ Private key not found
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Completed steps
//	ColorError     (red)    - Failures
//	ColorWarning   (yellow) - Warnings under on_step_error=warn
//	ColorInfo      (cyan)   - Paths and commands worth copying
//	ColorMuted     (gray)   - Labels and suggestions
//
// SetColorMode applies the output.color setting through termenv; DisableColors
// backs --no-color.
//
// # Prompts
//
// Confirm shows a Huh confirm form. It is only offered when Interactive
// reports a terminal on stdin.
package ui
