package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Step completed
	SymbolFail    = "✗" // Step failed
	SymbolWarning = "⚠" // Completed with a warning
	SymbolPending = "○" // Not run yet, or nothing to do
	SymbolSkipped = "⊘" // Skipped (dry run, declined)
	SymbolBullet  = "●" // List item
)
