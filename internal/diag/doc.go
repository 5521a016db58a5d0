// Package diag defines the diagnostic model shared by all translation phases.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – warning or error, defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary location – module / type / method / IL offset of the construct.
//   - Notes – optional secondary locations/messages for additional context.
//
// # Fatal errors
//
// Translation is fail-fast: the first error-level finding aborts the current
// module. Phases return *Error (a Diagnostic wrapped as a Go error) and callers
// propagate it with fmt.Errorf("...: %w", err). The driver recovers the
// diagnostic with errors.As and prints code and location.
package diag
