package diag

// Severity ranks a diagnostic. Translation stops at the first error; notes
// attached to it carry no severity of their own.
type Severity uint8

const (
	// SevWarning marks a finding that does not stop translation.
	SevWarning Severity = iota + 1
	// SevError aborts the module being translated.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}
