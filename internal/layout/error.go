package layout

import (
	"fmt"
	"strings"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveValue indicates a value type that contains itself.
	LayoutErrRecursiveValue LayoutErrorKind = iota + 1
	LayoutErrUnresolved
	LayoutErrUnsupported
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  string
	Cycle []string // for LayoutErrRecursiveValue
	Err   error
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveValue:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive value type has infinite size (%s)", e.Type)
		}
		return fmt.Sprintf("recursive value type has infinite size (cycle: %s)", strings.Join(e.Cycle, " -> "))
	case LayoutErrUnresolved:
		return fmt.Sprintf("cannot resolve %s for layout", e.Type)
	case LayoutErrUnsupported:
		if e.Err != nil {
			return fmt.Sprintf("cannot lay out %s: %v", e.Type, e.Err)
		}
		return fmt.Sprintf("cannot lay out %s", e.Type)
	default:
		return fmt.Sprintf("layout error kind=%d %s", e.Kind, e.Type)
	}
}

func (e *LayoutError) Unwrap() error { return e.Err }
