package diag

import (
	"errors"
	"fmt"
)

// Error is a fatal diagnostic travelling as a Go error.
type Error struct {
	Diag Diagnostic
}

func (e *Error) Error() string {
	return e.Diag.String()
}

// Errorf builds a fatal error with a formatted message.
func Errorf(code Code, loc Location, format string, args ...any) *Error {
	return &Error{Diag: New(SevError, code, loc, fmt.Sprintf(format, args...))}
}

// WithNote appends a note and returns the same error for chaining.
func (e *Error) WithNote(loc Location, msg string) *Error {
	e.Diag = e.Diag.WithNote(loc, msg)
	return e
}

// Locate fills the primary location when the producer did not know it.
// Inner phases (mangler, stack typing) raise errors without context; the
// caller that knows the method or type stamps it on the way out.
func Locate(err error, loc Location) error {
	var de *Error
	if errors.As(err, &de) && de.Diag.Primary.IsZero() {
		de.Diag.Primary = loc
	}
	return err
}

// CodeOf returns the code of the first diag.Error in the chain.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Diag.Code, true
	}
	return UnknownCode, false
}

// LocationOf returns the primary location of the first diag.Error in the chain.
func LocationOf(err error) (Location, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Diag.Primary, true
	}
	return Location{}, false
}
