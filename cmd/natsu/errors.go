package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"natsu/internal/diag"
)

// reportError prints err for the user. Coded errors show their code, the
// failing module/type/member and any notes.
func reportError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	bold := color.New(color.Bold)

	var de *diag.Error
	if !errors.As(err, &de) {
		_, _ = red.Fprint(w, "error")
		_, _ = fmt.Fprintf(w, ": %v\n", err)
		return
	}
	d := de.Diag
	_, _ = red.Fprint(w, "error")
	_, _ = fmt.Fprintf(w, "[%s]", d.Code.ID())
	if !d.Primary.IsZero() {
		_, _ = fmt.Fprintf(w, " %s", bold.Sprint(d.Primary))
	}
	_, _ = fmt.Fprintf(w, ": %s\n", d.Message)
	for _, n := range d.Notes {
		if n.Loc.IsZero() {
			_, _ = fmt.Fprintf(w, "  note: %s\n", n.Msg)
			continue
		}
		_, _ = fmt.Fprintf(w, "  note: %s: %s\n", n.Loc, n.Msg)
	}
	if title := d.Code.Title(); title != "" {
		_, _ = fmt.Fprintf(w, "  (%s)\n", title)
	}
}
