package diag

import (
	"fmt"
	"strings"
)

// NoOffset marks a location that does not point into a method body.
const NoOffset int64 = -1

// Location addresses a construct inside a module image.
type Location struct {
	Module string
	Type   string
	Member string
	Offset int64
}

// At returns a location inside a method body.
func At(module, typ, member string, offset uint32) Location {
	return Location{Module: module, Type: typ, Member: member, Offset: int64(offset)}
}

// InType returns a location naming a type (and optionally one of its members).
func InType(module, typ, member string) Location {
	return Location{Module: module, Type: typ, Member: member, Offset: NoOffset}
}

func (l Location) IsZero() bool {
	return l.Module == "" && l.Type == "" && l.Member == ""
}

func (l Location) String() string {
	var sb strings.Builder
	sb.WriteString(l.Module)
	if l.Type != "" {
		if sb.Len() > 0 {
			sb.WriteByte('!')
		}
		sb.WriteString(l.Type)
	}
	if l.Member != "" {
		sb.WriteString("::")
		sb.WriteString(l.Member)
	}
	if l.Offset >= 0 {
		fmt.Fprintf(&sb, "+IL_%04x", l.Offset)
	}
	return sb.String()
}

type Note struct {
	Loc Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
	Notes    []Note
}

func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func (d Diagnostic) WithNote(loc Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", d.Severity, d.Code.ID())
	if !d.Primary.IsZero() {
		fmt.Fprintf(&sb, " at %s", d.Primary)
	}
	fmt.Fprintf(&sb, ": %s", d.Message)
	for _, n := range d.Notes {
		if n.Loc.IsZero() {
			fmt.Fprintf(&sb, "\n  note: %s", n.Msg)
			continue
		}
		fmt.Fprintf(&sb, "\n  note: %s: %s", n.Loc, n.Msg)
	}
	return sb.String()
}
