package cpp

import (
	"errors"
	"strings"

	"natsu/internal/diag"
	"natsu/internal/layout"
	"natsu/internal/mangle"
	"natsu/internal/metadata"
	"natsu/internal/vtable"
)

func templateHeader(params []string) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = "class " + p
	}
	return "template <" + strings.Join(parts, ", ") + ">"
}

func openNamespaces(ns []string) string {
	var sb strings.Builder
	for _, seg := range ns {
		sb.WriteString("namespace ")
		sb.WriteString(seg)
		sb.WriteString(" { ")
	}
	return sb.String()
}

func closeNamespaces(ns []string) string {
	return strings.Repeat(" }", len(ns))
}

func genericParamNames(gps []metadata.GenericParam) ([]string, error) {
	out := make([]string, 0, len(gps))
	for _, gp := range gps {
		name, err := mangle.Identifier(gp.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

// layoutError maps a layout failure onto the translator's codes.
func layoutError(err error, loc diag.Location) error {
	var le *layout.LayoutError
	if !errors.As(err, &le) {
		return err
	}
	if le.Kind == layout.LayoutErrRecursiveValue {
		return diag.Errorf(diag.TrValueCycle, loc, "%v", le)
	}
	return diag.Errorf(diag.TrMissingDependency, loc, "%v", le)
}

// fieldIdent and paramName repeat spellings already validated by prepare.
func fieldIdent(f *metadata.FieldDef) string {
	name, _ := mangle.FieldName(f)
	return name
}

func paramName(en *vtable.Entry, i int) (string, error) {
	return mangle.ParamName(en.Method, i)
}
