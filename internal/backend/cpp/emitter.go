// Package cpp emits the C++ header and source pair of one module: type
// declarations in dependency order, VTables, static blocks, method bodies
// and the module string pool.
package cpp

import (
	"fmt"
	"strings"

	"natsu/internal/diag"
	"natsu/internal/importer"
	"natsu/internal/layout"
	"natsu/internal/literal"
	"natsu/internal/mangle"
	"natsu/internal/metadata"
	"natsu/internal/rtabi"
	"natsu/internal/typegraph"
	"natsu/internal/vtable"
)

// Options tune one module emission.
type Options struct {
	Target layout.Target
}

// Output is the text of one translated module. Nothing is written to disk
// here; the pipeline writes both files once the whole module succeeded.
type Output struct {
	Module  string
	Header  string
	Source  string
	Types   int
	Methods int
	Strings int
}

func (o *Output) HeaderName() string { return o.Module + ".h" }
func (o *Output) SourceName() string { return o.Module + ".cpp" }

type constString struct {
	te    *typeEmit
	field *metadata.FieldDef
	index int
}

type Emitter struct {
	mod    *metadata.Module
	cl     *metadata.Closure
	graph  *typegraph.Graph
	order  []typegraph.TypeID
	layout *layout.LayoutEngine
	env    *importer.Env
	modNS  string
	types  []*typeEmit

	source  strings.Builder
	generic strings.Builder
	header  strings.Builder

	constStrings []constString
	methods      int
}

// EmitModule translates mod against the closure cl.
func EmitModule(mod *metadata.Module, cl *metadata.Closure, opts Options) (*Output, error) {
	if opts.Target.PtrSize == 0 {
		opts.Target = layout.X86_64()
	}
	modNS, err := mangle.ModuleName(mod.Name)
	if err != nil {
		return nil, diag.Locate(err, diag.InType(mod.Name, "", ""))
	}
	g, err := typegraph.Build(mod, cl)
	if err != nil {
		return nil, err
	}
	order, err := typegraph.Sort(g)
	if err != nil {
		return nil, err
	}
	vt := vtable.NewBuilder(cl)
	e := &Emitter{
		mod:    mod,
		cl:     cl,
		graph:  g,
		order:  order,
		layout: layout.New(opts.Target, cl),
		env:    &importer.Env{Closure: cl, Module: mod.Name, Pool: literal.NewPool(), VTables: vt},
		modNS:  modNS,
	}
	for _, id := range order {
		te, err := e.prepare(g.Descriptor(id), vt)
		if err != nil {
			return nil, err
		}
		e.types = append(e.types, te)
	}

	// Bodies go first so the string pool is complete before the header is
	// assembled: non-generic bodies, constant string fields, generic bodies.
	for _, te := range e.types {
		if err := e.emitBodies(&e.source, te, false); err != nil {
			return nil, err
		}
	}
	e.internConstStrings()
	if err := e.emitConstStrings(&e.source, false); err != nil {
		return nil, err
	}
	for _, te := range e.types {
		if err := e.emitBodies(&e.generic, te, true); err != nil {
			return nil, err
		}
	}
	if err := e.emitConstStrings(&e.generic, true); err != nil {
		return nil, err
	}
	if err := e.emitHeader(); err != nil {
		return nil, err
	}
	return &Output{
		Module:  mod.Name,
		Header:  e.header.String(),
		Source:  e.sourceFile(),
		Types:   len(e.types),
		Methods: e.methods,
		Strings: e.env.Pool.Len(),
	}, nil
}

func (e *Emitter) includes() []string {
	if e.mod.Name == e.cl.CorLib() {
		return []string{rtabi.TypedefHeader}
	}
	out := make([]string, 0, len(e.mod.References))
	for _, ref := range e.mod.References {
		out = append(out, ref+".h")
	}
	return out
}

func (e *Emitter) emitHeader() error {
	w := &e.header
	fmt.Fprintln(w, rtabi.Banner)
	fmt.Fprintln(w, "#pragma once")
	for _, inc := range e.includes() {
		fmt.Fprintf(w, "#include <%s>\n", inc)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "namespace %s\n{\n", e.modNS)
	if err := e.emitForwarders(w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	for _, te := range e.types {
		te.forwardDeclare(w)
	}
	fmt.Fprintln(w)
	for i, te := range e.types {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := e.declare(w, te); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)

	if h, ok := rtabi.RuntimeHeader(e.mod.Name); ok {
		fmt.Fprintf(w, "#include <%s>\n\n", h)
	}

	fmt.Fprintf(w, "namespace %s\n{\n", e.modNS)
	e.emitUserStrings(w)
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "namespace %s\n{\n", e.modNS)
	w.WriteString(e.generic.String())
	fmt.Fprintln(w, "}")
	return nil
}

func (e *Emitter) sourceFile() string {
	var w strings.Builder
	fmt.Fprintln(&w, rtabi.Banner)
	fmt.Fprintf(&w, "#include \"%s.h\"\n\n", e.mod.Name)
	fmt.Fprintf(&w, "namespace %s\n{\n", e.modNS)
	w.WriteString(e.source.String())
	fmt.Fprintln(&w, "}")
	return w.String()
}

// emitForwarders turns exported types into aliases of their new home.
func (e *Emitter) emitForwarders(w *strings.Builder) error {
	ctx := mangle.Context{Module: e.mod.Name, CorLib: e.cl.CorLib()}
	for _, fwd := range e.mod.Forwarders {
		loc := diag.InType(e.mod.Name, fwd.FullName(), "")
		ns, err := mangle.Namespace(fwd.Namespace)
		if err != nil {
			return diag.Locate(err, loc)
		}
		short, err := mangle.TypeShortName(fwd.Name)
		if err != nil {
			return diag.Locate(err, loc)
		}
		target, err := ctx.QualifiedRef(&metadata.TypeRef{Scope: fwd.Target, Namespace: fwd.Namespace, Name: fwd.Name})
		if err != nil {
			return diag.Locate(err, loc)
		}
		var alias string
		if fwd.GenericArity > 0 {
			params := make([]string, fwd.GenericArity)
			for i := range params {
				params[i] = fmt.Sprintf("T%d", i)
			}
			alias = fmt.Sprintf("%s using %s = %s<%s>;", templateHeader(params), short, target, strings.Join(params, ", "))
		} else {
			alias = fmt.Sprintf("using %s = %s;", short, target)
		}
		fmt.Fprintf(w, "%s%s%s\n", openNamespaces(ns), alias, closeNamespaces(ns))
	}
	return nil
}
