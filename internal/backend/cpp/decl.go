package cpp

import (
	"fmt"
	"strings"

	"natsu/internal/diag"
	"natsu/internal/literal"
	"natsu/internal/mangle"
	"natsu/internal/metadata"
	"natsu/internal/rtabi"
	"natsu/internal/typegraph"
	"natsu/internal/vtable"
)

// typeEmit is everything the declaration and body passes need about one type.
type typeEmit struct {
	desc  *typegraph.Descriptor
	t     *metadata.TypeDef
	ctx   mangle.Context
	loc   diag.Location
	ns    []string
	// self is the name relative to the module namespace and local the name
	// inside the type's own namespace, both with template arguments. Out of
	// line definitions cannot start with "::" after a return type.
	self  string
	local string
	table *vtable.Table
	funcs []*funcEmit
	cctor *metadata.MethodDef
}

// funcEmit is the native signature of one static implementation function.
type funcEmit struct {
	m        *metadata.MethodDef
	name     string
	ret      string
	params   []string // "type name"
	generics []string
}

func (f *funcEmit) signature(qual string) string {
	return fmt.Sprintf("%s %s%s(%s)", f.ret, qual, f.name, strings.Join(f.params, ", "))
}

func (e *Emitter) prepare(d *typegraph.Descriptor, vt *vtable.Builder) (*typeEmit, error) {
	t := d.Def
	te := &typeEmit{
		desc:  d,
		t:     t,
		ctx:   mangle.Context{Module: e.mod.Name, CorLib: e.cl.CorLib()}.WithType(t),
		loc:   diag.InType(e.mod.Name, t.FullName(), ""),
		self:  strings.TrimPrefix(d.FullName, "::"+e.modNS+"::"),
		local: d.ShortName,
	}
	ns, err := mangle.Namespace(t.Namespace)
	if err != nil {
		return nil, diag.Locate(err, te.loc)
	}
	te.ns = ns
	if d.IsGeneric() {
		args := "<" + strings.Join(d.GenericParams, ", ") + ">"
		te.self += args
		te.local += args
	}
	if te.table, err = vt.Build(t); err != nil {
		return nil, err
	}

	scope := mangle.NewScope(te.loc)
	for _, f := range t.Fields {
		name, err := mangle.FieldName(f)
		if err != nil {
			return nil, diag.Locate(err, diag.InType(e.mod.Name, t.FullName(), f.Name))
		}
		if err := scope.Field(name, "field "+f.Name); err != nil {
			return nil, err
		}
		if f.IsLiteral() && f.Constant.Elem == metadata.ElemString {
			e.constStrings = append(e.constStrings, constString{te: te, field: f})
		}
	}
	for _, m := range t.Methods {
		if m.IsTypeInitializer() {
			te.cctor = m
			continue
		}
		if m.IsAbstract {
			continue
		}
		fn, err := te.function(m)
		if err != nil {
			return nil, diag.Locate(err, diag.InType(e.mod.Name, t.FullName(), m.Name))
		}
		native := make([]string, len(fn.params))
		for i, p := range fn.params {
			native[i] = p[:strings.LastIndexByte(p, ' ')]
		}
		if err := scope.Method(fn.name, strings.Join(native, ", "), "method "+m.String()); err != nil {
			return nil, err
		}
		te.funcs = append(te.funcs, fn)
	}
	return te, nil
}

func (te *typeEmit) function(m *metadata.MethodDef) (*funcEmit, error) {
	name, err := mangle.MethodName(m)
	if err != nil {
		return nil, err
	}
	ctx := te.ctx.WithMethod(m)
	fn := &funcEmit{m: m, name: name}
	if fn.generics, err = genericParamNames(m.GenericParams); err != nil {
		return nil, err
	}
	if fn.ret, err = ctx.VariableTypeName(m.Return); err != nil {
		return nil, err
	}
	if !m.IsStatic {
		this, err := ctx.ThisTypeName(te.t)
		if err != nil {
			return nil, err
		}
		fn.params = append(fn.params, this+" _this")
	}
	for i, p := range m.Params {
		pn, err := mangle.ParamName(m, i)
		if err != nil {
			return nil, err
		}
		pt, err := ctx.VariableTypeName(p.Type)
		if err != nil {
			return nil, err
		}
		fn.params = append(fn.params, pt+" "+pn)
	}
	return fn, nil
}

func (te *typeEmit) forwardDeclare(w *strings.Builder) {
	w.WriteString(openNamespaces(te.ns))
	if te.desc.IsGeneric() {
		w.WriteString(templateHeader(te.desc.GenericParams) + " ")
	}
	fmt.Fprintf(w, "struct %s;%s\n", te.desc.ShortName, closeNamespaces(te.ns))
}

// declare writes the struct of one type, its VTable and its Static block.
func (e *Emitter) declare(w *strings.Builder, te *typeEmit) error {
	d, t := te.desc, te.t
	for _, seg := range te.ns {
		fmt.Fprintf(w, "namespace %s {\n", seg)
	}
	if d.IsGeneric() {
		fmt.Fprintln(w, templateHeader(d.GenericParams))
	}
	fmt.Fprintf(w, "struct %s", d.ShortName)
	if t.BaseType != nil && !t.IsValueType && !t.IsInterface {
		base, err := te.ctx.TypeName(t.BaseType)
		if err != nil {
			return diag.Locate(err, te.loc)
		}
		fmt.Fprintf(w, " : public %s", base)
	}
	fmt.Fprintln(w, "\n{")

	fmt.Fprintln(w, "    struct TypeInfo\n    {")
	fmt.Fprintf(w, "        static constexpr bool IsValueType = %t;\n", t.IsValueType)
	fmt.Fprintf(w, "        static constexpr bool IsEnum = %t;\n", t.IsEnum)
	fmt.Fprintln(w, "    };")
	fmt.Fprintln(w)

	if err := e.declareVTable(w, te); err != nil {
		return err
	}

	var statics []*metadata.FieldDef
	for _, f := range t.Fields {
		floc := diag.InType(e.mod.Name, t.FullName(), f.Name)
		name := fieldIdent(f)
		switch {
		case f.IsLiteral() && f.Constant.Elem == metadata.ElemString:
			vt, err := te.ctx.VariableTypeName(f.Type)
			if err != nil {
				return diag.Locate(err, floc)
			}
			fmt.Fprintf(w, "    static %s %s;\n", vt, name)
		case f.IsLiteral():
			ct, err := mangle.ConstantTypeName(f.Constant.Elem)
			if err != nil {
				return diag.Locate(err, floc)
			}
			lit, err := literal.Constant(f.Constant)
			if err != nil {
				return diag.Locate(err, floc)
			}
			fmt.Fprintf(w, "    static constexpr %s %s = %s;\n", ct, name, lit)
		case f.IsStatic:
			statics = append(statics, f)
		default:
			vt, err := te.ctx.VariableTypeName(f.Type)
			if err != nil {
				return diag.Locate(err, floc)
			}
			fmt.Fprintf(w, "    %s %s;\n", vt, name)
		}
	}
	if err := e.declarePadding(w, te); err != nil {
		return err
	}

	for _, fn := range te.funcs {
		if len(fn.generics) > 0 {
			fmt.Fprintf(w, "    %s\n", templateHeader(fn.generics))
		}
		fmt.Fprintf(w, "    static %s;\n", fn.signature(""))
	}

	marker, err := implMarker(d, t)
	if err != nil {
		return diag.Locate(err, te.loc)
	}
	if marker != "" {
		fmt.Fprintf(w, "\n    %s\n", marker)
	}
	fmt.Fprintln(w, "\n    struct Static;")
	fmt.Fprintln(w, "};")
	fmt.Fprintln(w)

	if d.IsGeneric() {
		fmt.Fprintln(w, templateHeader(d.GenericParams))
	}
	fmt.Fprintf(w, "struct %s::Static\n{\n", te.local)
	for _, f := range statics {
		vt, err := te.ctx.VariableTypeName(f.Type)
		if err != nil {
			return diag.Locate(err, diag.InType(e.mod.Name, t.FullName(), f.Name))
		}
		name := fieldIdent(f)
		fmt.Fprintf(w, "    %s %s;\n", vt, name)
	}
	if te.cctor != nil {
		if len(statics) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "    Static();")
	}
	fmt.Fprintln(w, "};")
	for range te.ns {
		fmt.Fprintln(w, "}")
	}
	return nil
}

func (e *Emitter) declareVTable(w *strings.Builder, te *typeEmit) error {
	tbl := te.table
	if te.t.IsInterface {
		fmt.Fprintln(w, "    struct VTable\n    {")
	} else {
		bases := []string{rtabi.VTableRoot}
		if tbl.Base != nil {
			base, err := te.ctx.TypeName(tbl.Base)
			if err != nil {
				return diag.Locate(err, te.loc)
			}
			bases[0] = "typename " + base + "::VTable"
		}
		for _, iface := range tbl.Interfaces {
			name, err := te.ctx.TypeName(iface)
			if err != nil {
				return diag.Locate(err, te.loc)
			}
			bases = append(bases, "typename "+name+"::VTable")
		}
		fmt.Fprintf(w, "    struct VTable : public %s\n    {\n", rtabi.Inst(rtabi.VTableClass, bases...))
	}
	for i := range tbl.Entries {
		en := &tbl.Entries[i]
		if en.Method.IsGeneric() {
			continue
		}
		sig, err := te.slotSignature(en, "")
		if err != nil {
			return diag.Locate(err, diag.InType(te.loc.Module, te.t.FullName(), en.Method.Name))
		}
		switch en.Kind {
		case vtable.NewSlot:
			fmt.Fprintf(w, "        virtual %s const;\n", sig)
		case vtable.Override:
			fmt.Fprintf(w, "        %s const override;\n", sig)
		default:
			fmt.Fprintf(w, "        %s const;\n", sig)
		}
	}
	fmt.Fprintln(w, "    };")
	fmt.Fprintln(w)
	return nil
}

// slotSignature spells "R qual Slot(this, params...)" of a VTable entry.
// Dispatch slots take the receiver as an Object reference.
func (te *typeEmit) slotSignature(en *vtable.Entry, qual string) (string, error) {
	ret, err := te.ctx.VariableTypeName(en.Return)
	if err != nil {
		return "", err
	}
	this := rtabi.Inst(rtabi.GCObjRef, rtabi.ObjectTypeRef)
	if en.Kind == vtable.Plain {
		if this, err = te.ctx.ThisTypeName(te.t); err != nil {
			return "", err
		}
	}
	params := []string{this + " _this"}
	for i, p := range en.Params {
		pt, err := te.ctx.VariableTypeName(p)
		if err != nil {
			return "", err
		}
		pn, err := mangle.ParamName(en.Method, i)
		if err != nil {
			return "", err
		}
		params = append(params, pt+" "+pn)
	}
	return fmt.Sprintf("%s %s%s(%s)", ret, qual, en.SlotName, strings.Join(params, ", ")), nil
}

// declarePadding reserves the bytes an explicit ClassSize adds on top of
// the instance fields.
func (e *Emitter) declarePadding(w *strings.Builder, te *typeEmit) error {
	pad, err := e.layout.Padding(te.t)
	if err != nil {
		return layoutError(err, te.loc)
	}
	if pad == 0 {
		return nil
	}
	terms := []string{"0"}
	for _, f := range te.t.Fields {
		if f.IsStatic || f.IsLiteral() {
			continue
		}
		fs, err := e.layout.SizeOfSig(f.Type, e.mod.Name)
		if err != nil {
			return layoutError(err, diag.InType(e.mod.Name, te.t.FullName(), f.Name))
		}
		if fs.Expr != "" {
			terms = append(terms, fs.Expr)
			continue
		}
		vt, err := te.ctx.VariableTypeName(f.Type)
		if err != nil {
			return diag.Locate(err, te.loc)
		}
		terms = append(terms, "sizeof("+vt+")")
	}
	fmt.Fprintf(w, "    uint8_t padding_[%d - (%s)];\n", te.t.Layout.ClassSize, strings.Join(terms, " + "))
	return nil
}

func implMarker(d *typegraph.Descriptor, t *metadata.TypeDef) (string, error) {
	switch {
	case d.IsPrimitive:
		return rtabi.PrimitiveImpl + strings.ToUpper(d.ShortName), nil
	case d.IsEnum:
		el := t.EnumUnderlying()
		under, ok := el.PrimitiveName()
		if !ok || !el.IsEnumUnderlying() {
			return "", diag.Errorf(diag.TrUnsupportedElement, diag.Location{}, "enum %s has underlying type %s", t.FullName(), el)
		}
		return fmt.Sprintf("%s%s(%s)", rtabi.EnumImpl, strings.ToUpper(under), d.ShortName), nil
	case d.IsObject:
		return rtabi.ObjectImpl, nil
	case d.IsArray:
		return rtabi.SZArrayImpl, nil
	}
	return "", nil
}
