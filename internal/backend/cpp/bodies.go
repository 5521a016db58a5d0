package cpp

import (
	"fmt"
	"strings"

	"natsu/internal/diag"
	"natsu/internal/importer"
	"natsu/internal/literal"
	"natsu/internal/rtabi"
	"natsu/internal/vtable"
)

// emitBodies writes the function and VTable bodies of te that belong to the
// given pass: templates (generic type or generic method) go to the header.
func (e *Emitter) emitBodies(w *strings.Builder, te *typeEmit, templates bool) error {
	typeGeneric := te.desc.IsGeneric()
	prefix := ""
	if typeGeneric {
		prefix = templateHeader(te.desc.GenericParams) + "\n"
	}

	if te.cctor != nil && typeGeneric == templates {
		res, err := importer.Import(e.env, te.t, te.cctor)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s%s::Static::Static()\n{\n%s}\n\n", prefix, te.self, res.Text("    "))
		e.methods++
	}

	for _, fn := range te.funcs {
		if (typeGeneric || len(fn.generics) > 0) != templates {
			continue
		}
		if fn.m.IsInternalCall {
			continue
		}
		res, err := importer.Import(e.env, te.t, fn.m)
		if err != nil {
			return err
		}
		w.WriteString(prefix)
		if len(fn.generics) > 0 {
			fmt.Fprintln(w, templateHeader(fn.generics))
		}
		fmt.Fprintf(w, "%s\n{\n%s}\n\n", fn.signature(te.self+"::"), res.Text("    "))
		e.methods++
	}

	if typeGeneric != templates {
		return nil
	}
	for i := range te.table.Entries {
		en := &te.table.Entries[i]
		if en.Method.IsGeneric() {
			continue
		}
		if err := e.emitSlotBody(w, te, en, prefix); err != nil {
			return diag.Locate(err, diag.InType(e.mod.Name, te.t.FullName(), en.Method.Name))
		}
	}
	return nil
}

// emitSlotBody writes a VTable member: it adapts the receiver and forwards
// to the static implementation, or traps when the slot is abstract.
func (e *Emitter) emitSlotBody(w *strings.Builder, te *typeEmit, en *vtable.Entry, prefix string) error {
	sig, err := te.slotSignature(en, te.self+"::VTable::")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s%s const\n{\n", prefix, sig)
	if en.Abstract {
		fmt.Fprintf(w, "    %s();\n}\n\n", rtabi.PureCall)
		return nil
	}
	this := "_this"
	if en.Kind != vtable.Plain {
		if te.t.IsValueType {
			this = rtabi.Call(rtabi.Inst(rtabi.UnboxExact, te.self), "_this")
		} else {
			this = "_this.template cast<" + te.self + ">()"
		}
	}
	args := []string{this}
	for i := range en.Params {
		pn, err := paramName(en, i)
		if err != nil {
			return err
		}
		args = append(args, pn)
	}
	call := rtabi.Call(te.self+"::"+en.ImplName, args...)
	if en.Return.IsVoid() {
		fmt.Fprintf(w, "    %s;\n}\n\n", call)
	} else {
		fmt.Fprintf(w, "    return %s;\n}\n\n", call)
	}
	return nil
}

// emitUserStrings writes the module string pool.
func (e *Emitter) emitUserStrings(w *strings.Builder) {
	for i, s := range e.env.Pool.Values() {
		fmt.Fprintf(w, "    static const %s<%s, %s<%d>> %s(%s);\n",
			rtabi.StaticObject, rtabi.StringTypeRef, rtabi.StringLit, literal.UTF16Len(s),
			literal.Name(i), literal.RawString(s))
	}
}

func (e *Emitter) internConstStrings() {
	for i := range e.constStrings {
		cs := &e.constStrings[i]
		cs.index = e.env.Pool.Intern(cs.field.Constant.Str)
	}
}

// emitConstStrings defines the constant string fields of non-generic types
// (source) or generic types (header).
func (e *Emitter) emitConstStrings(w *strings.Builder, templates bool) error {
	for _, cs := range e.constStrings {
		te := cs.te
		if te.desc.IsGeneric() != templates {
			continue
		}
		vt, err := te.ctx.VariableTypeName(cs.field.Type)
		if err != nil {
			return diag.Locate(err, diag.InType(e.mod.Name, te.t.FullName(), cs.field.Name))
		}
		if templates {
			fmt.Fprintln(w, templateHeader(te.desc.GenericParams))
		}
		fmt.Fprintf(w, "%s %s::%s = %s(%s);\n", vt, te.self, fieldIdent(cs.field), rtabi.LoadString, literal.Name(cs.index))
	}
	return nil
}
