package importer

import (
	"natsu/internal/diag"
	"natsu/internal/mangle"
	"natsu/internal/metadata"
	"natsu/internal/rtabi"
)

// callee is a resolved call operand.
type callee struct {
	def    *metadata.TypeDef
	m      *metadata.MethodDef
	decl   string // C++ spelling of the declaring type
	fn     string // decl::member, with template arguments
	params []string
	ret    *metadata.TypeSig
}

func (im *importer) resolveCallee(ref *metadata.MethodRef) (*callee, error) {
	def, _, ok := im.env.Closure.ResolveSig(ref.DeclaringType, im.env.Module)
	if !ok {
		return nil, im.errorf(diag.TrMissingDependency, "cannot resolve declaring type of %s", ref)
	}
	m := im.env.Closure.FindMethod(def, ref, im.env.Module)
	if m == nil {
		return nil, im.errorf(diag.TrMissingDependency, "cannot resolve method %s", ref)
	}
	decl, err := im.ctx.TypeName(ref.DeclaringType)
	if err != nil {
		return nil, im.wrap(err)
	}
	name, err := mangle.MethodName(m)
	if err != nil {
		return nil, im.wrap(err)
	}
	c := &callee{def: def, m: m, decl: decl, fn: decl + "::" + name}
	if len(ref.GenericArgs) > 0 {
		gargs := make([]string, len(ref.GenericArgs))
		for i, a := range ref.GenericArgs {
			if gargs[i], err = im.ctx.TypeName(a); err != nil {
				return nil, im.wrap(err)
			}
		}
		c.fn = decl + "::template " + name + templateArgs(gargs)
	}
	targs := typeArgs(ref.DeclaringType)
	for _, p := range ref.Params {
		cpp, err := im.ctx.VariableTypeName(p.Substitute(targs, ref.GenericArgs))
		if err != nil {
			return nil, im.wrap(err)
		}
		c.params = append(c.params, cpp)
	}
	c.ret = ref.Return.Substitute(targs, ref.GenericArgs)
	return c, nil
}

func (im *importer) functionName(ref *metadata.MethodRef) (string, error) {
	c, err := im.resolveCallee(ref)
	if err != nil {
		return "", err
	}
	return c.fn, nil
}

// receiverType spells how an instance method of c receives this.
func (c *callee) receiverType() string {
	if c.def.IsValueType {
		return rtabi.Inst(rtabi.GCRef, c.decl)
	}
	return rtabi.Inst(rtabi.GCObjRef, c.decl)
}

func (im *importer) lowerCall(ins *metadata.Instruction, constrained *metadata.TypeSig) error {
	ref := ins.Method
	if ref == nil {
		return im.errorf(diag.TrBadOperand, "%s without a method operand", ins.Op)
	}
	c, err := im.resolveCallee(ref)
	if err != nil {
		return err
	}
	n := len(ref.Params)
	if ref.HasThis {
		n++
	}
	vs, err := im.popN(n)
	if err != nil {
		return err
	}
	im.flush()
	args := make([]string, 0, n)
	params := vs
	var expr string
	if ref.HasThis {
		recv := vs[0]
		params = vs[1:]
		if constrained != nil {
			ct, err := im.ctx.TypeName(constrained)
			if err != nil {
				return im.wrap(err)
			}
			recv = value{expr: rtabi.Call(rtabi.Inst(rtabi.Constrained, ct), recv.expr), typ: StackType{Code: StackO}}
		}
		virtual := ins.Op == metadata.OpCallvirt && c.m.IsVirtual && !c.m.IsFinal && !c.def.IsSealed
		if virtual {
			slot, err := im.env.VTables.SlotName(c.def, c.m)
			if err != nil {
				return im.wrap(err)
			}
			recv = im.materialize(recv)
			expr = rtabi.Call(rtabi.Inst(rtabi.VTableOf, c.decl), recv.expr) + "->" + slot
			args = append(args, stackTo(rtabi.Inst(rtabi.GCObjRef, rtabi.ObjectTypeRef), recv.expr))
		} else {
			expr = c.fn
			args = append(args, stackTo(c.receiverType(), recv.expr))
		}
	} else {
		expr = c.fn
	}
	for i, p := range params {
		args = append(args, stackTo(c.params[i], p.expr))
	}
	call := rtabi.Call(expr, args...)
	if c.ret.IsVoid() {
		im.emit("%s;", call)
		return nil
	}
	t, err := im.stackTypeOf(c.ret)
	if err != nil {
		return err
	}
	name := im.newTemp()
	im.emit("auto %s = %s;", name, stackFrom(call))
	im.push(name, t, true)
	return nil
}

func (im *importer) lowerNewobj(ins *metadata.Instruction) error {
	ref := ins.Method
	if ref == nil {
		return im.errorf(diag.TrBadOperand, "newobj without a constructor operand")
	}
	c, err := im.resolveCallee(ref)
	if err != nil {
		return err
	}
	vs, err := im.popN(len(ref.Params))
	if err != nil {
		return err
	}
	im.flush()
	t, err := im.stackTypeOf(ref.DeclaringType)
	if err != nil {
		return err
	}
	obj := im.newTemp()
	args := make([]string, 0, len(vs)+1)
	if c.def.IsValueType {
		im.emit("%s %s{};", c.decl, obj)
		args = append(args, rtabi.Call(rtabi.Op("ref"), obj))
	} else {
		im.emit("auto %s = %s();", obj, rtabi.Inst(rtabi.GCNew, c.decl))
		args = append(args, obj)
	}
	for i, v := range vs {
		args = append(args, stackTo(c.params[i], v.expr))
	}
	im.emit("%s;", rtabi.Call(c.fn, args...))
	im.push(stackFrom(obj), t, true)
	return nil
}

// fieldTarget is a resolved field operand.
type fieldTarget struct {
	f    *metadata.FieldDef
	decl string
	name string
	sig  *metadata.TypeSig
	cpp  string
}

func (im *importer) resolveField(ref *metadata.FieldRef) (*fieldTarget, error) {
	if ref == nil {
		return nil, im.errorf(diag.TrBadOperand, "field instruction without a field operand")
	}
	def, _, ok := im.env.Closure.ResolveSig(ref.DeclaringType, im.env.Module)
	if !ok {
		return nil, im.errorf(diag.TrMissingDependency, "cannot resolve declaring type of %s", ref)
	}
	f, _ := im.env.Closure.FindField(def, ref.Name)
	if f == nil {
		return nil, im.errorf(diag.TrMissingDependency, "cannot resolve field %s", ref)
	}
	decl, err := im.ctx.TypeName(ref.DeclaringType)
	if err != nil {
		return nil, im.wrap(err)
	}
	name, err := mangle.FieldName(f)
	if err != nil {
		return nil, im.wrap(err)
	}
	sig := ref.Type.Substitute(typeArgs(ref.DeclaringType), nil)
	cpp, err := im.ctx.VariableTypeName(sig)
	if err != nil {
		return nil, im.wrap(err)
	}
	return &fieldTarget{f: f, decl: decl, name: name, sig: sig, cpp: cpp}, nil
}

// access spells the field through a receiver stack entry.
func (ft *fieldTarget) access(recv value) (string, bool) {
	switch recv.typ.Code {
	case StackO:
		return stackTo(rtabi.Inst(rtabi.GCObjRef, ft.decl), recv.expr) + "->" + ft.name, true
	case StackRef:
		return stackTo(rtabi.Inst(rtabi.GCRef, ft.decl), recv.expr) + "->" + ft.name, true
	case StackNativeInt:
		return stackTo(rtabi.Inst(rtabi.GCPtr, ft.decl), recv.expr) + "->" + ft.name, true
	case StackValue:
		return stackTo(ft.decl, recv.expr) + "." + ft.name, true
	}
	return "", false
}

func (ft *fieldTarget) static() string {
	if ft.f.IsLiteral() {
		return ft.decl + "::" + ft.name
	}
	holder := rtabi.Inst(rtabi.StaticHolder, "typename "+ft.decl+"::Static")
	return holder + "::get()." + ft.name
}

func (im *importer) lowerField(ins *metadata.Instruction) error {
	ft, err := im.resolveField(ins.Field)
	if err != nil {
		return err
	}
	t, err := im.stackTypeOf(ft.sig)
	if err != nil {
		return err
	}
	refType := StackType{Code: StackRef, Sig: metadata.ByRefSig(ft.sig)}
	switch ins.Op {
	case metadata.OpLdsfld:
		im.push(stackFrom(ft.static()), t, false)
	case metadata.OpLdsflda:
		if ft.f.IsLiteral() {
			return im.errorf(diag.TrBadOperand, "address of literal field %s", ins.Field)
		}
		im.push(rtabi.Call(rtabi.Op("ref"), ft.static()), refType, true)
	case metadata.OpStsfld:
		v, err := im.pop()
		if err != nil {
			return err
		}
		im.flush()
		im.emit("%s = %s;", ft.static(), stackTo(ft.cpp, v.expr))
	case metadata.OpLdfld, metadata.OpLdflda:
		recv, err := im.pop()
		if err != nil {
			return err
		}
		if ins.Op == metadata.OpLdflda && recv.typ.Code == StackValue {
			return im.errorf(diag.TrBadOperand, "ldflda on a value of type %s", recv.typ)
		}
		acc, ok := ft.access(recv)
		if !ok {
			return im.errorf(diag.TrBadOperand, "%s on %s", ins.Op, recv.typ)
		}
		if ins.Op == metadata.OpLdflda {
			im.push(rtabi.Call(rtabi.Op("ref"), acc), refType, false)
		} else {
			im.push(stackFrom(acc), t, false)
		}
	case metadata.OpStfld:
		vs, err := im.popN(2)
		if err != nil {
			return err
		}
		if vs[0].typ.Code == StackValue {
			return im.errorf(diag.TrBadOperand, "stfld on a value of type %s", vs[0].typ)
		}
		acc, ok := ft.access(vs[0])
		if !ok {
			return im.errorf(diag.TrBadOperand, "stfld on %s", vs[0].typ)
		}
		im.flush()
		im.emit("%s = %s;", acc, stackTo(ft.cpp, vs[1].expr))
	}
	return nil
}

// elementSig picks the element type of a typed array or indirect access.
// Reference forms take it from the operand when known.
func (im *importer) elementSig(ins *metadata.Instruction, operand StackType, next bool) *metadata.TypeSig {
	if ins.Type != nil {
		return ins.Type
	}
	e := elemOfOp[ins.Op]
	if e != metadata.ElemEnd {
		return metadata.Prim(e)
	}
	if next && operand.Sig != nil {
		if s := operand.Sig.RemoveModifiers(); s.Next != nil {
			return s.Next
		}
	}
	return metadata.Prim(metadata.ElemObject)
}

func (im *importer) lowerArray(ins *metadata.Instruction) error {
	switch op := ins.Op; {
	case op == metadata.OpNewarr:
		n, err := im.pop()
		if err != nil {
			return err
		}
		if !isIntLike(n.typ.Code) {
			return im.errorf(diag.TrBadOperand, "newarr with length of type %s", n.typ)
		}
		elem, err := im.ctx.TypeName(ins.Type)
		if err != nil {
			return im.wrap(err)
		}
		im.flush()
		name := im.newTemp()
		im.emit("auto %s = %s;", name, rtabi.Call(rtabi.Inst(rtabi.GCNewArray, elem), n.expr))
		im.push(stackFrom(name), StackType{Code: StackO, Sig: metadata.SZArraySig(ins.Type)}, true)
	case op == metadata.OpLdlen:
		a, err := im.pop()
		if err != nil {
			return err
		}
		if a.typ.Code != StackO {
			return im.errorf(diag.TrBadOperand, "ldlen on %s", a.typ)
		}
		im.push(rtabi.Call(rtabi.Op("ldlen"), a.expr), StackType{Code: StackNativeInt}, false)
	case op >= metadata.OpStelemI && op <= metadata.OpStelemRef, op == metadata.OpStelem:
		vs, err := im.popN(3)
		if err != nil {
			return err
		}
		if vs[0].typ.Code != StackO || !isIntLike(vs[1].typ.Code) {
			return im.errorf(diag.TrBadOperand, "%s on %s[%s]", op, vs[0].typ, vs[1].typ)
		}
		elem, err := im.ctx.TypeName(im.elementSig(ins, vs[0].typ, true))
		if err != nil {
			return im.wrap(err)
		}
		im.flush()
		im.emit("%s;", rtabi.Call(rtabi.Inst(rtabi.Op("stelem"), elem), joinExprs(vs)...))
	default:
		vs, err := im.popN(2)
		if err != nil {
			return err
		}
		if vs[0].typ.Code != StackO || !isIntLike(vs[1].typ.Code) {
			return im.errorf(diag.TrBadOperand, "%s on %s[%s]", op, vs[0].typ, vs[1].typ)
		}
		sig := im.elementSig(ins, vs[0].typ, true)
		elem, err := im.ctx.TypeName(sig)
		if err != nil {
			return im.wrap(err)
		}
		if op == metadata.OpLdelema {
			im.push(rtabi.Call(rtabi.Inst(rtabi.Op("ldelema"), elem), vs[0].expr, vs[1].expr),
				StackType{Code: StackRef, Sig: metadata.ByRefSig(sig)}, false)
			return nil
		}
		t, err := im.stackTypeOf(sig)
		if err != nil {
			return err
		}
		im.push(rtabi.Call(rtabi.Inst(rtabi.Op("ldelem"), elem), vs[0].expr, vs[1].expr), t, false)
	}
	return nil
}

func isAddress(c StackCode) bool {
	return c == StackRef || c == StackNativeInt
}

func (im *importer) lowerIndirect(ins *metadata.Instruction) error {
	op := ins.Op
	store := op == metadata.OpStobj || op == metadata.OpCpobj || op == metadata.OpStindI ||
		(op >= metadata.OpStindRef && op <= metadata.OpStindR8)
	switch {
	case op == metadata.OpInitobj:
		a, err := im.pop()
		if err != nil {
			return err
		}
		if !isAddress(a.typ.Code) {
			return im.errorf(diag.TrBadOperand, "initobj on %s", a.typ)
		}
		t, err := im.ctx.TypeName(ins.Type)
		if err != nil {
			return im.wrap(err)
		}
		im.flush()
		im.emit("%s;", rtabi.Call(rtabi.Inst(rtabi.Op("initobj"), t), a.expr))
	case store:
		vs, err := im.popN(2)
		if err != nil {
			return err
		}
		if !isAddress(vs[0].typ.Code) {
			return im.errorf(diag.TrBadOperand, "%s through %s", op, vs[0].typ)
		}
		t, err := im.ctx.TypeName(im.elementSig(ins, vs[0].typ, true))
		if err != nil {
			return im.wrap(err)
		}
		name := "stind"
		switch op {
		case metadata.OpStobj:
			name = "stobj"
		case metadata.OpCpobj:
			name = "cpobj"
		}
		im.flush()
		im.emit("%s;", rtabi.Call(rtabi.Inst(rtabi.Op(name), t), vs[0].expr, vs[1].expr))
	default:
		a, err := im.pop()
		if err != nil {
			return err
		}
		if !isAddress(a.typ.Code) {
			return im.errorf(diag.TrBadOperand, "%s through %s", op, a.typ)
		}
		sig := im.elementSig(ins, a.typ, true)
		t, err := im.ctx.TypeName(sig)
		if err != nil {
			return im.wrap(err)
		}
		st, err := im.stackTypeOf(sig)
		if err != nil {
			return err
		}
		name := "ldind"
		if op == metadata.OpLdobj {
			name = "ldobj"
		}
		im.push(rtabi.Call(rtabi.Inst(rtabi.Op(name), t), a.expr), st, false)
	}
	return nil
}

func (im *importer) lowerObjectModel(ins *metadata.Instruction) error {
	if ins.Type == nil {
		return im.errorf(diag.TrBadOperand, "%s without a type operand", ins.Op)
	}
	if ins.Op == metadata.OpSizeof {
		cpp, err := im.ctx.VariableTypeName(ins.Type)
		if err != nil {
			return im.wrap(err)
		}
		im.push(rtabi.StackInt32+"(sizeof("+cpp+"))", StackType{Code: StackInt32}, true)
		return nil
	}
	t, err := im.ctx.TypeName(ins.Type)
	if err != nil {
		return im.wrap(err)
	}
	v, err := im.pop()
	if err != nil {
		return err
	}
	obj := StackType{Code: StackO, Sig: ins.Type}
	switch ins.Op {
	case metadata.OpBox:
		if !ins.Type.IsValueType() && !ins.Type.IsGenericParam() {
			im.stack = append(im.stack, v)
			return nil
		}
		im.push(stackFrom(rtabi.Call(rtabi.Inst(rtabi.Box, t), v.expr)), StackType{Code: StackO}, false)
		im.stack[len(im.stack)-1] = im.materialize(im.stack[len(im.stack)-1])
	case metadata.OpUnbox:
		if v.typ.Code != StackO {
			return im.errorf(diag.TrBadOperand, "unbox of %s", v.typ)
		}
		im.push(rtabi.Call(rtabi.Inst(rtabi.Unbox, t), v.expr), StackType{Code: StackRef, Sig: metadata.ByRefSig(ins.Type)}, false)
	case metadata.OpUnboxAny:
		if v.typ.Code != StackO {
			return im.errorf(diag.TrBadOperand, "unbox.any of %s", v.typ)
		}
		st, err := im.stackTypeOf(ins.Type)
		if err != nil {
			return err
		}
		im.push(stackFrom(rtabi.Call(rtabi.Inst(rtabi.UnboxAny, t), v.expr)), st, false)
	case metadata.OpCastclass:
		if v.typ.Code != StackO {
			return im.errorf(diag.TrBadOperand, "castclass of %s", v.typ)
		}
		im.push(stackFrom(rtabi.Call(rtabi.Inst(rtabi.Castclass, t), v.expr)), obj, false)
		im.stack[len(im.stack)-1] = im.materialize(im.stack[len(im.stack)-1])
	case metadata.OpIsinst:
		if v.typ.Code != StackO {
			return im.errorf(diag.TrBadOperand, "isinst of %s", v.typ)
		}
		im.push(stackFrom(rtabi.Call(rtabi.Inst(rtabi.Isinst, t), v.expr)), obj, false)
	}
	return nil
}
