package importer

import (
	"math"
	"strings"

	"natsu/internal/diag"
	"natsu/internal/literal"
	"natsu/internal/metadata"
	"natsu/internal/rtabi"
)

// lower translates one instruction. done reports that the block ended and
// succs lists the blocks control may continue to.
func (im *importer) lower(ins *metadata.Instruction) (succs []successor, done bool, err error) {
	constrained := im.constrained
	if !ins.Op.IsPrefix() {
		im.constrained = nil
	}
	switch op := ins.Op; {
	case op == metadata.OpNop, op == metadata.OpBreak,
		op == metadata.OpVolatile, op == metadata.OpUnaligned, op == metadata.OpTail, op == metadata.OpReadonly:
		return nil, false, nil
	case op == metadata.OpConstrained:
		if ins.Type == nil {
			return nil, false, im.errorf(diag.TrBadOperand, "constrained. without a type operand")
		}
		im.constrained = ins.Type
		return nil, false, nil

	case op == metadata.OpLdarg, op == metadata.OpLdarga, op == metadata.OpStarg:
		if ins.Int < 0 || int(ins.Int) >= len(im.args) {
			return nil, false, im.errorf(diag.TrBadOperand, "argument %d out of range", ins.Int)
		}
		return nil, false, im.lowerSlot(op, im.args[ins.Int])
	case op == metadata.OpLdloc, op == metadata.OpLdloca, op == metadata.OpStloc:
		if ins.Int < 0 || int(ins.Int) >= len(im.locals) {
			return nil, false, im.errorf(diag.TrBadOperand, "local %d out of range", ins.Int)
		}
		return nil, false, im.lowerSlot(op, im.locals[ins.Int])

	case op == metadata.OpLdnull:
		im.push(rtabi.Null, StackType{Code: StackO}, true)
	case op == metadata.OpLdcI4:
		im.push(rtabi.StackInt32+"("+literal.Int32(int32(ins.Int))+")", StackType{Code: StackInt32}, true)
	case op == metadata.OpLdcI8:
		im.push(rtabi.StackInt64+"("+literal.Int64(ins.Int)+")", StackType{Code: StackInt64}, true)
	case op == metadata.OpLdcR4:
		im.push(rtabi.StackF+"("+literal.Float32(math.Float32bits(float32(ins.Float)))+")", StackType{Code: StackF}, true)
	case op == metadata.OpLdcR8:
		im.push(rtabi.StackF+"("+literal.Float64(math.Float64bits(ins.Float))+")", StackType{Code: StackF}, true)
	case op == metadata.OpLdstr:
		idx := im.env.Pool.Intern(ins.Str)
		im.push(stackFrom(rtabi.Call(rtabi.LoadString, literal.Name(idx))), StackType{Code: StackO, Sig: metadata.Prim(metadata.ElemString)}, true)

	case op == metadata.OpDup:
		v, err := im.pop()
		if err != nil {
			return nil, false, err
		}
		v = im.materialize(v)
		im.stack = append(im.stack, v, v)
	case op == metadata.OpPop:
		v, err := im.pop()
		if err != nil {
			return nil, false, err
		}
		if !v.stable {
			im.emit("static_cast<void>(%s);", v.expr)
		}

	case op >= metadata.OpAdd && op <= metadata.OpXor, op >= metadata.OpAddOvf && op <= metadata.OpSubOvfUn:
		vs, err := im.popN(2)
		if err != nil {
			return nil, false, err
		}
		t, ok := binaryResult(op, vs[0].typ, vs[1].typ)
		if !ok {
			return nil, false, im.errorf(diag.TrBadOperand, "%s on %s and %s", op, vs[0].typ, vs[1].typ)
		}
		im.push(rtabi.Call(opFunc(op), vs[0].expr, vs[1].expr), t, false)
	case op == metadata.OpShl, op == metadata.OpShr, op == metadata.OpShrUn:
		vs, err := im.popN(2)
		if err != nil {
			return nil, false, err
		}
		t, ok := shiftResult(vs[0].typ, vs[1].typ)
		if !ok {
			return nil, false, im.errorf(diag.TrBadOperand, "%s on %s by %s", op, vs[0].typ, vs[1].typ)
		}
		im.push(rtabi.Call(opFunc(op), vs[0].expr, vs[1].expr), t, false)
	case op == metadata.OpNeg, op == metadata.OpNot, op == metadata.OpCkfinite:
		v, err := im.pop()
		if err != nil {
			return nil, false, err
		}
		t, ok := unaryResult(op, v.typ)
		if op == metadata.OpCkfinite {
			t, ok = v.typ, v.typ.Code == StackF
		}
		if !ok {
			return nil, false, im.errorf(diag.TrBadOperand, "%s on %s", op, v.typ)
		}
		im.push(rtabi.Call(opFunc(op), v.expr), t, false)
	case op == metadata.OpCeq, op == metadata.OpCgt, op == metadata.OpCgtUn, op == metadata.OpClt, op == metadata.OpCltUn:
		vs, err := im.popN(2)
		if err != nil {
			return nil, false, err
		}
		if !canCompare(op, vs[0].typ, vs[1].typ) {
			return nil, false, im.errorf(diag.TrBadOperand, "%s on %s and %s", op, vs[0].typ, vs[1].typ)
		}
		im.push(rtabi.Call(opFunc(op), vs[0].expr, vs[1].expr), StackType{Code: StackInt32}, false)
	case isConv(op):
		v, err := im.pop()
		if err != nil {
			return nil, false, err
		}
		t, _ := convResult(op)
		if !convertible(v.typ) {
			return nil, false, im.errorf(diag.TrBadOperand, "%s on %s", op, v.typ)
		}
		im.push(rtabi.Call(opFunc(op), v.expr), t, false)

	case op == metadata.OpBr, op == metadata.OpLeave:
		if op == metadata.OpLeave {
			im.stack = im.stack[:0]
		}
		im.settle()
		im.emit("goto %s;", im.label(ins.Target))
		return []successor{im.successor(ins.Target)}, true, nil
	case op == metadata.OpBrfalse, op == metadata.OpBrtrue:
		v, err := im.pop()
		if err != nil {
			return nil, false, err
		}
		if v.typ.Code == StackF || v.typ.Code == StackValue {
			return nil, false, im.errorf(diag.TrBadOperand, "%s on %s", op, v.typ)
		}
		return im.conditional(ins, rtabi.Call(opFunc(op), im.settle(v)[0].expr))
	case op >= metadata.OpBeq && op <= metadata.OpBltUn:
		vs, err := im.popN(2)
		if err != nil {
			return nil, false, err
		}
		if !canCompare(op, vs[0].typ, vs[1].typ) {
			return nil, false, im.errorf(diag.TrBadOperand, "%s on %s and %s", op, vs[0].typ, vs[1].typ)
		}
		ops := im.settle(vs...)
		return im.conditional(ins, rtabi.Call(opFunc(op), ops[0].expr, ops[1].expr))
	case op == metadata.OpSwitch:
		v, err := im.pop()
		if err != nil {
			return nil, false, err
		}
		if !isIntLike(v.typ.Code) {
			return nil, false, im.errorf(diag.TrBadOperand, "switch on %s", v.typ)
		}
		v = im.settle(v)[0]
		im.emit("switch (%s)", rtabi.Call(rtabi.Op("switch_index"), v.expr))
		im.emit("{")
		for i, t := range ins.Targets {
			im.emit("case %d:", i)
			im.emit("    goto %s;", im.label(t))
			succs = append(succs, im.successor(t))
		}
		im.emit("}")
		return im.continueTo(succs)
	case op == metadata.OpRet:
		return nil, true, im.lowerReturn()
	case op == metadata.OpThrow:
		v, err := im.pop()
		if err != nil {
			return nil, false, err
		}
		if v.typ.Code != StackO {
			return nil, false, im.errorf(diag.TrBadOperand, "throw of %s", v.typ)
		}
		im.emit("%s;", rtabi.Call(rtabi.Throw, v.expr))
		return nil, true, nil
	case op == metadata.OpRethrow:
		im.emit("throw;")
		return nil, true, nil
	case op == metadata.OpEndfinally:
		im.stack = im.stack[:0]
		im.emit("return;")
		return nil, true, nil

	case op == metadata.OpCall, op == metadata.OpCallvirt:
		return nil, false, im.lowerCall(ins, constrained)
	case op == metadata.OpNewobj:
		return nil, false, im.lowerNewobj(ins)
	case op == metadata.OpLdftn:
		fn, err := im.functionName(ins.Method)
		if err != nil {
			return nil, false, err
		}
		im.push(rtabi.Call(rtabi.Op("ldftn"), "&"+fn), StackType{Code: StackNativeInt}, true)
	case op == metadata.OpLdfld, op == metadata.OpLdflda, op == metadata.OpStfld,
		op == metadata.OpLdsfld, op == metadata.OpLdsflda, op == metadata.OpStsfld:
		return nil, false, im.lowerField(ins)

	case op == metadata.OpNewarr, op == metadata.OpLdlen, op == metadata.OpLdelema,
		op >= metadata.OpLdelemI1 && op <= metadata.OpStelemRef, op == metadata.OpLdelem, op == metadata.OpStelem:
		return nil, false, im.lowerArray(ins)
	case op >= metadata.OpLdindI1 && op <= metadata.OpStindR8, op == metadata.OpStindI,
		op == metadata.OpLdobj, op == metadata.OpStobj, op == metadata.OpCpobj, op == metadata.OpInitobj:
		return nil, false, im.lowerIndirect(ins)
	case op == metadata.OpBox, op == metadata.OpUnbox, op == metadata.OpUnboxAny,
		op == metadata.OpCastclass, op == metadata.OpIsinst, op == metadata.OpSizeof:
		return nil, false, im.lowerObjectModel(ins)

	default:
		return nil, false, im.errorf(diag.TrUnsupportedInstruction, "instruction %s is not supported", op)
	}
	return nil, false, nil
}

func isConv(op metadata.OpCode) bool {
	_, ok := convResult(op)
	return ok
}

func (im *importer) successor(target uint32) successor {
	return successor{from: im.offset, target: target, stack: im.stackTypes()}
}

// conditional emits a guarded goto; the remaining stack was already settled.
func (im *importer) conditional(ins *metadata.Instruction, cond string) ([]successor, bool, error) {
	im.emit("if (%s)", cond)
	im.emit("    goto %s;", im.label(ins.Target))
	return im.continueTo([]successor{im.successor(ins.Target)})
}

func (im *importer) continueTo(succs []successor) ([]successor, bool, error) {
	nb := im.next(im.cur)
	if nb == nil {
		return nil, false, im.errorf(diag.TrBadBranchTarget, "control falls off the end of the method body")
	}
	return append(succs, im.successor(nb.start)), true, nil
}

func (im *importer) lowerSlot(op metadata.OpCode, s argSlot) error {
	switch op {
	case metadata.OpLdarg, metadata.OpLdloc:
		t, err := im.stackTypeOf(s.sig)
		if err != nil {
			return err
		}
		im.push(stackFrom(s.name), t, false)
	case metadata.OpLdarga, metadata.OpLdloca:
		sig := metadata.ByRefSig(s.sig)
		if s.name == "_this" && s.sig.Elem == metadata.ElemByRef {
			im.push(stackFrom(s.name), StackType{Code: StackRef, Sig: s.sig}, true)
			return nil
		}
		im.push(rtabi.Call(rtabi.Op("ref"), s.name), StackType{Code: StackRef, Sig: sig}, true)
	default:
		v, err := im.pop()
		if err != nil {
			return err
		}
		im.flush()
		im.emit("%s = %s;", s.name, stackTo(s.cpp, v.expr))
	}
	return nil
}

func (im *importer) lowerReturn() error {
	if im.m.Return.IsVoid() {
		if len(im.stack) != 0 {
			return im.errorf(diag.TrStackMismatch, "stack %s is not empty at return", shapeString(im.stackTypes()))
		}
		im.emit("return;")
		im.returns++
		return nil
	}
	v, err := im.pop()
	if err != nil {
		return err
	}
	if len(im.stack) != 0 {
		return im.errorf(diag.TrStackMismatch, "stack %s holds more than the return value", shapeString(append(im.stackTypes(), v.typ)))
	}
	ret, err := im.ctx.VariableTypeName(im.m.Return)
	if err != nil {
		return im.wrap(err)
	}
	im.emit("return %s;", stackTo(ret, v.expr))
	im.returns++
	return nil
}

// typeArgs returns the instantiation arguments of a generic instance.
func typeArgs(sig *metadata.TypeSig) []*metadata.TypeSig {
	sig = sig.RemoveModifiers()
	if sig != nil && sig.Elem == metadata.ElemGenericInst {
		return sig.Args
	}
	return nil
}

func joinExprs(vs []value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.expr
	}
	return out
}

func templateArgs(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "<" + strings.Join(names, ", ") + ">"
}
