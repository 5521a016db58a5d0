package metadata

import "fmt"

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(0x%x)", uint16(op))
}

// IsPrefix reports opcodes that only modify the following instruction.
func (op OpCode) IsPrefix() bool {
	switch op {
	case OpUnaligned, OpVolatile, OpTail, OpConstrained, OpNo, OpReadonly:
		return true
	}
	return false
}

// Normalize rewrites short and macro forms into their canonical long form,
// moving the implied operand into Int. Branch targets are untouched.
func Normalize(in Instruction) Instruction {
	out := in
	switch op := in.Op; {
	case op >= OpLdarg0 && op <= OpLdarg3:
		out.Op, out.Int = OpLdarg, int64(op-OpLdarg0)
	case op >= OpLdloc0 && op <= OpLdloc3:
		out.Op, out.Int = OpLdloc, int64(op-OpLdloc0)
	case op >= OpStloc0 && op <= OpStloc3:
		out.Op, out.Int = OpStloc, int64(op-OpStloc0)
	case op == OpLdargS:
		out.Op = OpLdarg
	case op == OpLdargaS:
		out.Op = OpLdarga
	case op == OpStargS:
		out.Op = OpStarg
	case op == OpLdlocS:
		out.Op = OpLdloc
	case op == OpLdlocaS:
		out.Op = OpLdloca
	case op == OpStlocS:
		out.Op = OpStloc
	case op == OpLdcI4M1:
		out.Op, out.Int = OpLdcI4, -1
	case op >= OpLdcI40 && op <= OpLdcI48:
		out.Op, out.Int = OpLdcI4, int64(op-OpLdcI40)
	case op == OpLdcI4S:
		out.Op = OpLdcI4
	case op >= OpBrS && op <= OpBltUnS:
		out.Op = op - OpBrS + OpBr
	case op == OpLeaveS:
		out.Op = OpLeave
	}
	return out
}
