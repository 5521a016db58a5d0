package importer

import (
	"strings"

	"natsu/internal/metadata"
	"natsu/internal/rtabi"
)

// opFunc is the ::natsu::ops helper implementing op. C++ alternative
// tokens (and, or, xor, not) get a trailing underscore.
func opFunc(op metadata.OpCode) string {
	name := strings.ReplaceAll(op.String(), ".", "_")
	switch name {
	case "and", "or", "xor", "not":
		name += "_"
	}
	return rtabi.Op(name)
}

func isIntLike(c StackCode) bool {
	return c == StackInt32 || c == StackNativeInt
}

// binaryResult follows the binary numeric and integer operation tables.
func binaryResult(op metadata.OpCode, a, b StackType) (StackType, bool) {
	integerOnly := false
	refArith := false
	switch op {
	case metadata.OpAdd, metadata.OpAddOvfUn, metadata.OpSub, metadata.OpSubOvfUn:
		refArith = true
	case metadata.OpAnd, metadata.OpOr, metadata.OpXor, metadata.OpDivUn, metadata.OpRemUn,
		metadata.OpAddOvf, metadata.OpSubOvf, metadata.OpMulOvf, metadata.OpMulOvfUn:
		integerOnly = true
	}
	if op == metadata.OpAddOvfUn || op == metadata.OpSubOvfUn {
		integerOnly = true
	}
	switch {
	case a.Code == StackInt32 && b.Code == StackInt32:
		return StackType{Code: StackInt32}, true
	case a.Code == StackInt64 && b.Code == StackInt64:
		return StackType{Code: StackInt64}, true
	case isIntLike(a.Code) && isIntLike(b.Code):
		return StackType{Code: StackNativeInt}, true
	case a.Code == StackF && b.Code == StackF && !integerOnly:
		return StackType{Code: StackF}, true
	}
	if refArith {
		isSub := op == metadata.OpSub || op == metadata.OpSubOvfUn
		switch {
		case a.Code == StackRef && isIntLike(b.Code):
			return a, true
		case isIntLike(a.Code) && b.Code == StackRef && !isSub:
			return b, true
		case a.Code == StackRef && b.Code == StackRef && isSub:
			return StackType{Code: StackNativeInt}, true
		}
	}
	return StackType{}, false
}

func unaryResult(op metadata.OpCode, a StackType) (StackType, bool) {
	switch a.Code {
	case StackInt32, StackInt64, StackNativeInt:
		return StackType{Code: a.Code}, true
	case StackF:
		return StackType{Code: StackF}, op == metadata.OpNeg
	}
	return StackType{}, false
}

func shiftResult(value, amount StackType) (StackType, bool) {
	if !isIntLike(amount.Code) {
		return StackType{}, false
	}
	switch value.Code {
	case StackInt32, StackInt64, StackNativeInt:
		return StackType{Code: value.Code}, true
	}
	return StackType{}, false
}

// canCompare follows the binary comparison table. Object references only
// take part in equality and cgt.un/bne.un (null checks).
func canCompare(op metadata.OpCode, a, b StackType) bool {
	switch {
	case a.Code == b.Code && a.Code != StackO && a.Code != StackValue:
		return true
	case isIntLike(a.Code) && isIntLike(b.Code):
		return true
	case (a.Code == StackRef && b.Code == StackNativeInt) || (a.Code == StackNativeInt && b.Code == StackRef):
		return true
	case a.Code == StackO && b.Code == StackO:
		switch op {
		case metadata.OpCeq, metadata.OpCgtUn, metadata.OpBeq, metadata.OpBneUn:
			return true
		}
	}
	return false
}

// convResult returns the stack type produced by a conv.* instruction.
func convResult(op metadata.OpCode) (StackType, bool) {
	switch op {
	case metadata.OpConvI1, metadata.OpConvI2, metadata.OpConvI4, metadata.OpConvU1, metadata.OpConvU2, metadata.OpConvU4,
		metadata.OpConvOvfI1, metadata.OpConvOvfI2, metadata.OpConvOvfI4, metadata.OpConvOvfU1, metadata.OpConvOvfU2, metadata.OpConvOvfU4,
		metadata.OpConvOvfI1Un, metadata.OpConvOvfI2Un, metadata.OpConvOvfI4Un, metadata.OpConvOvfU1Un, metadata.OpConvOvfU2Un, metadata.OpConvOvfU4Un:
		return StackType{Code: StackInt32}, true
	case metadata.OpConvI8, metadata.OpConvU8, metadata.OpConvOvfI8, metadata.OpConvOvfU8, metadata.OpConvOvfI8Un, metadata.OpConvOvfU8Un:
		return StackType{Code: StackInt64}, true
	case metadata.OpConvI, metadata.OpConvU, metadata.OpConvOvfI, metadata.OpConvOvfU, metadata.OpConvOvfIUn, metadata.OpConvOvfUUn:
		return StackType{Code: StackNativeInt}, true
	case metadata.OpConvR4, metadata.OpConvR8, metadata.OpConvRUn:
		return StackType{Code: StackF}, true
	}
	return StackType{}, false
}

func convertible(src StackType) bool {
	switch src.Code {
	case StackInt32, StackInt64, StackNativeInt, StackF, StackRef:
		return true
	}
	return false
}

// element types addressed by the typed ldelem/stelem/ldind/stind forms;
// ElemEnd means "reference, take it from the operand".
var elemOfOp = map[metadata.OpCode]metadata.ElementType{
	metadata.OpLdelemI1: metadata.ElemI1, metadata.OpLdelemU1: metadata.ElemU1,
	metadata.OpLdelemI2: metadata.ElemI2, metadata.OpLdelemU2: metadata.ElemU2,
	metadata.OpLdelemI4: metadata.ElemI4, metadata.OpLdelemU4: metadata.ElemU4,
	metadata.OpLdelemI8: metadata.ElemI8, metadata.OpLdelemI: metadata.ElemI,
	metadata.OpLdelemR4: metadata.ElemR4, metadata.OpLdelemR8: metadata.ElemR8,
	metadata.OpLdelemRef: metadata.ElemEnd,

	metadata.OpStelemI: metadata.ElemI, metadata.OpStelemI1: metadata.ElemI1,
	metadata.OpStelemI2: metadata.ElemI2, metadata.OpStelemI4: metadata.ElemI4,
	metadata.OpStelemI8: metadata.ElemI8, metadata.OpStelemR4: metadata.ElemR4,
	metadata.OpStelemR8: metadata.ElemR8, metadata.OpStelemRef: metadata.ElemEnd,

	metadata.OpLdindI1: metadata.ElemI1, metadata.OpLdindU1: metadata.ElemU1,
	metadata.OpLdindI2: metadata.ElemI2, metadata.OpLdindU2: metadata.ElemU2,
	metadata.OpLdindI4: metadata.ElemI4, metadata.OpLdindU4: metadata.ElemU4,
	metadata.OpLdindI8: metadata.ElemI8, metadata.OpLdindI: metadata.ElemI,
	metadata.OpLdindR4: metadata.ElemR4, metadata.OpLdindR8: metadata.ElemR8,
	metadata.OpLdindRef: metadata.ElemEnd,

	metadata.OpStindRef: metadata.ElemEnd, metadata.OpStindI1: metadata.ElemI1,
	metadata.OpStindI2: metadata.ElemI2, metadata.OpStindI4: metadata.ElemI4,
	metadata.OpStindI8: metadata.ElemI8, metadata.OpStindR4: metadata.ElemR4,
	metadata.OpStindR8: metadata.ElemR8, metadata.OpStindI: metadata.ElemI,
}
