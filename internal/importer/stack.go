package importer

import (
	"strconv"

	"natsu/internal/diag"
	"natsu/internal/metadata"
	"natsu/internal/rtabi"
)

// StackCode classifies an evaluation stack entry.
type StackCode uint8

const (
	StackInt32 StackCode = iota
	StackInt64
	StackNativeInt
	StackF
	StackO
	StackRef
	StackValue
)

var stackCodeNames = [...]string{
	StackInt32:     "int32",
	StackInt64:     "int64",
	StackNativeInt: "native int",
	StackF:         "F",
	StackO:         "O",
	StackRef:       "&",
	StackValue:     "value",
}

func (c StackCode) String() string {
	if int(c) < len(stackCodeNames) {
		return stackCodeNames[c]
	}
	return "stack(" + strconv.Itoa(int(c)) + ")"
}

// StackType is the type of one evaluation stack entry.
type StackType struct {
	Code StackCode
	// Name is the C++ type of a value entry.
	Name string
	// Sig tracks the metadata type behind O, & and value entries when known.
	Sig *metadata.TypeSig
}

func (s StackType) String() string {
	if s.Code == StackValue {
		return s.Name
	}
	return s.Code.String()
}

// Same reports whether two entries have the same shape for merging.
func (s StackType) Same(o StackType) bool {
	return s.Code == o.Code && (s.Code != StackValue || s.Name == o.Name)
}

// CppName is the C++ type that holds the entry.
func (s StackType) CppName() string {
	switch s.Code {
	case StackInt32:
		return rtabi.StackInt32
	case StackInt64:
		return rtabi.StackInt64
	case StackNativeInt:
		return rtabi.StackNativeInt
	case StackF:
		return rtabi.StackF
	case StackO:
		return rtabi.StackO
	case StackRef:
		return rtabi.StackRef
	}
	return s.Name
}

// Shape is the stack before and after one instruction, bottom first.
type Shape struct {
	Before []StackType
	After  []StackType
}

func sameShape(a, b []StackType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Same(b[i]) {
			return false
		}
	}
	return true
}

func shapeString(s []StackType) string {
	out := "["
	for i, t := range s {
		if i > 0 {
			out += ", "
		}
		out += t.String()
	}
	return out + "]"
}

var primitiveStack = map[metadata.ElementType]StackCode{
	metadata.ElemBoolean: StackInt32,
	metadata.ElemChar:    StackInt32,
	metadata.ElemI1:      StackInt32,
	metadata.ElemU1:      StackInt32,
	metadata.ElemI2:      StackInt32,
	metadata.ElemU2:      StackInt32,
	metadata.ElemI4:      StackInt32,
	metadata.ElemU4:      StackInt32,
	metadata.ElemI8:      StackInt64,
	metadata.ElemU8:      StackInt64,
	metadata.ElemI:       StackNativeInt,
	metadata.ElemU:       StackNativeInt,
	metadata.ElemPtr:     StackNativeInt,
	metadata.ElemFnPtr:   StackNativeInt,
	metadata.ElemR4:      StackF,
	metadata.ElemR8:      StackF,
}

// stackTypeOf classifies a value of sig once it is loaded on the stack.
// Enums collapse to their underlying integer, corlib primitive structs to
// their element type and generic parameters stay value-by-name.
func (im *importer) stackTypeOf(sig *metadata.TypeSig) (StackType, error) {
	sig = sig.RemoveModifiers()
	if sig.IsVoid() {
		return StackType{}, diag.Errorf(diag.TrBadOperand, im.loc, "void value on the evaluation stack")
	}
	if code, ok := primitiveStack[sig.Elem]; ok {
		return StackType{Code: code, Sig: sig}, nil
	}
	switch sig.Elem {
	case metadata.ElemByRef:
		return StackType{Code: StackRef, Sig: sig}, nil
	case metadata.ElemString, metadata.ElemObject, metadata.ElemClass, metadata.ElemSZArray:
		return StackType{Code: StackO, Sig: sig}, nil
	case metadata.ElemArray:
		return StackType{}, diag.Errorf(diag.TrMultiDimArray, im.loc, "array of rank %d", sig.Rank)
	case metadata.ElemVar, metadata.ElemMVar:
		name, err := im.ctx.VariableTypeName(sig)
		if err != nil {
			return StackType{}, diag.Locate(err, im.loc)
		}
		return StackType{Code: StackValue, Name: name, Sig: sig}, nil
	case metadata.ElemValueType:
		if def, _, ok := im.env.Closure.ResolveSig(sig, im.env.Module); ok {
			if def.IsEnum {
				el := def.EnumUnderlying()
				if !el.IsEnumUnderlying() {
					return StackType{}, diag.Errorf(diag.TrUnsupportedElement, im.loc, "enum %s has underlying type %s", def.FullName(), el)
				}
				return StackType{Code: primitiveStack[el], Sig: sig}, nil
			}
			if e, ok := metadata.PrimitiveElem(def.FullName()); ok && im.env.Closure.Owner(def) != nil &&
				im.env.Closure.Owner(def).Name == im.env.Closure.CorLib() {
				return StackType{Code: primitiveStack[e], Sig: sig}, nil
			}
		}
		return im.valueType(sig)
	case metadata.ElemGenericInst:
		if sig.IsValueType() {
			return im.valueType(sig)
		}
		return StackType{Code: StackO, Sig: sig}, nil
	}
	return StackType{}, diag.Errorf(diag.TrUnsupportedElement, im.loc, "element type %s on the evaluation stack", sig.Elem)
}

func (im *importer) valueType(sig *metadata.TypeSig) (StackType, error) {
	name, err := im.ctx.TypeName(sig)
	if err != nil {
		return StackType{}, diag.Locate(err, im.loc)
	}
	return StackType{Code: StackValue, Name: name, Sig: sig}, nil
}

// spillName is the function-scope variable carrying stack slot depth of
// type t across a block boundary.
func (im *importer) spillName(depth int, t StackType) string {
	var code string
	switch t.Code {
	case StackInt32:
		code = "i4"
	case StackInt64:
		code = "i8"
	case StackNativeInt:
		code = "i"
	case StackF:
		code = "F"
	case StackO:
		code = "O"
	case StackRef:
		code = "Ref"
	default:
		n, ok := im.valueIDs[t.Name]
		if !ok {
			n = len(im.valueIDs)
			im.valueIDs[t.Name] = n
		}
		code = "v" + strconv.Itoa(n)
	}
	name := "_s" + strconv.Itoa(depth) + "_" + code
	if _, ok := im.spills[name]; !ok {
		im.spills[name] = t.CppName()
		im.spillOrder = append(im.spillOrder, name)
	}
	return name
}
