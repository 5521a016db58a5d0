package metadata

import (
	"fmt"
	"strings"
)

// ElementType mirrors ECMA-335 II.23.1.16.
type ElementType uint8

const (
	ElemEnd         ElementType = 0x00
	ElemVoid        ElementType = 0x01
	ElemBoolean     ElementType = 0x02
	ElemChar        ElementType = 0x03
	ElemI1          ElementType = 0x04
	ElemU1          ElementType = 0x05
	ElemI2          ElementType = 0x06
	ElemU2          ElementType = 0x07
	ElemI4          ElementType = 0x08
	ElemU4          ElementType = 0x09
	ElemI8          ElementType = 0x0a
	ElemU8          ElementType = 0x0b
	ElemR4          ElementType = 0x0c
	ElemR8          ElementType = 0x0d
	ElemString      ElementType = 0x0e
	ElemPtr         ElementType = 0x0f
	ElemByRef       ElementType = 0x10
	ElemValueType   ElementType = 0x11
	ElemClass       ElementType = 0x12
	ElemVar         ElementType = 0x13
	ElemArray       ElementType = 0x14
	ElemGenericInst ElementType = 0x15
	ElemTypedByRef  ElementType = 0x16
	ElemI           ElementType = 0x18
	ElemU           ElementType = 0x19
	ElemFnPtr       ElementType = 0x1b
	ElemObject      ElementType = 0x1c
	ElemSZArray     ElementType = 0x1d
	ElemMVar        ElementType = 0x1e
	ElemCModReqd    ElementType = 0x1f
	ElemCModOpt     ElementType = 0x20
	ElemSentinel    ElementType = 0x41
	ElemPinned      ElementType = 0x45
)

var elemNames = map[ElementType]string{
	ElemVoid:        "void",
	ElemBoolean:     "bool",
	ElemChar:        "char",
	ElemI1:          "int8",
	ElemU1:          "uint8",
	ElemI2:          "int16",
	ElemU2:          "uint16",
	ElemI4:          "int32",
	ElemU4:          "uint32",
	ElemI8:          "int64",
	ElemU8:          "uint64",
	ElemR4:          "float32",
	ElemR8:          "float64",
	ElemString:      "string",
	ElemPtr:         "ptr",
	ElemByRef:       "byref",
	ElemValueType:   "valuetype",
	ElemClass:       "class",
	ElemVar:         "var",
	ElemArray:       "array",
	ElemGenericInst: "genericinst",
	ElemTypedByRef:  "typedref",
	ElemI:           "native int",
	ElemU:           "native uint",
	ElemFnPtr:       "fnptr",
	ElemObject:      "object",
	ElemSZArray:     "szarray",
	ElemMVar:        "mvar",
	ElemCModReqd:    "modreq",
	ElemCModOpt:     "modopt",
	ElemSentinel:    "sentinel",
	ElemPinned:      "pinned",
}

func (e ElementType) String() string {
	if s, ok := elemNames[e]; ok {
		return s
	}
	return fmt.Sprintf("elem(0x%02x)", uint8(e))
}

// primitiveNames maps corlib primitive element types to their System type names.
var primitiveNames = map[ElementType]string{
	ElemVoid:       "Void",
	ElemBoolean:    "Boolean",
	ElemChar:       "Char",
	ElemI1:         "SByte",
	ElemU1:         "Byte",
	ElemI2:         "Int16",
	ElemU2:         "UInt16",
	ElemI4:         "Int32",
	ElemU4:         "UInt32",
	ElemI8:         "Int64",
	ElemU8:         "UInt64",
	ElemR4:         "Single",
	ElemR8:         "Double",
	ElemString:     "String",
	ElemTypedByRef: "TypedReference",
	ElemI:          "IntPtr",
	ElemU:          "UIntPtr",
	ElemObject:     "Object",
}

// PrimitiveName returns the System.* name of a corlib element type.
func (e ElementType) PrimitiveName() (string, bool) {
	n, ok := primitiveNames[e]
	return n, ok
}

// IsCorLibPrimitive reports element types that denote a corlib type without a TypeRef.
func (e ElementType) IsCorLibPrimitive() bool {
	_, ok := primitiveNames[e]
	return ok
}

// IsEnumUnderlying reports the integer element types an enum can be based on.
func (e ElementType) IsEnumUnderlying() bool {
	switch e {
	case ElemBoolean, ElemChar, ElemI1, ElemU1, ElemI2, ElemU2, ElemI4, ElemU4,
		ElemI8, ElemU8, ElemI, ElemU:
		return true
	}
	return false
}

// PrimitiveElem maps a corlib primitive value type name ("System.Int32") back
// to its element type.
func PrimitiveElem(fullName string) (ElementType, bool) {
	name, ok := strings.CutPrefix(fullName, "System.")
	if !ok {
		return ElemEnd, false
	}
	for e, n := range primitiveNames {
		if n == name && e.IsPrimitiveValue() {
			return e, true
		}
	}
	return ElemEnd, false
}

// IsPrimitiveValue reports the numeric/bool/char element types.
func (e ElementType) IsPrimitiveValue() bool {
	switch e {
	case ElemBoolean, ElemChar, ElemI1, ElemU1, ElemI2, ElemU2, ElemI4, ElemU4,
		ElemI8, ElemU8, ElemR4, ElemR8, ElemI, ElemU:
		return true
	}
	return false
}

// TypeRef names a type definition. An empty Scope means the module being
// translated.
type TypeRef struct {
	Scope     string `msgpack:"scope,omitempty" cbor:"scope,omitempty"`
	Namespace string `msgpack:"ns,omitempty" cbor:"ns,omitempty"`
	Name      string `msgpack:"name" cbor:"name"`
}

func (r *TypeRef) FullName() string {
	if r.Namespace == "" {
		return r.Name
	}
	return r.Namespace + "." + r.Name
}

func (r *TypeRef) String() string {
	if r.Scope == "" {
		return r.FullName()
	}
	return "[" + r.Scope + "]" + r.FullName()
}

// TypeSig is a type signature tree.
type TypeSig struct {
	Elem ElementType `msgpack:"elem" cbor:"elem"`
	// Type is set for ValueType and Class, and may be set for primitives.
	Type *TypeRef `msgpack:"type,omitempty" cbor:"type,omitempty"`
	// Next is the wrapped signature of Ptr, ByRef, SZArray, Array, Pinned and
	// the modifiers.
	Next *TypeSig `msgpack:"next,omitempty" cbor:"next,omitempty"`
	// Generic is the open Class/ValueType signature of a GenericInst.
	Generic *TypeSig   `msgpack:"generic,omitempty" cbor:"generic,omitempty"`
	Args    []*TypeSig `msgpack:"args,omitempty" cbor:"args,omitempty"`
	// Number and Name describe Var/MVar.
	Number uint32 `msgpack:"num,omitempty" cbor:"num,omitempty"`
	Name   string `msgpack:"vname,omitempty" cbor:"vname,omitempty"`
	Rank   uint32 `msgpack:"rank,omitempty" cbor:"rank,omitempty"`
	// Modifier is the modifier type of CModReqd/CModOpt.
	Modifier *TypeRef `msgpack:"mod,omitempty" cbor:"mod,omitempty"`
}

func Prim(e ElementType) *TypeSig { return &TypeSig{Elem: e} }

func ClassSig(scope, ns, name string) *TypeSig {
	return &TypeSig{Elem: ElemClass, Type: &TypeRef{Scope: scope, Namespace: ns, Name: name}}
}

func ValueSig(scope, ns, name string) *TypeSig {
	return &TypeSig{Elem: ElemValueType, Type: &TypeRef{Scope: scope, Namespace: ns, Name: name}}
}

func SZArraySig(elem *TypeSig) *TypeSig { return &TypeSig{Elem: ElemSZArray, Next: elem} }
func PtrSig(elem *TypeSig) *TypeSig     { return &TypeSig{Elem: ElemPtr, Next: elem} }
func ByRefSig(elem *TypeSig) *TypeSig   { return &TypeSig{Elem: ElemByRef, Next: elem} }

func VarSig(n uint32, name string) *TypeSig  { return &TypeSig{Elem: ElemVar, Number: n, Name: name} }
func MVarSig(n uint32, name string) *TypeSig { return &TypeSig{Elem: ElemMVar, Number: n, Name: name} }

func GenericInstSig(generic *TypeSig, args ...*TypeSig) *TypeSig {
	return &TypeSig{Elem: ElemGenericInst, Generic: generic, Args: args}
}

// IsVoid reports a nil signature or an explicit void.
func (s *TypeSig) IsVoid() bool {
	return s == nil || s.Elem == ElemVoid
}

// RemoveModifiers strips custom modifiers and pinned wrappers.
func (s *TypeSig) RemoveModifiers() *TypeSig {
	for s != nil && (s.Elem == ElemCModReqd || s.Elem == ElemCModOpt || s.Elem == ElemPinned) {
		s = s.Next
	}
	return s
}

// IsValueType reports whether values of the signature are stored inline.
// Pointers and by-refs count as value types: the slot holds the address.
func (s *TypeSig) IsValueType() bool {
	s = s.RemoveModifiers()
	if s == nil {
		return false
	}
	switch s.Elem {
	case ElemValueType, ElemPtr, ElemByRef, ElemFnPtr, ElemTypedByRef:
		return true
	case ElemGenericInst:
		return s.Generic != nil && s.Generic.Elem == ElemValueType
	}
	return s.Elem.IsPrimitiveValue()
}

// IsGenericParam reports Var/MVar.
func (s *TypeSig) IsGenericParam() bool {
	s = s.RemoveModifiers()
	return s != nil && (s.Elem == ElemVar || s.Elem == ElemMVar)
}

// Ref returns the TypeRef that the signature names directly, resolving
// primitives to the corlib.
func (s *TypeSig) Ref(corlib string) *TypeRef {
	s = s.RemoveModifiers()
	if s == nil {
		return nil
	}
	if s.Elem == ElemGenericInst {
		return s.Generic.Ref(corlib)
	}
	if s.Type != nil {
		return s.Type
	}
	if name, ok := s.Elem.PrimitiveName(); ok {
		return &TypeRef{Scope: corlib, Namespace: "System", Name: name}
	}
	return nil
}

// Equal compares two signatures structurally. Generic parameters compare by
// position only; scopes compare as written.
func (s *TypeSig) Equal(o *TypeSig) bool {
	if s == nil || o == nil {
		return s.IsVoid() && o.IsVoid()
	}
	if s.Elem != o.Elem || s.Number != o.Number || s.Rank != o.Rank || len(s.Args) != len(o.Args) {
		return false
	}
	if (s.Type == nil) != (o.Type == nil) {
		return false
	}
	if s.Type != nil && *s.Type != *o.Type {
		return false
	}
	if (s.Next == nil) != (o.Next == nil) || (s.Next != nil && !s.Next.Equal(o.Next)) {
		return false
	}
	if (s.Generic == nil) != (o.Generic == nil) || (s.Generic != nil && !s.Generic.Equal(o.Generic)) {
		return false
	}
	for i := range s.Args {
		if !s.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Substitute replaces Var/MVar by the given arguments. Parameters without a
// matching argument are kept.
func (s *TypeSig) Substitute(typeArgs, methodArgs []*TypeSig) *TypeSig {
	if s == nil || (len(typeArgs) == 0 && len(methodArgs) == 0) {
		return s
	}
	switch s.Elem {
	case ElemVar:
		if int(s.Number) < len(typeArgs) {
			return typeArgs[s.Number]
		}
		return s
	case ElemMVar:
		if int(s.Number) < len(methodArgs) {
			return methodArgs[s.Number]
		}
		return s
	}
	out := *s
	out.Next = s.Next.Substitute(typeArgs, methodArgs)
	if len(s.Args) > 0 {
		out.Args = make([]*TypeSig, len(s.Args))
		for i, a := range s.Args {
			out.Args[i] = a.Substitute(typeArgs, methodArgs)
		}
	}
	return &out
}

func (s *TypeSig) String() string {
	if s == nil {
		return "void"
	}
	switch s.Elem {
	case ElemValueType, ElemClass:
		if s.Type != nil {
			return s.Type.FullName()
		}
	case ElemPtr:
		return s.Next.String() + "*"
	case ElemByRef:
		return s.Next.String() + "&"
	case ElemSZArray:
		return s.Next.String() + "[]"
	case ElemArray:
		return s.Next.String() + "[" + strings.Repeat(",", int(max(s.Rank, 1)-1)) + "]"
	case ElemCModReqd, ElemCModOpt, ElemPinned:
		return s.Next.String()
	case ElemVar:
		if s.Name != "" {
			return s.Name
		}
		return fmt.Sprintf("!%d", s.Number)
	case ElemMVar:
		if s.Name != "" {
			return s.Name
		}
		return fmt.Sprintf("!!%d", s.Number)
	case ElemGenericInst:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = a.String()
		}
		return s.Generic.String() + "<" + strings.Join(args, ",") + ">"
	}
	if s.Type != nil {
		return s.Type.FullName()
	}
	return s.Elem.String()
}
