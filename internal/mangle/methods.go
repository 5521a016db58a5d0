package mangle

import (
	"strconv"
	"strings"

	"natsu/internal/diag"
	"natsu/internal/metadata"
)

const (
	ctorName  = "_ctor"
	cctorName = "Static"
)

// MethodName returns the member identifier of m inside its declaring struct.
//
//	.ctor            -> _ctor_<params>
//	.cctor           -> Static
//	static Foo       -> _s_Foo
//	op_Explicit(a)   -> _s_op_Explicit_<a>_<ret>
//	instance Foo(a)  -> Foo_<a>
func MethodName(m *metadata.MethodDef) (string, error) {
	if m.IsTypeInitializer() {
		return cctorName, nil
	}
	var name string
	if m.IsConstructor() {
		name = ctorName
	} else {
		id, err := Identifier(m.Name)
		if err != nil {
			return "", err
		}
		name = id
	}
	if m.IsStatic && !m.IsConstructor() {
		name = "_s_" + name
		if m.Name == "op_Explicit" || m.Name == "op_Implicit" {
			parts := make([]*metadata.TypeSig, 0, len(m.Params)+1)
			for _, p := range m.Params {
				parts = append(parts, p.Type)
			}
			parts = append(parts, m.Return)
			suffix, err := signatureSuffix(parts)
			if err != nil {
				return "", err
			}
			name += "_" + suffix
		}
		return name, nil
	}
	if len(m.Params) == 0 {
		return name, nil
	}
	parts := make([]*metadata.TypeSig, len(m.Params))
	for i, p := range m.Params {
		parts[i] = p.Type
	}
	suffix, err := signatureSuffix(parts)
	if err != nil {
		return "", err
	}
	return name + "_" + suffix, nil
}

// FieldName escapes a field name.
func FieldName(f *metadata.FieldDef) (string, error) {
	return Identifier(f.Name)
}

// ParamName escapes parameter i of m.
func ParamName(m *metadata.MethodDef, i int) (string, error) {
	return Identifier(m.ParamName(i))
}

func signatureSuffix(sigs []*metadata.TypeSig) (string, error) {
	parts := make([]string, len(sigs))
	for i, s := range sigs {
		p, err := SigFragment(s)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	return strings.Join(parts, "_"), nil
}

// SigFragment is the short, identifier-safe spelling of one signature used in
// overload suffixes: Int32, String, List_1_Int32, CharArray, Int32Ref.
func SigFragment(sig *metadata.TypeSig) (string, error) {
	sig = sig.RemoveModifiers()
	if sig == nil {
		return "Void", nil
	}
	switch sig.Elem {
	case metadata.ElemVar, metadata.ElemMVar:
		if sig.Name != "" {
			return Identifier(sig.Name)
		}
		if sig.Elem == metadata.ElemMVar {
			return "MVar" + strconv.FormatUint(uint64(sig.Number), 10), nil
		}
		return "Var" + strconv.FormatUint(uint64(sig.Number), 10), nil
	case metadata.ElemPtr, metadata.ElemByRef, metadata.ElemSZArray:
		inner, err := SigFragment(sig.Next)
		if err != nil {
			return "", err
		}
		switch sig.Elem {
		case metadata.ElemPtr:
			return inner + "Ptr", nil
		case metadata.ElemByRef:
			return inner + "Ref", nil
		}
		return inner + "Array", nil
	case metadata.ElemArray:
		return "", diag.Errorf(diag.TrMultiDimArray, diag.Location{}, "array of rank %d (%s)", sig.Rank, sig)
	case metadata.ElemGenericInst:
		parts := make([]*metadata.TypeSig, 0, len(sig.Args)+1)
		parts = append(parts, sig.Generic)
		parts = append(parts, sig.Args...)
		return signatureSuffix(parts)
	}
	if sig.Type != nil {
		return Identifier(sig.Type.Name)
	}
	if name, ok := sig.Elem.PrimitiveName(); ok {
		return name, nil
	}
	return "", diag.Errorf(diag.TrUnsupportedElement, diag.Location{}, "element type %s in signature", sig.Elem)
}
