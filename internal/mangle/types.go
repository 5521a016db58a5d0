package mangle

import (
	"fmt"
	"strings"

	"natsu/internal/diag"
	"natsu/internal/metadata"
	"natsu/internal/rtabi"
)

// Context carries what a type spelling depends on: the module being
// translated (for scope-less references), the corlib name and the names of
// the generic parameters in scope.
type Context struct {
	Module       string
	CorLib       string
	TypeParams   []string
	MethodParams []string
}

func (c Context) corlib() string {
	if c.CorLib == "" {
		return metadata.CorLibName
	}
	return c.CorLib
}

// WithType returns a context whose type generic parameters are those of t.
func (c Context) WithType(t *metadata.TypeDef) Context {
	c.TypeParams = genericNames(t.GenericParams)
	c.MethodParams = nil
	return c
}

// WithMethod adds the generic parameters of m.
func (c Context) WithMethod(m *metadata.MethodDef) Context {
	c.MethodParams = genericNames(m.GenericParams)
	return c
}

func genericNames(gps []metadata.GenericParam) []string {
	if len(gps) == 0 {
		return nil
	}
	out := make([]string, len(gps))
	for i, gp := range gps {
		out[i] = gp.Name
	}
	return out
}

// QualifiedRef spells a type reference as ::Module::Ns::Name.
func (c Context) QualifiedRef(ref *metadata.TypeRef) (string, error) {
	scope := ref.Scope
	if scope == "" {
		scope = c.Module
	}
	mod, err := ModuleName(scope)
	if err != nil {
		return "", err
	}
	ns, err := Namespace(ref.Namespace)
	if err != nil {
		return "", err
	}
	name, err := TypeShortName(ref.Name)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("::")
	sb.WriteString(mod)
	for _, seg := range ns {
		sb.WriteString("::")
		sb.WriteString(seg)
	}
	sb.WriteString("::")
	sb.WriteString(name)
	return sb.String(), nil
}

// GenericParamName returns the template parameter spelling of Var/MVar.
func (c Context) GenericParamName(sig *metadata.TypeSig) (string, error) {
	names := c.TypeParams
	if sig.Elem == metadata.ElemMVar {
		names = c.MethodParams
	}
	if int(sig.Number) < len(names) && names[sig.Number] != "" {
		return Identifier(names[sig.Number])
	}
	if sig.Name != "" {
		return Identifier(sig.Name)
	}
	if sig.Elem == metadata.ElemMVar {
		return fmt.Sprintf("TM%d", sig.Number), nil
	}
	return fmt.Sprintf("T%d", sig.Number), nil
}

// TypeName spells the C++ type that declares sig (the struct itself, not the
// variable wrapper).
func (c Context) TypeName(sig *metadata.TypeSig) (string, error) {
	sig = sig.RemoveModifiers()
	if sig == nil {
		return "void", nil
	}
	switch sig.Elem {
	case metadata.ElemVar, metadata.ElemMVar:
		return c.GenericParamName(sig)
	case metadata.ElemPtr:
		inner, err := c.TypeName(sig.Next)
		if err != nil {
			return "", err
		}
		return rtabi.Inst(rtabi.GCPtr, inner), nil
	case metadata.ElemByRef:
		inner, err := c.TypeName(sig.Next)
		if err != nil {
			return "", err
		}
		return rtabi.Inst(rtabi.GCRef, inner), nil
	case metadata.ElemSZArray:
		inner, err := c.TypeName(sig.Next)
		if err != nil {
			return "", err
		}
		arr, err := c.QualifiedRef(&metadata.TypeRef{Scope: c.corlib(), Namespace: "System", Name: "SZArray`1"})
		if err != nil {
			return "", err
		}
		return arr + "<" + inner + ">", nil
	case metadata.ElemArray:
		return "", diag.Errorf(diag.TrMultiDimArray, diag.Location{}, "array of rank %d (%s)", sig.Rank, sig)
	case metadata.ElemFnPtr:
		return "", diag.Errorf(diag.TrUnsupportedElement, diag.Location{}, "function pointer signature %s", sig)
	case metadata.ElemGenericInst:
		base, err := c.TypeName(sig.Generic)
		if err != nil {
			return "", err
		}
		args := make([]string, len(sig.Args))
		for i, a := range sig.Args {
			if args[i], err = c.TypeName(a); err != nil {
				return "", err
			}
		}
		return base + "<" + strings.Join(args, ", ") + ">", nil
	case metadata.ElemValueType, metadata.ElemClass:
		if sig.Type == nil {
			return "", diag.Errorf(diag.TrUnsupportedElement, diag.Location{}, "%s signature without a type", sig.Elem)
		}
		return c.QualifiedRef(sig.Type)
	}
	if ref := sig.Ref(c.corlib()); ref != nil {
		return c.QualifiedRef(ref)
	}
	return "", diag.Errorf(diag.TrUnsupportedElement, diag.Location{}, "element type %s", sig.Elem)
}

// VariableTypeName spells the type of a local, parameter or field holding a
// value of sig: value types are stored inline, references through
// gc_obj_ref and generic parameters through variable_type_t.
func (c Context) VariableTypeName(sig *metadata.TypeSig) (string, error) {
	sig = sig.RemoveModifiers()
	if sig.IsVoid() {
		return "void", nil
	}
	if sig.IsGenericParam() {
		name, err := c.GenericParamName(sig)
		if err != nil {
			return "", err
		}
		return rtabi.Inst(rtabi.VariableType, name), nil
	}
	name, err := c.TypeName(sig)
	if err != nil {
		return "", err
	}
	if sig.IsValueType() {
		return name, nil
	}
	return rtabi.Inst(rtabi.GCObjRef, name), nil
}

// ThisTypeName spells the implicit receiver of an instance method on t.
func (c Context) ThisTypeName(t *metadata.TypeDef) (string, error) {
	name, err := c.TypeName(t.Sig(c.Module))
	if err != nil {
		return "", err
	}
	if t.IsValueType {
		return rtabi.Inst(rtabi.GCRef, name), nil
	}
	return rtabi.Inst(rtabi.GCObjRef, name), nil
}

var constantTypeNames = map[metadata.ElementType]string{
	metadata.ElemBoolean: "bool",
	metadata.ElemChar:    "char16_t",
	metadata.ElemI1:      "int8_t",
	metadata.ElemU1:      "uint8_t",
	metadata.ElemI2:      "int16_t",
	metadata.ElemU2:      "uint16_t",
	metadata.ElemI4:      "int32_t",
	metadata.ElemU4:      "uint32_t",
	metadata.ElemI8:      "int64_t",
	metadata.ElemU8:      "uint64_t",
	metadata.ElemR4:      "float",
	metadata.ElemR8:      "double",
	metadata.ElemI:       "intptr_t",
	metadata.ElemU:       "uintptr_t",
}

// ConstantTypeName spells the native type of a literal field.
func ConstantTypeName(e metadata.ElementType) (string, error) {
	if n, ok := constantTypeNames[e]; ok {
		return n, nil
	}
	return "", diag.Errorf(diag.TrUnsupportedConstant, diag.Location{}, "constant of element type %s", e)
}
