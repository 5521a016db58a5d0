package metadata

import (
	"fmt"
	"strings"
)

const (
	// CorLibName is the module that provides the foundational standard library.
	CorLibName = "System.Private.CorLib"
	// KernelName is the module that provides the kernel runtime.
	KernelName = "Chino.Core"
)

type Module struct {
	Name       string         `msgpack:"name" cbor:"name"`
	References []string       `msgpack:"refs,omitempty" cbor:"refs,omitempty"`
	Types      []*TypeDef     `msgpack:"types,omitempty" cbor:"types,omitempty"`
	Forwarders []ExportedType `msgpack:"fwd,omitempty" cbor:"fwd,omitempty"`
}

// ExportedType is a type forwarded to another module.
type ExportedType struct {
	Namespace string `msgpack:"ns,omitempty" cbor:"ns,omitempty"`
	Name      string `msgpack:"name" cbor:"name"`
	Target    string `msgpack:"target" cbor:"target"`
	// GenericArity is the number of generic parameters of the target type.
	GenericArity int `msgpack:"arity,omitempty" cbor:"arity,omitempty"`
}

func (e ExportedType) FullName() string {
	if e.Namespace == "" {
		return e.Name
	}
	return e.Namespace + "." + e.Name
}

type GenericParam struct {
	Name   string `msgpack:"name" cbor:"name"`
	Number uint16 `msgpack:"num" cbor:"num"`
}

type ClassLayout struct {
	PackingSize uint16 `msgpack:"pack,omitempty" cbor:"pack,omitempty"`
	ClassSize   uint32 `msgpack:"size,omitempty" cbor:"size,omitempty"`
}

type TypeDef struct {
	Namespace string `msgpack:"ns,omitempty" cbor:"ns,omitempty"`
	// Name is the metadata name; nested types use "Outer/Inner".
	Name          string         `msgpack:"name" cbor:"name"`
	IsValueType   bool           `msgpack:"valuetype,omitempty" cbor:"valuetype,omitempty"`
	IsEnum        bool           `msgpack:"enum,omitempty" cbor:"enum,omitempty"`
	IsInterface   bool           `msgpack:"interface,omitempty" cbor:"interface,omitempty"`
	IsDelegate    bool           `msgpack:"delegate,omitempty" cbor:"delegate,omitempty"`
	IsAbstract    bool           `msgpack:"abstract,omitempty" cbor:"abstract,omitempty"`
	IsSealed      bool           `msgpack:"sealed,omitempty" cbor:"sealed,omitempty"`
	BaseType      *TypeSig       `msgpack:"base,omitempty" cbor:"base,omitempty"`
	Interfaces    []*TypeSig     `msgpack:"ifaces,omitempty" cbor:"ifaces,omitempty"`
	GenericParams []GenericParam `msgpack:"gparams,omitempty" cbor:"gparams,omitempty"`
	Fields        []*FieldDef    `msgpack:"fields,omitempty" cbor:"fields,omitempty"`
	Methods       []*MethodDef   `msgpack:"methods,omitempty" cbor:"methods,omitempty"`
	Layout        *ClassLayout   `msgpack:"layout,omitempty" cbor:"layout,omitempty"`
	Underlying    ElementType    `msgpack:"underlying,omitempty" cbor:"underlying,omitempty"`
}

func (t *TypeDef) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// Ref builds a reference to the type as seen from module scope.
func (t *TypeDef) Ref(scope string) *TypeRef {
	return &TypeRef{Scope: scope, Namespace: t.Namespace, Name: t.Name}
}

// Sig returns the open signature of the type: a GenericInst over its own
// parameters for generic types.
func (t *TypeDef) Sig(scope string) *TypeSig {
	elem := ElemClass
	if t.IsValueType {
		elem = ElemValueType
	}
	sig := &TypeSig{Elem: elem, Type: t.Ref(scope)}
	if len(t.GenericParams) == 0 {
		return sig
	}
	args := make([]*TypeSig, len(t.GenericParams))
	for i, gp := range t.GenericParams {
		args[i] = VarSig(uint32(gp.Number), gp.Name)
	}
	return GenericInstSig(sig, args...)
}

// EnumUnderlying returns the underlying integer type of an enum, falling back
// to the instance field named "value__".
func (t *TypeDef) EnumUnderlying() ElementType {
	if t.Underlying != ElemEnd {
		return t.Underlying
	}
	for _, f := range t.Fields {
		if !f.IsStatic && f.Type != nil {
			return f.Type.RemoveModifiers().Elem
		}
	}
	return ElemI4
}

func (t *TypeDef) FindField(name string) *FieldDef {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FindMethod locates a method by name and signature.
func (t *TypeDef) FindMethod(name string, hasThis bool, params []*TypeSig, ret *TypeSig) *MethodDef {
	for _, m := range t.Methods {
		if m.Name != name || m.IsStatic == hasThis || len(m.Params) != len(params) {
			continue
		}
		if !m.Return.Equal(ret) {
			continue
		}
		same := true
		for i, p := range m.Params {
			if !p.Type.Equal(params[i]) {
				same = false
				break
			}
		}
		if same {
			return m
		}
	}
	return nil
}

type FieldDef struct {
	Name     string    `msgpack:"name" cbor:"name"`
	Type     *TypeSig  `msgpack:"type" cbor:"type"`
	IsStatic bool      `msgpack:"static,omitempty" cbor:"static,omitempty"`
	Constant *Constant `msgpack:"const,omitempty" cbor:"const,omitempty"`
}

// IsLiteral reports compile-time constant fields.
func (f *FieldDef) IsLiteral() bool { return f.Constant != nil }

type Param struct {
	Name string   `msgpack:"name,omitempty" cbor:"name,omitempty"`
	Type *TypeSig `msgpack:"type" cbor:"type"`
}

type MethodDef struct {
	Name           string         `msgpack:"name" cbor:"name"`
	IsStatic       bool           `msgpack:"static,omitempty" cbor:"static,omitempty"`
	IsVirtual      bool           `msgpack:"virtual,omitempty" cbor:"virtual,omitempty"`
	IsNewSlot      bool           `msgpack:"newslot,omitempty" cbor:"newslot,omitempty"`
	IsAbstract     bool           `msgpack:"abstract,omitempty" cbor:"abstract,omitempty"`
	IsFinal        bool           `msgpack:"final,omitempty" cbor:"final,omitempty"`
	IsRuntime      bool           `msgpack:"runtime,omitempty" cbor:"runtime,omitempty"`
	IsInternalCall bool           `msgpack:"icall,omitempty" cbor:"icall,omitempty"`
	Params         []Param        `msgpack:"params,omitempty" cbor:"params,omitempty"`
	Return         *TypeSig       `msgpack:"ret,omitempty" cbor:"ret,omitempty"`
	GenericParams  []GenericParam `msgpack:"gparams,omitempty" cbor:"gparams,omitempty"`
	Body           *MethodBody    `msgpack:"body,omitempty" cbor:"body,omitempty"`
}

func (m *MethodDef) IsConstructor() bool { return m.Name == ".ctor" }
func (m *MethodDef) IsTypeInitializer() bool { return m.Name == ".cctor" }
func (m *MethodDef) IsGeneric() bool { return len(m.GenericParams) > 0 }

// ParamName returns the declared name of parameter i or a positional one.
func (m *MethodDef) ParamName(i int) string {
	if i < len(m.Params) && m.Params[i].Name != "" {
		return m.Params[i].Name
	}
	return fmt.Sprintf("A_%d", i)
}

func (m *MethodDef) String() string {
	ps := make([]string, len(m.Params))
	for i, p := range m.Params {
		ps[i] = p.Type.String()
	}
	return fmt.Sprintf("%s %s(%s)", m.Return.String(), m.Name, strings.Join(ps, ", "))
}

type MethodBody struct {
	MaxStack     uint16             `msgpack:"maxstack,omitempty" cbor:"maxstack,omitempty"`
	InitLocals   bool               `msgpack:"initlocals,omitempty" cbor:"initlocals,omitempty"`
	Locals       []*TypeSig         `msgpack:"locals,omitempty" cbor:"locals,omitempty"`
	Instructions []Instruction      `msgpack:"code" cbor:"code"`
	Handlers     []ExceptionHandler `msgpack:"eh,omitempty" cbor:"eh,omitempty"`
}

// HandlerKind follows the ECMA-335 exception clause flags.
type HandlerKind uint8

const (
	HandlerCatch   HandlerKind = 0
	HandlerFilter  HandlerKind = 1
	HandlerFinally HandlerKind = 2
	HandlerFault   HandlerKind = 4
)

func (k HandlerKind) String() string {
	switch k {
	case HandlerCatch:
		return "catch"
	case HandlerFilter:
		return "filter"
	case HandlerFinally:
		return "finally"
	case HandlerFault:
		return "fault"
	}
	return fmt.Sprintf("handler(%d)", uint8(k))
}

type ExceptionHandler struct {
	Kind         HandlerKind `msgpack:"kind" cbor:"kind"`
	TryStart     uint32      `msgpack:"try" cbor:"try"`
	TryEnd       uint32      `msgpack:"tryend" cbor:"tryend"`
	HandlerStart uint32      `msgpack:"handler" cbor:"handler"`
	HandlerEnd   uint32      `msgpack:"handlerend" cbor:"handlerend"`
	FilterStart  uint32      `msgpack:"filter,omitempty" cbor:"filter,omitempty"`
	CatchType    *TypeSig    `msgpack:"catch,omitempty" cbor:"catch,omitempty"`
}

type Instruction struct {
	Offset  uint32     `msgpack:"off" cbor:"off"`
	Op      OpCode     `msgpack:"op" cbor:"op"`
	Int     int64      `msgpack:"i,omitempty" cbor:"i,omitempty"`
	Float   float64    `msgpack:"f,omitempty" cbor:"f,omitempty"`
	Str     string     `msgpack:"s,omitempty" cbor:"s,omitempty"`
	Target  uint32     `msgpack:"t,omitempty" cbor:"t,omitempty"`
	Targets []uint32   `msgpack:"ts,omitempty" cbor:"ts,omitempty"`
	Method  *MethodRef `msgpack:"m,omitempty" cbor:"m,omitempty"`
	Field   *FieldRef  `msgpack:"fld,omitempty" cbor:"fld,omitempty"`
	Type    *TypeSig   `msgpack:"ty,omitempty" cbor:"ty,omitempty"`
}

// MethodRef is a call operand. Params and Return are written against the
// open declaration (Var/MVar unsubstituted); GenericArgs instantiate a
// generic method.
type MethodRef struct {
	DeclaringType *TypeSig   `msgpack:"decl" cbor:"decl"`
	Name          string     `msgpack:"name" cbor:"name"`
	HasThis       bool       `msgpack:"this,omitempty" cbor:"this,omitempty"`
	Params        []*TypeSig `msgpack:"params,omitempty" cbor:"params,omitempty"`
	Return        *TypeSig   `msgpack:"ret,omitempty" cbor:"ret,omitempty"`
	GenericArgs   []*TypeSig `msgpack:"gargs,omitempty" cbor:"gargs,omitempty"`
}

func (m *MethodRef) String() string {
	return m.DeclaringType.String() + "::" + m.Name
}

type FieldRef struct {
	DeclaringType *TypeSig `msgpack:"decl" cbor:"decl"`
	Name          string   `msgpack:"name" cbor:"name"`
	Type          *TypeSig `msgpack:"type" cbor:"type"`
}

func (f *FieldRef) String() string {
	return f.DeclaringType.String() + "::" + f.Name
}
