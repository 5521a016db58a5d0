// Package rtabi lists every runtime spelling the generated C++ relies on.
// The runtime library itself is not part of natsu; this table is the
// contract between the two.
package rtabi

import (
	"strings"

	"natsu/internal/metadata"
)

// Reference wrappers and type helpers.
const (
	GCObjRef     = "::natsu::gc_obj_ref"
	GCRef        = "::natsu::gc_ref"
	GCPtr        = "::natsu::gc_ptr"
	VariableType = "::natsu::variable_type_t"
	StaticHolder = "::natsu::static_holder"
	StaticObject = "natsu::static_object"
	StringLit    = "natsu::string_literal"
)

// VTable plumbing.
const (
	VTableClass = "::natsu::vtable_class"
	VTableRoot  = "natsu::vtable_t"
	VTableOf    = "::natsu::vtable"
	PureCall    = "::natsu::pure_call"
	UnboxExact  = "::natsu::unbox_exact"
)

// Evaluation stack and value helpers.
const (
	StackFrom     = "::natsu::stack_from"
	StackTo       = "::natsu::stack_to"
	LoadString    = "::natsu::load_string"
	GCNew         = "::natsu::gc_new"
	GCNewArray    = "::natsu::gc_new_array"
	Box           = "::natsu::box"
	Unbox         = "::natsu::unbox"
	UnboxAny      = "::natsu::unbox_any"
	Castclass     = "::natsu::castclass"
	Isinst        = "::natsu::isinst"
	Throw         = "::natsu::throw_exception"
	Rethrow       = "::natsu::rethrow"
	MakeFinally   = "::natsu::make_finally"
	ClrException  = "::natsu::clr_exception"
	Constrained   = "::natsu::ops::constrained"
	Null          = "::natsu::null"
	ToInt64       = "::natsu::to_int64"
	ToFloat       = "::natsu::to_float"
	ToDouble      = "::natsu::to_double"
	ObjectTypeRef = "::System_Private_CorLib::System::Object"
	StringTypeRef = "::System_Private_CorLib::System::String"
)

// Declaration markers.
const (
	PrimitiveImpl = "NATSU_PRIMITIVE_IMPL_"
	EnumImpl      = "NATSU_ENUM_IMPL_"
	ObjectImpl    = "NATSU_OBJECT_IMPL"
	SZArrayImpl   = "NATSU_SZARRAY_IMPL"
)

// Headers.
const (
	TypedefHeader = "natsu.typedef.h"
	Banner        = "// Generated by natsu clr compiler."
)

var runtimeHeaders = map[string]string{
	metadata.CorLibName: "natsu.runtime.h",
	metadata.KernelName: "chino.runtime.h",
}

// RuntimeHeader returns the fixed runtime header included after the
// declarations of the foundational modules.
func RuntimeHeader(module string) (string, bool) {
	h, ok := runtimeHeaders[module]
	return h, ok
}

// Inst spells a template instantiation.
func Inst(name string, args ...string) string {
	return name + "<" + strings.Join(args, ", ") + ">"
}

// Op is a stack operation in ::natsu::ops.
func Op(name string) string {
	return "::natsu::ops::" + name
}

// Call spells fn(args...).
func Call(fn string, args ...string) string {
	return fn + "(" + strings.Join(args, ", ") + ")"
}

// Stack type spellings.
const (
	StackInt32     = "::natsu::stack::int32"
	StackInt64     = "::natsu::stack::int64"
	StackNativeInt = "::natsu::stack::native_int"
	StackF         = "::natsu::stack::F"
	StackO         = "::natsu::stack::O"
	StackRef       = "::natsu::stack::Ref"
)
