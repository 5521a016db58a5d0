package cpp

import (
	"strings"
	"testing"

	"natsu/internal/diag"
	"natsu/internal/metadata"
)

const corlib = metadata.CorLibName

var (
	i4  = metadata.Prim(metadata.ElemI4)
	obj = "::natsu::gc_obj_ref<::System_Private_CorLib::System::Object> _this"
)

func object() *metadata.TypeSig { return metadata.ClassSig(corlib, "System", "Object") }

func corlibModule() *metadata.Module {
	return &metadata.Module{Name: corlib, Types: []*metadata.TypeDef{
		{Namespace: "System", Name: "Object"},
		{Namespace: "System", Name: "String", BaseType: object(), IsSealed: true},
		{Namespace: "System", Name: "Int32", IsValueType: true},
	}}
}

func ins(off uint32, op metadata.OpCode) metadata.Instruction {
	return metadata.Instruction{Offset: off, Op: op}
}

func class(name string, base *metadata.TypeSig, methods ...*metadata.MethodDef) *metadata.TypeDef {
	return &metadata.TypeDef{Namespace: "Demo", Name: name, BaseType: base, Methods: methods}
}

func local(name string) *metadata.TypeSig { return metadata.ClassSig("", "Demo", name) }

func emit(t *testing.T, types ...*metadata.TypeDef) (*Output, error) {
	t.Helper()
	mod := &metadata.Module{Name: "Demo", References: []string{corlib}, Types: types}
	cl, err := metadata.NewClosure(corlibModule(), mod)
	if err != nil {
		t.Fatalf("closure: %v", err)
	}
	return EmitModule(mod, cl, Options{})
}

func mustEmit(t *testing.T, types ...*metadata.TypeDef) *Output {
	t.Helper()
	out, err := emit(t, types...)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	return out
}

func contains(t *testing.T, what, text string, subs ...string) {
	t.Helper()
	for _, s := range subs {
		if !strings.Contains(text, s) {
			t.Fatalf("%s lacks %q:\n%s", what, s, text)
		}
	}
}

func TestSimpleModuleShape(t *testing.T) {
	add := &metadata.MethodDef{Name: "Add", IsStatic: true, Return: i4,
		Params: []metadata.Param{{Name: "a", Type: i4}, {Name: "b", Type: i4}},
		Body: &metadata.MethodBody{Instructions: []metadata.Instruction{
			ins(0, metadata.OpLdarg0), ins(1, metadata.OpLdarg1), ins(2, metadata.OpAdd), ins(3, metadata.OpRet)}}}
	out := mustEmit(t, class("Calc", object(), add))

	if out.HeaderName() != "Demo.h" || out.SourceName() != "Demo.cpp" {
		t.Fatalf("file names %s %s", out.HeaderName(), out.SourceName())
	}
	if !strings.HasPrefix(out.Header, "// Generated by natsu clr compiler.\n#pragma once\n#include <System.Private.CorLib.h>\n") {
		t.Fatalf("header prologue:\n%s", out.Header)
	}
	contains(t, "header", out.Header,
		"namespace Demo { struct Calc; }",
		"struct Calc : public ::System_Private_CorLib::System::Object\n{",
		"static constexpr bool IsValueType = false;",
		"struct VTable : public ::natsu::vtable_class<typename ::System_Private_CorLib::System::Object::VTable>",
		"static ::System_Private_CorLib::System::Int32 _s_Add(::System_Private_CorLib::System::Int32 a, ::System_Private_CorLib::System::Int32 b);",
		"struct Calc::Static\n{\n};",
	)
	contains(t, "source", out.Source,
		"#include \"Demo.h\"",
		"::System_Private_CorLib::System::Int32 Demo::Calc::_s_Add(::System_Private_CorLib::System::Int32 a, ::System_Private_CorLib::System::Int32 b)\n{\n    {\n        return ::natsu::stack_to<",
		"(::natsu::ops::add(::natsu::stack_from(a), ::natsu::stack_from(b)));\n    }\n}",
	)
	// one block, one statement
	if n := strings.Count(out.Source, "return "); n != 1 {
		t.Fatalf("source has %d return statements:\n%s", n, out.Source)
	}
	if strings.Contains(out.Source, "IL_0000:") || strings.Contains(out.Source, "goto ") {
		t.Fatalf("single-block body should need no labels:\n%s", out.Source)
	}
	if strings.Contains(out.Header, "_s_Add(::System_Private_CorLib::System::Int32 a, ::System_Private_CorLib::System::Int32 b)\n{") {
		t.Fatalf("non-generic body leaked into the header")
	}
	if out.Types != 1 || out.Methods != 1 || out.Strings != 0 {
		t.Fatalf("counts = %d types, %d methods, %d strings", out.Types, out.Methods, out.Strings)
	}
}

func TestOverrideForwardsThroughVTable(t *testing.T) {
	ret := &metadata.MethodBody{Instructions: []metadata.Instruction{ins(0, metadata.OpRet)}}
	animal := class("Animal", object(), &metadata.MethodDef{Name: "Speak", IsVirtual: true, IsNewSlot: true, Body: ret})
	dog := class("Dog", local("Animal"), &metadata.MethodDef{Name: "Speak", IsVirtual: true, Body: ret})
	// declared out of order: the base must still come first
	out := mustEmit(t, dog, animal)

	a := strings.Index(out.Header, "struct Animal :")
	d := strings.Index(out.Header, "struct Dog :")
	if a < 0 || d < 0 || a > d {
		t.Fatalf("Animal must be declared before Dog:\n%s", out.Header)
	}
	contains(t, "header", out.Header,
		"struct Dog : public ::Demo::Demo::Animal",
		"struct VTable : public ::natsu::vtable_class<typename ::Demo::Demo::Animal::VTable>",
		"virtual void Speak("+obj+") const;",
		"void Speak("+obj+") const override;",
		"static void Speak(::natsu::gc_obj_ref<::Demo::Demo::Dog> _this);",
	)
	contains(t, "source", out.Source,
		"void Demo::Dog::VTable::Speak("+obj+") const\n{\n    Demo::Dog::Speak(_this.template cast<Demo::Dog>());\n}",
	)
}

func TestAbstractSlotTraps(t *testing.T) {
	shape := class("Shape", object(), &metadata.MethodDef{Name: "Area", IsVirtual: true, IsNewSlot: true, IsAbstract: true, Return: i4})
	shape.IsAbstract = true
	out := mustEmit(t, shape)

	contains(t, "source", out.Source,
		"::System_Private_CorLib::System::Int32 Demo::Shape::VTable::Area("+obj+") const\n{\n    ::natsu::pure_call();\n}")
	if strings.Contains(out.Header, "static ::System_Private_CorLib::System::Int32 Area(") {
		t.Fatalf("abstract method got an implementation declaration:\n%s", out.Header)
	}
}

func TestValueTypeSlotUnboxes(t *testing.T) {
	body := &metadata.MethodBody{Instructions: []metadata.Instruction{
		{Offset: 0, Op: metadata.OpLdcI4, Int: 7}, ins(1, metadata.OpRet)}}
	point := &metadata.TypeDef{Namespace: "Demo", Name: "Point", IsValueType: true,
		BaseType: metadata.ClassSig(corlib, "System", "Object"),
		Fields:   []*metadata.FieldDef{{Name: "X", Type: i4}},
		Methods:  []*metadata.MethodDef{{Name: "GetHashCode", IsVirtual: true, IsNewSlot: true, Return: i4, Body: body}}}
	out := mustEmit(t, point)

	contains(t, "header", out.Header,
		"struct Point\n{",
		"static constexpr bool IsValueType = true;",
		"    ::System_Private_CorLib::System::Int32 X;",
		"static ::System_Private_CorLib::System::Int32 GetHashCode(::natsu::gc_ref<::Demo::Demo::Point> _this);",
	)
	contains(t, "source", out.Source, "return Demo::Point::GetHashCode(::natsu::unbox_exact<Demo::Point>(_this));")
}

func TestStringPoolAndConstFields(t *testing.T) {
	str := metadata.ClassSig(corlib, "System", "String")
	hello := &metadata.MethodDef{Name: "Hello", IsStatic: true, Return: str,
		Body: &metadata.MethodBody{Instructions: []metadata.Instruction{
			{Offset: 0, Op: metadata.OpLdstr, Str: "hello"}, ins(5, metadata.OpRet)}}}
	text := class("Text", object(), hello)
	text.Fields = []*metadata.FieldDef{
		{Name: "Greeting", Type: str, IsStatic: true, Constant: metadata.StringConst("hi")},
		{Name: "Answer", Type: i4, IsStatic: true, Constant: metadata.IntConst(metadata.ElemI4, 42)},
		{Name: "Count", Type: i4, IsStatic: true},
	}
	out := mustEmit(t, text)

	if out.Strings != 2 {
		t.Fatalf("pool has %d strings, want 2", out.Strings)
	}
	contains(t, "header", out.Header,
		"    static const natsu::static_object<::System_Private_CorLib::System::String, natsu::string_literal<5>> user_string_0(uR\"NS(hello)NS\");",
		"    static const natsu::static_object<::System_Private_CorLib::System::String, natsu::string_literal<2>> user_string_1(uR\"NS(hi)NS\");",
		"static ::natsu::gc_obj_ref<::System_Private_CorLib::System::String> Greeting;",
		"static constexpr int32_t Answer = ",
		"struct Text::Static\n{\n    ::System_Private_CorLib::System::Int32 Count;\n};",
	)
	contains(t, "source", out.Source,
		"::natsu::gc_obj_ref<::System_Private_CorLib::System::String> Demo::Text::Greeting = ::natsu::load_string(user_string_1);")
}

func TestGenericBodiesLiveInHeader(t *testing.T) {
	tv := metadata.VarSig(0, "T")
	id := &metadata.MethodDef{Name: "Id", IsStatic: true, Return: tv, Params: []metadata.Param{{Name: "x", Type: tv}},
		Body: &metadata.MethodBody{Instructions: []metadata.Instruction{ins(0, metadata.OpLdarg0), ins(1, metadata.OpRet)}}}
	box := class("Box`1", object(), id)
	box.GenericParams = []metadata.GenericParam{{Name: "T"}}
	out := mustEmit(t, box)

	sig := "::natsu::variable_type_t<T> Demo::Box_1<T>::_s_Id(::natsu::variable_type_t<T> x)"
	contains(t, "header", out.Header,
		"namespace Demo { template <class T> struct Box_1; }",
		"template <class T>\nstruct Box_1 : public",
		"template <class T>\nstruct Box_1<T>::Static",
		"template <class T>\n"+sig+"\n{",
	)
	if strings.Contains(out.Source, sig) {
		t.Fatalf("generic body emitted into the source file")
	}
}

func TestStaticConstructorBecomesStaticBlock(t *testing.T) {
	cctor := &metadata.MethodDef{Name: ".cctor", IsStatic: true,
		Body: &metadata.MethodBody{Instructions: []metadata.Instruction{ins(0, metadata.OpRet)}}}
	out := mustEmit(t, class("Init", object(), cctor))

	contains(t, "header", out.Header, "struct Init::Static\n{\n    Static();\n};")
	contains(t, "source", out.Source, "Demo::Init::Static::Static()\n{")
}

func TestForwardersBecomeAliases(t *testing.T) {
	mod := &metadata.Module{Name: "Demo", References: []string{corlib}, Forwarders: []metadata.ExportedType{
		{Namespace: "System", Name: "Int32", Target: corlib},
		{Namespace: "System.Collections", Name: "List`1", Target: corlib, GenericArity: 1},
	}}
	cl, err := metadata.NewClosure(corlibModule(), mod)
	if err != nil {
		t.Fatalf("closure: %v", err)
	}
	out, err := EmitModule(mod, cl, Options{})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	contains(t, "header", out.Header,
		"namespace System { using Int32 = ::System_Private_CorLib::System::Int32; }",
		"namespace System { namespace Collections { template <class T0> using List_1 = ::System_Private_CorLib::System::Collections::List_1<T0>; } }",
	)
}

func TestMissingDependencyProducesNoOutput(t *testing.T) {
	broken := class("Broken", object())
	broken.Fields = []*metadata.FieldDef{{Name: "v", Type: metadata.ValueSig("", "Demo", "Missing")}}
	out, err := emit(t, broken)
	if out != nil {
		t.Fatalf("got output for a failed module")
	}
	if code, ok := diag.CodeOf(err); !ok || code != diag.TrMissingDependency {
		t.Fatalf("expected missing dependency, got %v", err)
	}
}

func TestMangleCollisionIsReported(t *testing.T) {
	c := class("Clash", object())
	c.Fields = []*metadata.FieldDef{{Name: "value", Type: i4}}
	c.Methods = []*metadata.MethodDef{{Name: "value",
		Body: &metadata.MethodBody{Instructions: []metadata.Instruction{ins(0, metadata.OpRet)}}}}
	_, err := emit(t, c)
	if code, ok := diag.CodeOf(err); !ok || code != diag.TrMangleCollision {
		t.Fatalf("expected mangle collision, got %v", err)
	}
}

func TestEnumWithFloatUnderlyingIsRejected(t *testing.T) {
	e := class("Scale", object())
	e.IsValueType, e.IsEnum, e.Underlying = true, true, metadata.ElemR8
	e.Fields = []*metadata.FieldDef{{Name: "value__", Type: metadata.Prim(metadata.ElemR8)}}
	out, err := emit(t, e)
	if out != nil {
		t.Fatalf("expected no output for a float-based enum")
	}
	if code, ok := diag.CodeOf(err); !ok || code != diag.TrUnsupportedElement {
		t.Fatalf("expected unsupported element, got %v", err)
	}
}
