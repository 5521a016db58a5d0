package mangle

import (
	"testing"

	"natsu/internal/diag"
	"natsu/internal/metadata"
)

const corlib = metadata.CorLibName

func TestIdentifierEscaping(t *testing.T) {
	cases := map[string]string{
		"List`1":       "List_1",
		"<Main>b__0_0": "_Main_b__0_0",
		"1st":          "_1st",
		"Outer/Inner":  "Outer_Inner",
		"delete":       "_delete",
		"Größe":        "Größe",
		"plain_name":   "plain_name",
	}
	for in, want := range cases {
		got, err := Identifier(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("Identifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIdentifierRejectsEmptyName(t *testing.T) {
	_, err := Identifier("")
	if code, ok := diag.CodeOf(err); !ok || code != diag.TrEmptyIdentifier {
		t.Fatalf("expected TrEmptyIdentifier, got %v", err)
	}
}

func TestModuleName(t *testing.T) {
	got, err := ModuleName("System.Private.CorLib")
	if err != nil || got != "System_Private_CorLib" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestMethodNames(t *testing.T) {
	i4 := metadata.Prim(metadata.ElemI4)
	str := metadata.Prim(metadata.ElemString)
	cases := []struct {
		m    *metadata.MethodDef
		want string
	}{
		{&metadata.MethodDef{Name: ".ctor"}, "_ctor"},
		{&metadata.MethodDef{Name: ".ctor", Params: []metadata.Param{{Type: i4}}}, "_ctor_Int32"},
		{&metadata.MethodDef{Name: ".cctor", IsStatic: true}, "Static"},
		{&metadata.MethodDef{Name: "Max", IsStatic: true, Params: []metadata.Param{{Type: i4}, {Type: i4}}}, "_s_Max"},
		{&metadata.MethodDef{Name: "op_Explicit", IsStatic: true, Params: []metadata.Param{{Type: i4}}, Return: str}, "_s_op_Explicit_Int32_String"},
		{&metadata.MethodDef{Name: "Equals", Params: []metadata.Param{{Type: metadata.Prim(metadata.ElemObject)}}}, "Equals_Object"},
		{&metadata.MethodDef{Name: "CopyTo", Params: []metadata.Param{{Type: metadata.SZArraySig(metadata.VarSig(0, "T"))}, {Type: i4}}}, "CopyTo_TArray_Int32"},
		{&metadata.MethodDef{Name: "TryGet", Params: []metadata.Param{{Type: metadata.ByRefSig(i4)}}}, "TryGet_Int32Ref"},
	}
	for _, tc := range cases {
		got, err := MethodName(tc.m)
		if err != nil {
			t.Fatalf("%s: %v", tc.m.Name, err)
		}
		if got != tc.want {
			t.Fatalf("MethodName(%s) = %q, want %q", tc.m, got, tc.want)
		}
	}
}

func TestTypeSpellings(t *testing.T) {
	ctx := Context{Module: "Demo", CorLib: corlib, TypeParams: []string{"TKey", "TValue"}}
	list := metadata.GenericInstSig(metadata.ClassSig(corlib, "System.Collections.Generic", "List`1"), metadata.Prim(metadata.ElemString))
	cases := []struct {
		sig      *metadata.TypeSig
		typ, vrb string
	}{
		{metadata.Prim(metadata.ElemI4), "::System_Private_CorLib::System::Int32", "::System_Private_CorLib::System::Int32"},
		{metadata.Prim(metadata.ElemString), "::System_Private_CorLib::System::String", "::natsu::gc_obj_ref<::System_Private_CorLib::System::String>"},
		{metadata.ValueSig("", "Demo", "Point"), "::Demo::Demo::Point", "::Demo::Demo::Point"},
		{list, "::System_Private_CorLib::System::Collections::Generic::List_1<::System_Private_CorLib::System::String>",
			"::natsu::gc_obj_ref<::System_Private_CorLib::System::Collections::Generic::List_1<::System_Private_CorLib::System::String>>"},
		{metadata.SZArraySig(metadata.Prim(metadata.ElemU1)), "::System_Private_CorLib::System::SZArray_1<::System_Private_CorLib::System::Byte>",
			"::natsu::gc_obj_ref<::System_Private_CorLib::System::SZArray_1<::System_Private_CorLib::System::Byte>>"},
		{metadata.VarSig(1, ""), "TValue", "::natsu::variable_type_t<TValue>"},
		{metadata.ByRefSig(metadata.Prim(metadata.ElemI4)), "::natsu::gc_ref<::System_Private_CorLib::System::Int32>", "::natsu::gc_ref<::System_Private_CorLib::System::Int32>"},
		{metadata.PtrSig(metadata.Prim(metadata.ElemU1)), "::natsu::gc_ptr<::System_Private_CorLib::System::Byte>", "::natsu::gc_ptr<::System_Private_CorLib::System::Byte>"},
	}
	for _, tc := range cases {
		typ, err := ctx.TypeName(tc.sig)
		if err != nil {
			t.Fatalf("%s: %v", tc.sig, err)
		}
		if typ != tc.typ {
			t.Fatalf("TypeName(%s) = %q, want %q", tc.sig, typ, tc.typ)
		}
		vrb, err := ctx.VariableTypeName(tc.sig)
		if err != nil {
			t.Fatalf("%s: %v", tc.sig, err)
		}
		if vrb != tc.vrb {
			t.Fatalf("VariableTypeName(%s) = %q, want %q", tc.sig, vrb, tc.vrb)
		}
	}
}

func TestMultiDimArrayIsUnsupported(t *testing.T) {
	sig := &metadata.TypeSig{Elem: metadata.ElemArray, Rank: 2, Next: metadata.Prim(metadata.ElemI4)}
	_, err := Context{Module: "Demo"}.TypeName(sig)
	if code, _ := diag.CodeOf(err); code != diag.TrMultiDimArray {
		t.Fatalf("expected TrMultiDimArray, got %v", err)
	}
}

// Distinct (namespace, type, method, signature) triples must never spell the
// same fully qualified native member.
func TestMangledMembersAreInjective(t *testing.T) {
	i4 := metadata.Prim(metadata.ElemI4)
	i8 := metadata.Prim(metadata.ElemI8)
	obj := metadata.Prim(metadata.ElemObject)
	type member struct {
		ns, typ string
		m       *metadata.MethodDef
	}
	members := []member{
		{"A", "C", &metadata.MethodDef{Name: "F", Params: []metadata.Param{{Type: i4}}}},
		{"A", "C", &metadata.MethodDef{Name: "F", Params: []metadata.Param{{Type: i8}}}},
		{"A", "C", &metadata.MethodDef{Name: "F", Params: []metadata.Param{{Type: i4}, {Type: i4}}}},
		{"A", "C", &metadata.MethodDef{Name: "F", IsStatic: true, Params: []metadata.Param{{Type: i4}}}},
		{"A", "C", &metadata.MethodDef{Name: "F", IsStatic: true, Params: []metadata.Param{{Type: obj}}}},
		{"A", "C", &metadata.MethodDef{Name: ".ctor"}},
		{"A", "C", &metadata.MethodDef{Name: ".ctor", Params: []metadata.Param{{Type: i4}}}},
		{"A", "C", &metadata.MethodDef{Name: ".cctor", IsStatic: true}},
		{"A", "C`1", &metadata.MethodDef{Name: "F", Params: []metadata.Param{{Type: i4}}}},
		{"B", "C", &metadata.MethodDef{Name: "F", Params: []metadata.Param{{Type: i4}}}},
		{"A.B", "C", &metadata.MethodDef{Name: "F", Params: []metadata.Param{{Type: i4}}}},
		{"A", "C", &metadata.MethodDef{Name: "op_Explicit", IsStatic: true, Params: []metadata.Param{{Type: i4}}, Return: i8}},
		{"A", "C", &metadata.MethodDef{Name: "op_Explicit", IsStatic: true, Params: []metadata.Param{{Type: i4}}, Return: obj}},
	}
	ctx := Context{Module: "Demo", CorLib: corlib}
	seen := map[string]int{}
	for i, mb := range members {
		owner, err := ctx.QualifiedRef(&metadata.TypeRef{Namespace: mb.ns, Name: mb.typ})
		if err != nil {
			t.Fatalf("owner: %v", err)
		}
		name, err := MethodName(mb.m)
		if err != nil {
			t.Fatalf("method: %v", err)
		}
		params := ""
		for _, p := range mb.m.Params {
			vt, err := ctx.VariableTypeName(p.Type)
			if err != nil {
				t.Fatalf("param: %v", err)
			}
			params += vt + ","
		}
		key := owner + "::" + name + "(" + params + ")"
		if j, dup := seen[key]; dup {
			t.Fatalf("members %d and %d both mangle to %s", j, i, key)
		}
		seen[key] = i
	}
}

func TestScopeRejectsCollisions(t *testing.T) {
	s := NewScope(diag.InType("Demo", "Demo.C", ""))
	if err := s.Method("F_Int32", "int", "F(int32)"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := s.Method("F_Int32", "long", "F(int32) overload"); err != nil {
		t.Fatalf("native overload should be allowed: %v", err)
	}
	err := s.Method("F_Int32", "int", "F_Int32()")
	if code, _ := diag.CodeOf(err); code != diag.TrMangleCollision {
		t.Fatalf("expected collision, got %v", err)
	}
	if err := s.Field("value", "field value"); err != nil {
		t.Fatalf("field: %v", err)
	}
	if err := s.Method("value", "", "method value"); err == nil {
		t.Fatalf("field/method clash not detected")
	}
}
