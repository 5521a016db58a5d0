package metadata

import (
	"math"
	"path/filepath"
	"testing"
)

func sampleModule() *Module {
	point := &TypeDef{
		Namespace:   "Demo",
		Name:        "Point",
		IsValueType: true,
		BaseType:    ClassSig(CorLibName, "System", "ValueType"),
		Fields: []*FieldDef{
			{Name: "X", Type: Prim(ElemI4)},
			{Name: "Y", Type: Prim(ElemI4)},
			{Name: "Epsilon", Type: Prim(ElemR8), IsStatic: true, Constant: Float64Const(math.NaN())},
		},
		Methods: []*MethodDef{{
			Name:     "Sum",
			Params:   []Param{{Name: "a", Type: Prim(ElemI4)}, {Name: "b", Type: Prim(ElemI4)}},
			Return:   Prim(ElemI4),
			IsStatic: true,
			Body: &MethodBody{Instructions: []Instruction{
				{Offset: 0, Op: OpLdarg0},
				{Offset: 1, Op: OpLdarg1},
				{Offset: 2, Op: OpAdd},
				{Offset: 3, Op: OpRet},
			}},
		}},
	}
	return &Module{
		Name:       "Demo",
		References: []string{CorLibName},
		Types:      []*TypeDef{point},
		Forwarders: []ExportedType{{Namespace: "Demo", Name: "Moved", Target: "Other"}},
	}
}

func TestImageRoundTripKeepsConstantBits(t *testing.T) {
	for _, ext := range []string{"demo.nmd", "demo.cbor"} {
		path := filepath.Join(t.TempDir(), ext)
		if err := WriteFile(path, sampleModule()); err != nil {
			t.Fatalf("%s: write: %v", ext, err)
		}
		m, raw, err := ReadFile(path)
		if err != nil {
			t.Fatalf("%s: read: %v", ext, err)
		}
		if len(raw) == 0 {
			t.Fatalf("%s: raw bytes missing", ext)
		}
		c := m.Types[0].Fields[2].Constant
		if c.Bits != math.Float64bits(math.NaN()) {
			t.Fatalf("%s: NaN bits changed: %#x", ext, c.Bits)
		}
		if got := m.Types[0].Methods[0].Body.Instructions[2].Op; got != OpAdd {
			t.Fatalf("%s: opcode = %s", ext, got)
		}
	}
}

func TestCBOREncodingIsDeterministic(t *testing.T) {
	a, err := Encode(sampleModule(), FormatCBOR)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := Encode(sampleModule(), FormatCBOR)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("canonical CBOR differs between runs")
	}
}

func TestClosureResolvesThroughForwarders(t *testing.T) {
	other := &Module{Name: "Other", Types: []*TypeDef{{Namespace: "Demo", Name: "Moved"}}}
	c, err := NewClosure(sampleModule(), other)
	if err != nil {
		t.Fatalf("closure: %v", err)
	}
	td, owner, ok := c.Resolve(&TypeRef{Scope: "Demo", Namespace: "Demo", Name: "Moved"}, "Demo")
	if !ok || owner.Name != "Other" || td.Name != "Moved" {
		t.Fatalf("forwarded type not resolved: ok=%v owner=%v", ok, owner)
	}
	if _, _, ok := c.Resolve(&TypeRef{Namespace: "Demo", Name: "Point"}, "Demo"); !ok {
		t.Fatalf("empty scope should resolve against the current module")
	}
	if _, _, ok := c.Resolve(&TypeRef{Scope: "Demo", Name: "Missing"}, "Demo"); ok {
		t.Fatalf("missing type resolved")
	}
	if _, err := NewClosure(other, other); err == nil {
		t.Fatalf("duplicate module accepted")
	}
}

func TestNormalizeExpandsShortForms(t *testing.T) {
	cases := []struct {
		in   Instruction
		op   OpCode
		want int64
	}{
		{Instruction{Op: OpLdarg2}, OpLdarg, 2},
		{Instruction{Op: OpStloc3}, OpStloc, 3},
		{Instruction{Op: OpLdcI4M1}, OpLdcI4, -1},
		{Instruction{Op: OpLdcI47}, OpLdcI4, 7},
		{Instruction{Op: OpLdlocS, Int: 9}, OpLdloc, 9},
	}
	for _, tc := range cases {
		got := Normalize(tc.in)
		if got.Op != tc.op || got.Int != tc.want {
			t.Fatalf("%s: got %s %d", tc.in.Op, got.Op, got.Int)
		}
	}
	if got := Normalize(Instruction{Op: OpBltUnS, Target: 7}); got.Op != OpBltUn || got.Target != 7 {
		t.Fatalf("blt.un.s normalized to %s", got.Op)
	}
}

func TestSubstituteReplacesGenericParameters(t *testing.T) {
	list := GenericInstSig(ClassSig(CorLibName, "System.Collections.Generic", "List`1"), VarSig(0, "T"))
	got := list.Substitute([]*TypeSig{Prim(ElemI4)}, nil)
	if got.Args[0].Elem != ElemI4 {
		t.Fatalf("T not substituted: %s", got)
	}
	if list.Args[0].Elem != ElemVar {
		t.Fatalf("substitution mutated the input")
	}
	if got.String() != "System.Collections.Generic.List`1<int32>" {
		t.Fatalf("unexpected rendering %q", got.String())
	}
}
