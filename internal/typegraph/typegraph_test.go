package typegraph

import (
	"testing"

	"natsu/internal/diag"
	"natsu/internal/metadata"
)

const corlib = metadata.CorLibName

func miniCorLib() *metadata.Module {
	return &metadata.Module{
		Name: corlib,
		Types: []*metadata.TypeDef{
			{Namespace: "System", Name: "Object"},
			{Namespace: "System", Name: "ValueType", BaseType: metadata.ClassSig(corlib, "System", "Object")},
			{Namespace: "System", Name: "Int32", IsValueType: true, BaseType: metadata.ClassSig(corlib, "System", "ValueType"),
				Fields: []*metadata.FieldDef{{Name: "m_value", Type: metadata.Prim(metadata.ElemI4)}}},
			{Namespace: "System", Name: "SZArray`1", BaseType: metadata.ClassSig(corlib, "System", "Object"),
				GenericParams: []metadata.GenericParam{{Name: "T"}}},
		},
	}
}

func class(name string, fields ...*metadata.FieldDef) *metadata.TypeDef {
	return &metadata.TypeDef{Namespace: "Demo", Name: name, BaseType: metadata.ClassSig(corlib, "System", "Object"), Fields: fields}
}

func valueType(name string, fields ...*metadata.FieldDef) *metadata.TypeDef {
	return &metadata.TypeDef{Namespace: "Demo", Name: name, IsValueType: true,
		BaseType: metadata.ClassSig(corlib, "System", "ValueType"), Fields: fields}
}

func field(name string, sig *metadata.TypeSig) *metadata.FieldDef {
	return &metadata.FieldDef{Name: name, Type: sig}
}

func local(name string) *metadata.TypeSig { return metadata.ValueSig("", "Demo", name) }

func build(t *testing.T, types ...*metadata.TypeDef) (*Graph, error) {
	t.Helper()
	mod := &metadata.Module{Name: "Demo", References: []string{corlib}, Types: types}
	cl, err := metadata.NewClosure(miniCorLib(), mod)
	if err != nil {
		t.Fatalf("closure: %v", err)
	}
	return Build(mod, cl)
}

func TestSortPlacesForcingDependenciesFirst(t *testing.T) {
	iface := &metadata.TypeDef{Namespace: "Demo", Name: "IShape", IsInterface: true}
	shape := class("Shape")
	shape.Interfaces = []*metadata.TypeSig{metadata.ClassSig("", "Demo", "IShape")}
	circle := class("Circle", field("center", local("Point")), field("next", metadata.ClassSig("", "Demo", "Circle")))
	circle.BaseType = metadata.ClassSig("", "Demo", "Shape")
	// declared before its dependencies on purpose
	g, err := build(t, circle, valueType("Point", field("x", local("Coord")), field("y", local("Coord"))), shape, iface,
		valueType("Coord", field("v", metadata.Prim(metadata.ElemI4))))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	order, err := Sort(g)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if len(order) != len(g.Types) {
		t.Fatalf("order has %d entries, want %d", len(order), len(g.Types))
	}
	pos := make(map[TypeID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	edges := 0
	for from, uses := range g.Uses {
		for _, e := range uses {
			if !e.Kind.Forcing() {
				continue
			}
			edges++
			if pos[e.To] >= pos[TypeID(from)] {
				t.Fatalf("%s must precede %s", g.Index.IDToName[e.To], g.Index.IDToName[from])
			}
		}
	}
	if edges != 4 {
		t.Fatalf("expected 4 forcing edges, got %d", edges)
	}
	// reference-typed self use is not an edge
	circleID := g.Index.NameToID["Demo.Circle"]
	for _, e := range g.Uses[circleID] {
		if e.To == circleID {
			t.Fatalf("self edge kept")
		}
	}
}

func TestSortIsDeterministic(t *testing.T) {
	mk := func() []*metadata.TypeDef {
		return []*metadata.TypeDef{
			valueType("A", field("b", local("B"))),
			valueType("B"),
			class("C", field("a", local("A"))),
			valueType("D"),
		}
	}
	g1, err := build(t, mk()...)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	g2, _ := build(t, mk()...)
	o1, _ := Sort(g1)
	o2, _ := Sort(g2)
	want := []string{"Demo.B", "Demo.A", "Demo.C", "Demo.D"}
	for i := range want {
		if g1.Index.IDToName[o1[i]] != want[i] || o1[i] != o2[i] {
			t.Fatalf("order %v, want %v", o1, want)
		}
	}
}

func TestValueCycleIsRejected(t *testing.T) {
	g, err := build(t,
		valueType("A", field("b", local("B"))),
		valueType("B", field("c", local("C"))),
		valueType("C", field("a", local("A"))),
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	_, err = Sort(g)
	if code, _ := diag.CodeOf(err); code != diag.TrValueCycle {
		t.Fatalf("expected TrValueCycle, got %v", err)
	}
}

func TestPointerBreaksCycle(t *testing.T) {
	g, err := build(t,
		valueType("Node", field("next", metadata.PtrSig(local("Link")))),
		valueType("Link", field("node", local("Node"))),
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	order, err := Sort(g)
	if err != nil {
		t.Fatalf("pointer cycle must not be fatal: %v", err)
	}
	if g.Index.IDToName[order[0]] != "Demo.Node" {
		t.Fatalf("Node must precede Link, got %v", order)
	}
	if g.Uses[0][0].Kind != EdgeIndirect {
		t.Fatalf("pointer edge kind = %s", g.Uses[0][0].Kind)
	}
}

func TestMissingValueDependencyIsFatal(t *testing.T) {
	_, err := build(t, class("Holder", field("p", local("Missing"))))
	if code, _ := diag.CodeOf(err); code != diag.TrMissingDependency {
		t.Fatalf("expected TrMissingDependency, got %v", err)
	}
}

func TestArrayFieldsDoNotDependOnElement(t *testing.T) {
	g, err := build(t,
		class("Bag", field("items", metadata.SZArraySig(local("Item")))),
		valueType("Item"),
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(g.Uses[0]) != 0 {
		t.Fatalf("array field produced edges: %v", g.Uses[0])
	}
	_, err = build(t, class("Grid", field("cells", &metadata.TypeSig{Elem: metadata.ElemArray, Rank: 2, Next: metadata.Prim(metadata.ElemI4)})))
	if code, _ := diag.CodeOf(err); code != diag.TrMultiDimArray {
		t.Fatalf("expected TrMultiDimArray, got %v", err)
	}
}

func TestExternalUsesAreRecorded(t *testing.T) {
	g, err := build(t, valueType("Box", field("n", metadata.Prim(metadata.ElemI4))))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	found := false
	for _, ext := range g.Externals {
		if ext.Module == corlib && ext.Type == "System.Int32" && ext.Kind == EdgeEmbedded {
			found = true
		}
	}
	if !found {
		t.Fatalf("corlib Int32 use not recorded: %+v", g.Externals)
	}
}

func TestCorLibDescriptorsAreMarked(t *testing.T) {
	cl, err := metadata.NewClosure(miniCorLib())
	if err != nil {
		t.Fatalf("closure: %v", err)
	}
	m, _ := cl.Module(corlib)
	g, err := Build(m, cl)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	obj, _ := g.Lookup("System.Object")
	i4, _ := g.Lookup("System.Int32")
	arr, _ := g.Lookup("System.SZArray`1")
	if !obj.IsObject || !i4.IsPrimitive || !arr.IsArray || !arr.IsGeneric() {
		t.Fatalf("well-known types not marked: %+v %+v %+v", obj, i4, arr)
	}
	if arr.FullName != "::System_Private_CorLib::System::SZArray_1" {
		t.Fatalf("array full name %q", arr.FullName)
	}
}

func TestTypesSharingANativeNameCollide(t *testing.T) {
	generic := class("Foo`1")
	generic.GenericParams = []metadata.GenericParam{{Name: "T"}}
	cases := []struct {
		name  string
		types []*metadata.TypeDef
	}{
		{"generic arity suffix", []*metadata.TypeDef{generic, class("Foo_1")}},
		{"nested type", []*metadata.TypeDef{class("Outer"), class("Outer/Inner"), class("Outer_Inner")}},
		{"type and namespace", []*metadata.TypeDef{class("Util"), {Namespace: "Demo.Util", Name: "Helper",
			BaseType: metadata.ClassSig(corlib, "System", "Object")}}},
	}
	for _, tc := range cases {
		_, err := build(t, tc.types...)
		if code, _ := diag.CodeOf(err); code != diag.TrMangleCollision {
			t.Fatalf("%s: expected TrMangleCollision, got %v", tc.name, err)
		}
	}
}

func TestForwarderAliasCollidesWithType(t *testing.T) {
	mod := &metadata.Module{Name: "Demo", References: []string{corlib},
		Types:      []*metadata.TypeDef{class("Moved")},
		Forwarders: []metadata.ExportedType{{Namespace: "Demo", Name: "Moved", Target: corlib}},
	}
	cl, err := metadata.NewClosure(miniCorLib(), mod)
	if err != nil {
		t.Fatalf("closure: %v", err)
	}
	if _, err := Build(mod, cl); err == nil {
		t.Fatalf("forwarder alias and type share a name")
	} else if code, _ := diag.CodeOf(err); code != diag.TrMangleCollision {
		t.Fatalf("expected TrMangleCollision, got %v", err)
	}
}
