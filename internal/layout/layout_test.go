package layout

import (
	"errors"
	"testing"

	"natsu/internal/metadata"
)

func closure(t *testing.T, types ...*metadata.TypeDef) *metadata.Closure {
	t.Helper()
	cl, err := metadata.NewClosure(&metadata.Module{Name: "Demo", Types: types})
	if err != nil {
		t.Fatalf("closure: %v", err)
	}
	return cl
}

func TestPaddingAgainstDeclaredSize(t *testing.T) {
	hdr := &metadata.TypeDef{
		Namespace: "Demo", Name: "Header", IsValueType: true,
		Layout: &metadata.ClassLayout{ClassSize: 32},
		Fields: []*metadata.FieldDef{
			{Name: "magic", Type: metadata.Prim(metadata.ElemU4)},
			{Name: "flags", Type: metadata.Prim(metadata.ElemU2)},
			{Name: "next", Type: metadata.Prim(metadata.ElemI)},
			{Name: "Zero", Type: metadata.Prim(metadata.ElemI4), IsStatic: true},
		},
	}
	cl := closure(t, hdr)
	for _, tc := range []struct {
		target Target
		want   int
	}{{X86_64(), 32 - 14}, {RV32(), 32 - 10}} {
		got, err := New(tc.target, cl).Padding(hdr)
		if err != nil {
			t.Fatalf("%s: %v", tc.target.Name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: padding = %d, want %d", tc.target.Name, got, tc.want)
		}
	}
}

func TestNoPaddingWithoutDeclaredSize(t *testing.T) {
	p := &metadata.TypeDef{Namespace: "Demo", Name: "P", IsValueType: true,
		Fields: []*metadata.FieldDef{{Name: "x", Type: metadata.Prim(metadata.ElemI8)}}}
	got, err := New(X86_64(), closure(t, p)).Padding(p)
	if err != nil || got != 0 {
		t.Fatalf("padding = %d, %v", got, err)
	}
}

func TestNestedValueSizeAndAlignment(t *testing.T) {
	inner := &metadata.TypeDef{Namespace: "Demo", Name: "Inner", IsValueType: true,
		Fields: []*metadata.FieldDef{
			{Name: "a", Type: metadata.Prim(metadata.ElemU1)},
			{Name: "b", Type: metadata.Prim(metadata.ElemI8)},
		}}
	color := &metadata.TypeDef{Namespace: "Demo", Name: "Color", IsValueType: true, IsEnum: true, Underlying: metadata.ElemU2}
	outer := &metadata.TypeDef{Namespace: "Demo", Name: "Outer", IsValueType: true,
		Fields: []*metadata.FieldDef{
			{Name: "c", Type: metadata.ValueSig("", "Demo", "Color")},
			{Name: "in", Type: metadata.ValueSig("", "Demo", "Inner")},
		}}
	e := New(X86_64(), closure(t, inner, color, outer))
	l, err := e.LayoutOf(outer)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.Size != 24 || l.Align != 8 || l.FieldOffsets[1] != 8 {
		t.Fatalf("unexpected layout %+v", l)
	}
}

func TestRecursiveValueTypeReportsCycle(t *testing.T) {
	a := &metadata.TypeDef{Namespace: "Demo", Name: "A", IsValueType: true,
		Fields: []*metadata.FieldDef{{Name: "b", Type: metadata.ValueSig("", "Demo", "B")}}}
	b := &metadata.TypeDef{Namespace: "Demo", Name: "B", IsValueType: true,
		Fields: []*metadata.FieldDef{{Name: "a", Type: metadata.ValueSig("", "Demo", "A")}}}
	_, err := New(X86_64(), closure(t, a, b)).LayoutOf(a)
	var le *LayoutError
	if !errors.As(err, &le) || le.Kind != LayoutErrRecursiveValue {
		t.Fatalf("expected recursive layout error, got %v", err)
	}
	if len(le.Cycle) != 3 || le.Cycle[0] != "Demo.A" || le.Cycle[2] != "Demo.A" {
		t.Fatalf("unexpected cycle %v", le.Cycle)
	}
}
