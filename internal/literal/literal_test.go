package literal

import (
	"math"
	"testing"

	"natsu/internal/metadata"
)

func TestPoolIsDeterministicAndDeduplicates(t *testing.T) {
	body := []string{"hello", "world", "hello", "", "world", "κόσμε"}
	run := func() *Pool {
		p := NewPool()
		for _, s := range body {
			p.Intern(s)
		}
		return p
	}
	a, b := run(), run()
	if a.Len() != 4 || b.Len() != 4 {
		t.Fatalf("pool sizes %d and %d, want 4", a.Len(), b.Len())
	}
	for i, s := range a.Values() {
		if b.Values()[i] != s {
			t.Fatalf("index %d differs: %q vs %q", i, s, b.Values()[i])
		}
	}
	if a.Intern("hello") != 0 || a.Intern("world") != 1 {
		t.Fatalf("first-encounter order not kept")
	}
	if i, ok := a.Lookup("κόσμε"); !ok || i != 3 {
		t.Fatalf("Lookup = %d, %v", i, ok)
	}
}

func TestUTF16Len(t *testing.T) {
	cases := map[string]int{"": 0, "abc": 3, "κόσμε": 5, "😀": 2}
	for s, want := range cases {
		if got := UTF16Len(s); got != want {
			t.Fatalf("UTF16Len(%q) = %d, want %d", s, got, want)
		}
	}
}

func TestRawStringAvoidsDelimiterClash(t *testing.T) {
	if got := RawString(`a"b`); got != `uR"NS(a"b)NS"` {
		t.Fatalf("RawString = %s", got)
	}
	if got := RawString(`x)NS"y`); got != `uR"NS0(x)NS"y)NS0"` {
		t.Fatalf("RawString = %s", got)
	}
}

func TestFloatLiteralsAreBitExact(t *testing.T) {
	f32 := []uint32{
		math.Float32bits(1.5),
		math.Float32bits(float32(math.Inf(1))),
		math.Float32bits(float32(math.Inf(-1))),
		0x7fc00001, // NaN with payload
		0x80000000, // -0
	}
	for _, bits := range f32 {
		lit, err := Constant(&metadata.Constant{Elem: metadata.ElemR4, Bits: uint64(bits)})
		if err != nil {
			t.Fatalf("constant: %v", err)
		}
		got, ok := ParseBits(lit)
		if !ok || uint32(got) != bits {
			t.Fatalf("%s decodes to %#x, want %#x", lit, got, bits)
		}
	}
	f64 := []uint64{
		math.Float64bits(0.1),
		math.Float64bits(math.Inf(1)),
		0x7ff8000000000123,
		math.Float64bits(math.SmallestNonzeroFloat64),
	}
	for _, bits := range f64 {
		lit, err := Constant(metadata.Float64Const(math.Float64frombits(bits)))
		if err != nil {
			t.Fatalf("constant: %v", err)
		}
		got, ok := ParseBits(lit)
		if !ok || got != bits {
			t.Fatalf("%s decodes to %#x, want %#x", lit, got, bits)
		}
	}
	if lit := Float64(math.Float64bits(math.Inf(-1))); lit != "::natsu::to_double(0xFFF0000000000000) /* -Inf */" {
		t.Fatalf("unexpected -Inf literal %s", lit)
	}
}

func TestIntegerLiterals(t *testing.T) {
	cases := []struct {
		c    *metadata.Constant
		want string
	}{
		{metadata.IntConst(metadata.ElemI4, math.MinInt32), "(-2147483647 - 1)"},
		{metadata.IntConst(metadata.ElemI1, -5), "-5"},
		{metadata.IntConst(metadata.ElemU2, 65535), "65535"},
		{metadata.IntConst(metadata.ElemU4, 4294967295), "4294967295U"},
		{&metadata.Constant{Elem: metadata.ElemU8, Bits: math.MaxUint64}, "18446744073709551615ULL"},
		{metadata.IntConst(metadata.ElemI8, -1), "::natsu::to_int64(0xFFFFFFFFFFFFFFFF) /* -1 */"},
		{metadata.IntConst(metadata.ElemBoolean, 1), "true"},
	}
	for _, tc := range cases {
		got, err := Constant(tc.c)
		if err != nil {
			t.Fatalf("constant %v: %v", tc.c.Elem, err)
		}
		if got != tc.want {
			t.Fatalf("constant %v = %s, want %s", tc.c.Elem, got, tc.want)
		}
	}
	if _, err := Constant(metadata.StringConst("x")); err == nil {
		t.Fatalf("string constants must go through the pool")
	}
}
