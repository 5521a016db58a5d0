package metadata

import "math"

// Constant is a literal field value. Numeric kinds keep their raw bit
// pattern in Bits (zero-extended), strings live in Str.
type Constant struct {
	Elem ElementType `msgpack:"elem" cbor:"elem"`
	Bits uint64      `msgpack:"bits,omitempty" cbor:"bits,omitempty"`
	Str  string      `msgpack:"str,omitempty" cbor:"str,omitempty"`
}

func IntConst(e ElementType, v int64) *Constant {
	c := &Constant{Elem: e}
	switch e {
	case ElemI1, ElemU1, ElemBoolean:
		c.Bits = uint64(uint8(v))
	case ElemI2, ElemU2, ElemChar:
		c.Bits = uint64(uint16(v))
	case ElemI4, ElemU4:
		c.Bits = uint64(uint32(v))
	default:
		c.Bits = uint64(v)
	}
	return c
}

func Float32Const(v float32) *Constant {
	return &Constant{Elem: ElemR4, Bits: uint64(math.Float32bits(v))}
}

func Float64Const(v float64) *Constant {
	return &Constant{Elem: ElemR8, Bits: math.Float64bits(v)}
}

func StringConst(s string) *Constant {
	return &Constant{Elem: ElemString, Str: s}
}

// Int64 sign-extends the stored bits according to the element width.
func (c *Constant) Int64() int64 {
	switch c.Elem {
	case ElemI1:
		return int64(int8(c.Bits))
	case ElemI2:
		return int64(int16(c.Bits))
	case ElemI4:
		return int64(int32(c.Bits))
	}
	return int64(c.Bits)
}

func (c *Constant) Float32() float32 { return math.Float32frombits(uint32(c.Bits)) }
func (c *Constant) Float64() float64 { return math.Float64frombits(c.Bits) }
