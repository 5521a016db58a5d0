package literal

import (
	"math"
	"strconv"
	"strings"

	"natsu/internal/diag"
	"natsu/internal/metadata"
)

// Int32 spells a 32-bit signed literal; the minimum value cannot be written
// as a negated decimal in C++.
func Int32(v int32) string {
	if v == math.MinInt32 {
		return "(-2147483647 - 1)"
	}
	return strconv.FormatInt(int64(v), 10)
}

func Uint32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10) + "U"
}

func Uint64(v uint64) string {
	return strconv.FormatUint(v, 10) + "ULL"
}

// Int64 goes through the bit pattern; the decimal value is a comment only.
func Int64(v int64) string {
	return "::natsu::to_int64(0x" + hex(uint64(v)) + ") /* " + strconv.FormatInt(v, 10) + " */"
}

func Float32(bits uint32) string {
	f := math.Float32frombits(bits)
	return "::natsu::to_float(0x" + hex(uint64(bits)) + ") /* " + strconv.FormatFloat(float64(f), 'g', -1, 32) + " */"
}

func Float64(bits uint64) string {
	f := math.Float64frombits(bits)
	return "::natsu::to_double(0x" + hex(bits) + ") /* " + strconv.FormatFloat(f, 'g', -1, 64) + " */"
}

func hex(v uint64) string {
	return strings.ToUpper(strconv.FormatUint(v, 16))
}

// Constant spells a non-string field constant.
func Constant(c *metadata.Constant) (string, error) {
	if c == nil {
		return "", diag.Errorf(diag.TrUnsupportedConstant, diag.Location{}, "missing constant value")
	}
	switch c.Elem {
	case metadata.ElemBoolean:
		if c.Bits != 0 {
			return "true", nil
		}
		return "false", nil
	case metadata.ElemI1, metadata.ElemI2, metadata.ElemI4:
		return Int32(int32(c.Int64())), nil
	case metadata.ElemU1, metadata.ElemU2, metadata.ElemChar:
		return strconv.FormatUint(c.Bits, 10), nil
	case metadata.ElemU4:
		return Uint32(uint32(c.Bits)), nil
	case metadata.ElemI8:
		return Int64(int64(c.Bits)), nil
	case metadata.ElemU8:
		return Uint64(c.Bits), nil
	case metadata.ElemR4:
		return Float32(uint32(c.Bits)), nil
	case metadata.ElemR8:
		return Float64(c.Bits), nil
	}
	return "", diag.Errorf(diag.TrUnsupportedConstant, diag.Location{}, "constant of element type %s", c.Elem)
}

// ParseBits recovers the bit pattern from a literal produced by Int64,
// Float32 or Float64.
func ParseBits(lit string) (uint64, bool) {
	start := -1
	for i := 0; i+1 < len(lit); i++ {
		if lit[i] == '0' && lit[i+1] == 'x' {
			start = i + 2
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(lit) && isHex(lit[end]) {
		end++
	}
	v, err := strconv.ParseUint(lit[start:end], 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}
