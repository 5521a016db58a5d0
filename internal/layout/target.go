package layout

import "fmt"

// Target describes the pointer properties of the native target. Generated
// code spells pointer-sized members as sizeof(intptr_t); the target only
// decides whether declared-size padding is needed.
type Target struct {
	Name     string
	PtrSize  int // bytes
	PtrAlign int // bytes
}

func X86_64() Target {
	return Target{Name: "x86_64", PtrSize: 8, PtrAlign: 8}
}

func RV32() Target {
	return Target{Name: "riscv32", PtrSize: 4, PtrAlign: 4}
}

// TargetForPointerSize maps the natsu.toml pointer_size setting.
func TargetForPointerSize(n int) (Target, error) {
	switch n {
	case 0, 8:
		return X86_64(), nil
	case 4:
		return RV32(), nil
	}
	return Target{}, fmt.Errorf("unsupported pointer size %d", n)
}
