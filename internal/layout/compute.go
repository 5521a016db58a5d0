package layout

import (
	"fmt"

	"natsu/internal/metadata"
)

// FieldSize is the size of one stored value. Expr is the symbolic C++
// spelling used in generated padding arithmetic; it is empty for value
// types, which callers spell as sizeof(T).
type FieldSize struct {
	Bytes int
	Align int
	Expr  string
}

func (e *LayoutEngine) ptrSize() FieldSize {
	return FieldSize{Bytes: e.Target.PtrSize, Align: e.Target.PtrAlign, Expr: "sizeof(intptr_t)"}
}

func primSize(el metadata.ElementType) (int, bool) {
	switch el {
	case metadata.ElemBoolean, metadata.ElemI1, metadata.ElemU1:
		return 1, true
	case metadata.ElemChar, metadata.ElemI2, metadata.ElemU2:
		return 2, true
	case metadata.ElemI4, metadata.ElemU4, metadata.ElemR4:
		return 4, true
	case metadata.ElemI8, metadata.ElemU8, metadata.ElemR8:
		return 8, true
	}
	return 0, false
}

// SizeOfSig returns the storage size of a field of type sig as seen from
// module from.
func (e *LayoutEngine) SizeOfSig(sig *metadata.TypeSig, from string) (FieldSize, error) {
	fs, err := e.sizeOfSig(sig, from, newLayoutState())
	if err != nil {
		return fs, err
	}
	return fs, nil
}

func (e *LayoutEngine) sizeOfSig(sig *metadata.TypeSig, from string, state *layoutState) (FieldSize, *LayoutError) {
	sig = sig.RemoveModifiers()
	if sig == nil {
		return FieldSize{Align: 1}, nil
	}
	if n, ok := primSize(sig.Elem); ok {
		return FieldSize{Bytes: n, Align: n, Expr: fmt.Sprint(n)}, nil
	}
	switch sig.Elem {
	case metadata.ElemValueType, metadata.ElemGenericInst:
		if !sig.IsValueType() {
			return e.ptrSize(), nil
		}
		def, _, ok := e.Closure.ResolveSig(sig, from)
		if !ok {
			return FieldSize{}, &LayoutError{Kind: LayoutErrUnresolved, Type: sig.String()}
		}
		if def.IsEnum {
			n, ok := primSize(def.EnumUnderlying())
			if !ok {
				return e.ptrSize(), nil
			}
			return FieldSize{Bytes: n, Align: n, Expr: fmt.Sprint(n)}, nil
		}
		owner := from
		if m := e.Closure.Owner(def); m != nil {
			owner = m.Name
		}
		l, err := e.layoutIn(def, owner, state)
		if err != nil {
			return FieldSize{}, err
		}
		return FieldSize{Bytes: l.Size, Align: l.Align}, nil
	case metadata.ElemArray:
		return FieldSize{}, &LayoutError{Kind: LayoutErrUnsupported, Type: sig.String(), Err: fmt.Errorf("multi-dimensional array")}
	}
	// references, pointers, native ints and generic parameters
	return e.ptrSize(), nil
}

// layoutIn is layoutOf with the owning module known for scope-less fields.
func (e *LayoutEngine) layoutIn(t *metadata.TypeDef, owner string, state *layoutState) (TypeLayout, *LayoutError) {
	if cached, ok := e.cache.get(t); ok {
		return cached.Layout, cached.Err
	}
	if _, ok := state.index[t]; ok {
		return e.layoutOf(t, state)
	}
	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	l, err := e.computeFields(t, owner, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, t)
	e.cache.put(t, &cacheEntry{Layout: l, Err: err})
	return l, err
}

func (e *LayoutEngine) computeLayout(t *metadata.TypeDef, state *layoutState) (TypeLayout, *LayoutError) {
	owner := ""
	if m := e.Closure.Owner(t); m != nil {
		owner = m.Name
	}
	return e.computeFields(t, owner, state)
}

func (e *LayoutEngine) computeFields(t *metadata.TypeDef, owner string, state *layoutState) (TypeLayout, *LayoutError) {
	l := TypeLayout{Size: 0, Align: 1}
	pack := 0
	if t.Layout != nil {
		pack = int(t.Layout.PackingSize)
	}
	for _, f := range t.Fields {
		if f.IsStatic || f.IsLiteral() {
			continue
		}
		fs, err := e.sizeOfSig(f.Type, owner, state)
		if err != nil {
			if err.Kind != LayoutErrRecursiveValue {
				err = &LayoutError{Kind: err.Kind, Type: t.FullName() + "." + f.Name, Err: err}
			}
			return TypeLayout{Size: 0, Align: 1}, err
		}
		align := max(fs.Align, 1)
		if pack > 0 && align > pack {
			align = pack
		}
		l.Size = roundUp(l.Size, align)
		l.FieldOffsets = append(l.FieldOffsets, l.Size)
		l.FieldSizes = append(l.FieldSizes, fs.Bytes)
		l.Size += fs.Bytes
		l.FieldSum += fs.Bytes
		l.Align = max(l.Align, align)
	}
	l.Size = roundUp(l.Size, l.Align)
	if t.Layout != nil && int(t.Layout.ClassSize) > l.Size {
		l.Size = int(t.Layout.ClassSize)
	}
	if t.IsValueType && l.Size == 0 {
		// empty structs occupy one byte in C++
		l.Size = 1
	}
	return l, nil
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
