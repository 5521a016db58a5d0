package layout

import (
	"natsu/internal/metadata"
)

// TypeLayout is the instance-field layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	FieldOffsets []int
	FieldSizes   []int
	// FieldSum is the plain sum of field sizes, the quantity the declared
	// ClassSize padding is computed against.
	FieldSum int
}

// LayoutEngine computes memory layout for types of one module closure.
type LayoutEngine struct {
	Target  Target
	Closure *metadata.Closure

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target, cl *metadata.Closure) *LayoutEngine {
	return &LayoutEngine{
		Target:  target,
		Closure: cl,
		cache:   newCache(),
	}
}

type layoutState struct {
	stack []*metadata.TypeDef
	index map[*metadata.TypeDef]int
}

func newLayoutState() *layoutState {
	return &layoutState{
		index: make(map[*metadata.TypeDef]int, 16),
	}
}

// LayoutOf computes and caches the layout of a type's instance fields.
func (e *LayoutEngine) LayoutOf(t *metadata.TypeDef) (TypeLayout, error) {
	if e == nil || t == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	l, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *LayoutEngine) layoutOf(t *metadata.TypeDef, state *layoutState) (TypeLayout, *LayoutError) {
	if cached, ok := e.cache.get(t); ok {
		return cached.Layout, cached.Err
	}
	if idx, ok := state.index[t]; ok {
		cycle := make([]string, 0, len(state.stack)-idx+1)
		for _, s := range state.stack[idx:] {
			cycle = append(cycle, s.FullName())
		}
		cycle = append(cycle, t.FullName())
		err := &LayoutError{Kind: LayoutErrRecursiveValue, Type: t.FullName(), Cycle: cycle}
		e.cache.put(t, &cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err})
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	l, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, t)

	e.cache.put(t, &cacheEntry{Layout: l, Err: err})
	return l, err
}

// SizeOf returns the size of a value type in bytes.
func (e *LayoutEngine) SizeOf(t *metadata.TypeDef) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// Padding returns the number of bytes the declared ClassSize exceeds the sum
// of instance field sizes by; zero means no padding member is needed.
func (e *LayoutEngine) Padding(t *metadata.TypeDef) (int, error) {
	if t.Layout == nil || t.Layout.ClassSize == 0 {
		return 0, nil
	}
	l, err := e.LayoutOf(t)
	if err != nil {
		return 0, err
	}
	declared := int(t.Layout.ClassSize)
	if declared <= l.FieldSum {
		return 0, nil
	}
	return declared - l.FieldSum, nil
}
