// Package vtable computes the virtual dispatch surface of each type: the
// ordered table segments [base, interfaces...] and one entry per instance
// method, with new-slot/override marking.
package vtable

import (
	"fmt"

	"natsu/internal/diag"
	"natsu/internal/mangle"
	"natsu/internal/metadata"
)

type EntryKind uint8

const (
	// Plain: a non-virtual instance method, forwarded but not overridable.
	Plain EntryKind = iota
	// NewSlot: introduces a dispatch slot at this type.
	NewSlot
	// Override: reuses a slot introduced by a base type.
	Override
)

func (k EntryKind) String() string {
	switch k {
	case NewSlot:
		return "newslot"
	case Override:
		return "override"
	}
	return "plain"
}

// Entry is one member of a type's VTable struct.
type Entry struct {
	Method *metadata.MethodDef
	Kind   EntryKind
	// SlotName is the member name inside the VTable struct; overrides reuse
	// the name of the introducing declaration so the native override binds.
	SlotName string
	// ImplName is the static implementation the entry forwards to.
	ImplName string
	Abstract bool
	// Params/Return are the signature of the slot as seen from this type.
	Params []*metadata.TypeSig
	Return *metadata.TypeSig
}

// Slot is one dispatch slot in linearized order.
type Slot struct {
	Name        string
	Introducer  string // full name of the type that introduced the slot
	Implementer string // full name of the most derived type implementing it
	Overridden  bool
	Abstract    bool

	params []*metadata.TypeSig
	ret    *metadata.TypeSig
	method string
}

type Table struct {
	Type       *metadata.TypeDef
	Module     string
	Base       *metadata.TypeSig
	Interfaces []*metadata.TypeSig
	Entries    []Entry
	Slots      []Slot
}

// Builder memoizes tables across a closure.
type Builder struct {
	cl    *metadata.Closure
	cache map[*metadata.TypeDef]*Table
	busy  map[*metadata.TypeDef]bool
}

func NewBuilder(cl *metadata.Closure) *Builder {
	return &Builder{
		cl:    cl,
		cache: make(map[*metadata.TypeDef]*Table),
		busy:  make(map[*metadata.TypeDef]bool),
	}
}

func (b *Builder) moduleOf(t *metadata.TypeDef) string {
	if m := b.cl.Owner(t); m != nil {
		return m.Name
	}
	return ""
}

// Build computes the table of t.
func (b *Builder) Build(t *metadata.TypeDef) (*Table, error) {
	if tbl, ok := b.cache[t]; ok {
		return tbl, nil
	}
	mod := b.moduleOf(t)
	loc := diag.InType(mod, t.FullName(), "")
	if b.busy[t] {
		return nil, diag.Errorf(diag.TrInheritanceCycle, loc, "type inherits from itself")
	}
	b.busy[t] = true
	defer delete(b.busy, t)

	tbl := &Table{Type: t, Module: mod, Interfaces: t.Interfaces}
	if !t.IsInterface {
		tbl.Base = t.BaseType
	}
	if tbl.Base != nil {
		baseDef, _, ok := b.cl.ResolveSig(tbl.Base, mod)
		if !ok {
			return nil, diag.Errorf(diag.TrMissingDependency, loc, "base type %s is not declared in the module closure", tbl.Base)
		}
		baseTbl, err := b.Build(baseDef)
		if err != nil {
			return nil, err
		}
		args := genericArgs(b.cl.Canonical(tbl.Base, mod))
		for _, s := range baseTbl.Slots {
			tbl.Slots = append(tbl.Slots, s.substitute(args))
		}
	}
	baseSlots := len(tbl.Slots)
	for _, iface := range tbl.Interfaces {
		ifDef, _, ok := b.cl.ResolveSig(iface, mod)
		if !ok {
			return nil, diag.Errorf(diag.TrMissingDependency, loc, "interface %s is not declared in the module closure", iface)
		}
		ifTbl, err := b.Build(ifDef)
		if err != nil {
			return nil, err
		}
		args := genericArgs(b.cl.Canonical(iface, mod))
		for _, s := range ifTbl.Slots {
			if s.Introducer != ifDef.FullName() {
				continue
			}
			tbl.Slots = append(tbl.Slots, s.substitute(args))
		}
	}
	inherited := len(tbl.Slots)

	for _, m := range t.Methods {
		if m.IsStatic || m.IsConstructor() {
			continue
		}
		if m.IsVirtual && m.IsGeneric() {
			return nil, diag.Errorf(diag.TrVirtualGenericMethod, diag.InType(mod, t.FullName(), m.Name), "virtual generic method %s", m)
		}
		impl, err := mangle.MethodName(m)
		if err != nil {
			return nil, diag.Locate(err, diag.InType(mod, t.FullName(), m.Name))
		}
		e := Entry{Method: m, Kind: Plain, SlotName: impl, ImplName: impl, Abstract: m.IsAbstract,
			Return: b.cl.Canonical(m.Return, mod)}
		for _, p := range m.Params {
			e.Params = append(e.Params, b.cl.Canonical(p.Type, mod))
		}
		if m.IsVirtual {
			e.Kind = NewSlot
			// !newslot may reuse any inherited slot; newslot only fills interface slots
			lo := 0
			if m.IsNewSlot {
				lo = baseSlots
			}
			if i := findSlot(tbl.Slots, lo, inherited, m.Name, e.Params, e.Return); i >= 0 {
				s := &tbl.Slots[i]
				if !m.IsNewSlot {
					e.Kind = Override
				}
				e.SlotName, e.Params, e.Return = s.Name, s.params, s.ret
				s.Implementer = t.FullName()
				s.Abstract = m.IsAbstract
				s.Overridden = true
			} else {
				tbl.Slots = append(tbl.Slots, Slot{
					Name:        impl,
					Introducer:  t.FullName(),
					Implementer: t.FullName(),
					Abstract:    m.IsAbstract,
					params:      e.Params,
					ret:         e.Return,
					method:      m.Name,
				})
			}
		}
		tbl.Entries = append(tbl.Entries, e)
	}
	b.cache[t] = tbl
	return tbl, nil
}

// SlotName returns the VTable member name used to dispatch m of t.
func (b *Builder) SlotName(t *metadata.TypeDef, m *metadata.MethodDef) (string, error) {
	tbl, err := b.Build(t)
	if err != nil {
		return "", err
	}
	for _, e := range tbl.Entries {
		if e.Method == m {
			return e.SlotName, nil
		}
	}
	return "", fmt.Errorf("vtable: %s has no entry for %s", t.FullName(), m.Name)
}

// findSlot looks for a slot in slots[lo:hi] with the given name and
// signature, most recently introduced first.
func findSlot(slots []Slot, lo, hi int, name string, params []*metadata.TypeSig, ret *metadata.TypeSig) int {
	for i := hi - 1; i >= lo; i-- {
		s := slots[i]
		if s.method != name || len(s.params) != len(params) || !s.ret.Equal(ret) {
			continue
		}
		same := true
		for j, p := range params {
			if !s.params[j].Equal(p) {
				same = false
				break
			}
		}
		if same {
			return i
		}
	}
	return -1
}

func genericArgs(sig *metadata.TypeSig) []*metadata.TypeSig {
	sig = sig.RemoveModifiers()
	if sig != nil && sig.Elem == metadata.ElemGenericInst {
		return sig.Args
	}
	return nil
}

func (s Slot) substitute(args []*metadata.TypeSig) Slot {
	if len(args) == 0 {
		return s
	}
	out := s
	out.params = make([]*metadata.TypeSig, len(s.params))
	for i, p := range s.params {
		out.params[i] = p.Substitute(args, nil)
	}
	out.ret = s.ret.Substitute(args, nil)
	return out
}
