package metadata

import (
	"fmt"
)

// Closure indexes every module image known to one run and resolves type
// references across them.
type Closure struct {
	modules []*Module
	byName  map[string]*Module
	types   map[string]*TypeDef
	owner   map[*TypeDef]*Module
	corlib  string
}

func NewClosure(mods ...*Module) (*Closure, error) {
	c := &Closure{
		byName: make(map[string]*Module, len(mods)),
		types:  make(map[string]*TypeDef),
		owner:  make(map[*TypeDef]*Module),
	}
	for _, m := range mods {
		if err := c.Add(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func typeKey(scope, fullName string) string {
	return scope + "|" + fullName
}

// Add indexes one more module.
func (c *Closure) Add(m *Module) error {
	if _, dup := c.byName[m.Name]; dup {
		return fmt.Errorf("metadata: duplicate module %q", m.Name)
	}
	c.modules = append(c.modules, m)
	c.byName[m.Name] = m
	for _, t := range m.Types {
		c.types[typeKey(m.Name, t.FullName())] = t
		c.owner[t] = m
		if c.corlib == "" && t.FullName() == "System.Object" && t.BaseType == nil {
			c.corlib = m.Name
		}
	}
	return nil
}

func (c *Closure) Modules() []*Module { return c.modules }

func (c *Closure) Module(name string) (*Module, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// CorLib names the module that declares System.Object.
func (c *Closure) CorLib() string {
	if c.corlib == "" {
		return CorLibName
	}
	return c.corlib
}

// Owner returns the module declaring t.
func (c *Closure) Owner(t *TypeDef) *Module {
	return c.owner[t]
}

// Resolve finds the definition named by ref. An empty scope resolves against
// from. Forwarders are followed.
func (c *Closure) Resolve(ref *TypeRef, from string) (*TypeDef, *Module, bool) {
	if ref == nil {
		return nil, nil, false
	}
	scope := ref.Scope
	if scope == "" {
		scope = from
	}
	full := ref.FullName()
	for hops := 0; hops < 8; hops++ {
		if t, ok := c.types[typeKey(scope, full)]; ok {
			return t, c.owner[t], true
		}
		m, ok := c.byName[scope]
		if !ok {
			return nil, nil, false
		}
		next := ""
		for _, fw := range m.Forwarders {
			if fw.FullName() == full {
				next = fw.Target
				break
			}
		}
		if next == "" {
			return nil, nil, false
		}
		scope = next
	}
	return nil, nil, false
}

// ResolveSig resolves the type a signature names directly (the generic
// definition for instantiations, the corlib type for primitives).
func (c *Closure) ResolveSig(sig *TypeSig, from string) (*TypeDef, *Module, bool) {
	ref := sig.Ref(c.CorLib())
	if ref == nil {
		return nil, nil, false
	}
	return c.Resolve(ref, from)
}

// ScopeOf returns the module that actually declares ref, following
// forwarders. Unknown references keep their written scope.
func (c *Closure) ScopeOf(ref *TypeRef, from string) string {
	if _, m, ok := c.Resolve(ref, from); ok {
		return m.Name
	}
	if ref.Scope == "" {
		return from
	}
	return ref.Scope
}

// IsEnumSig reports whether sig names an enum definition.
func (c *Closure) IsEnumSig(sig *TypeSig, from string) (*TypeDef, bool) {
	sig = sig.RemoveModifiers()
	if sig == nil || sig.Elem != ElemValueType {
		return nil, false
	}
	t, _, ok := c.Resolve(sig.Type, from)
	if !ok || !t.IsEnum {
		return nil, false
	}
	return t, true
}

// Canonical rewrites every type reference in sig to the scope that actually
// declares it, so signatures written in different modules compare equal.
func (c *Closure) Canonical(sig *TypeSig, from string) *TypeSig {
	if sig == nil {
		return nil
	}
	out := *sig
	if sig.Type != nil {
		ref := *sig.Type
		ref.Scope = c.ScopeOf(sig.Type, from)
		out.Type = &ref
	}
	out.Next = c.Canonical(sig.Next, from)
	out.Generic = c.Canonical(sig.Generic, from)
	if len(sig.Args) > 0 {
		out.Args = make([]*TypeSig, len(sig.Args))
		for i, a := range sig.Args {
			out.Args[i] = c.Canonical(a, from)
		}
	}
	return &out
}

// FindMethod resolves a call operand written in module from against the
// methods of def.
func (c *Closure) FindMethod(def *TypeDef, ref *MethodRef, from string) *MethodDef {
	owner := from
	if m := c.owner[def]; m != nil {
		owner = m.Name
	}
	want := make([]*TypeSig, len(ref.Params))
	for i, p := range ref.Params {
		want[i] = c.Canonical(p, from)
	}
	ret := c.Canonical(ref.Return, from)
	for _, m := range def.Methods {
		if m.Name != ref.Name || m.IsStatic == ref.HasThis || len(m.Params) != len(want) {
			continue
		}
		if len(m.GenericParams) != len(ref.GenericArgs) {
			continue
		}
		if !c.Canonical(m.Return, owner).Equal(ret) {
			continue
		}
		same := true
		for i, p := range m.Params {
			if !c.Canonical(p.Type, owner).Equal(want[i]) {
				same = false
				break
			}
		}
		if same {
			return m
		}
	}
	return nil
}

// FindField resolves a field operand against def and its base types.
func (c *Closure) FindField(def *TypeDef, name string) (*FieldDef, *TypeDef) {
	for hops := 0; def != nil && hops < 64; hops++ {
		if f := def.FindField(name); f != nil {
			return f, def
		}
		if def.BaseType == nil {
			break
		}
		owner := ""
		if m := c.owner[def]; m != nil {
			owner = m.Name
		}
		next, _, ok := c.ResolveSig(def.BaseType, owner)
		if !ok {
			break
		}
		def = next
	}
	return nil, nil
}
