package typegraph

import (
	"fmt"

	"natsu/internal/diag"
	"natsu/internal/mangle"
	"natsu/internal/metadata"
)

type EdgeKind uint8

const (
	// EdgeIndirect: a value type reached through a pointer or by-ref. Only a
	// forward declaration is needed, so it never constrains the order.
	EdgeIndirect EdgeKind = iota
	// EdgeEmbedded: a value-type field stored inline.
	EdgeEmbedded
	EdgeInterface
	EdgeBase
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeIndirect:
		return "indirect"
	case EdgeEmbedded:
		return "embedded"
	case EdgeInterface:
		return "interface"
	case EdgeBase:
		return "base"
	}
	return "unknown"
}

// Forcing reports edges whose target must be declared first.
func (k EdgeKind) Forcing() bool { return k != EdgeIndirect }

type Edge struct {
	To   TypeID
	Kind EdgeKind
}

// ExternalUse is a dependency on a type declared by another module. It is
// satisfied by including that module's header.
type ExternalUse struct {
	From   TypeID
	Module string
	Type   string
	Kind   EdgeKind
}

type Graph struct {
	Module    *metadata.Module
	Index     Index
	Types     []Descriptor
	Uses      [][]Edge   // Uses[from] = edges in discovery order
	UsedBy    [][]TypeID // reverse edges
	Externals []ExternalUse
}

func (g *Graph) Descriptor(id TypeID) *Descriptor { return &g.Types[int(id)] }

// Lookup finds a local type by metadata full name.
func (g *Graph) Lookup(fullName string) (*Descriptor, bool) {
	id, ok := g.Index.NameToID[fullName]
	if !ok {
		return nil, false
	}
	return &g.Types[int(id)], true
}

type builder struct {
	g      *Graph
	cl     *metadata.Closure
	corlib string
}

// Build creates one descriptor per type of mod and discovers the dependency
// edges from base types, interfaces and field signatures.
func Build(mod *metadata.Module, cl *metadata.Closure) (*Graph, error) {
	idx, err := buildIndex(mod.Types)
	if err != nil {
		return nil, diag.Errorf(diag.TrMangleCollision, diag.InType(mod.Name, "", ""), "%v", err)
	}
	b := &builder{
		g: &Graph{
			Module: mod,
			Index:  idx,
			Types:  make([]Descriptor, len(mod.Types)),
			Uses:   make([][]Edge, len(mod.Types)),
			UsedBy: make([][]TypeID, len(mod.Types)),
		},
		cl:     cl,
		corlib: cl.CorLib(),
	}
	ctx := mangle.Context{Module: mod.Name, CorLib: b.corlib}
	isCorLib := mod.Name == b.corlib
	for i, t := range mod.Types {
		id := TypeID(i)
		d, err := describe(id, mod, isCorLib, t, ctx)
		if err != nil {
			return nil, diag.Locate(err, diag.InType(mod.Name, t.FullName(), ""))
		}
		b.g.Types[i] = d
	}
	if err := checkNativeNames(mod, b.g.Types, ctx); err != nil {
		return nil, err
	}
	for i, t := range mod.Types {
		from := TypeID(i)
		if err := b.scanType(from, t); err != nil {
			return nil, err
		}
	}
	return b.g, nil
}

// checkNativeNames rejects distinct declarations that share one C++ name:
// two types (List`1 and List_1, Outer/Inner and Outer_Inner), a type and a
// forwarder alias, or a type and a namespace.
func checkNativeNames(mod *metadata.Module, types []Descriptor, ctx mangle.Context) error {
	owner := make(map[string]string, len(types)+len(mod.Forwarders))
	namespaces := make(map[string]string)
	root, err := mangle.ModuleName(mod.Name)
	if err != nil {
		return diag.Locate(err, diag.InType(mod.Name, "", ""))
	}
	claim := func(native, what string, loc diag.Location) error {
		if prev, ok := owner[native]; ok {
			return diag.Errorf(diag.TrMangleCollision, loc, "%s and %s both mangle to %q", prev, what, native)
		}
		if prev, ok := namespaces[native]; ok {
			return diag.Errorf(diag.TrMangleCollision, loc, "%s clashes with namespace %q of %s", what, native, prev)
		}
		owner[native] = what
		return nil
	}
	for i := range types {
		d := &types[i]
		what := "type " + d.Def.FullName()
		loc := diag.InType(mod.Name, d.Def.FullName(), "")
		if err := claim(d.FullName, what, loc); err != nil {
			return err
		}
		ns, err := mangle.Namespace(d.Def.Namespace)
		if err != nil {
			return diag.Locate(err, loc)
		}
		path := "::" + root
		for _, seg := range ns {
			path += "::" + seg
			if prev, ok := owner[path]; ok {
				return diag.Errorf(diag.TrMangleCollision, loc, "namespace %q of %s clashes with %s", path, what, prev)
			}
			if _, ok := namespaces[path]; !ok {
				namespaces[path] = what
			}
		}
	}
	for _, fwd := range mod.Forwarders {
		loc := diag.InType(mod.Name, fwd.FullName(), "")
		native, err := ctx.QualifiedRef(&metadata.TypeRef{Scope: mod.Name, Namespace: fwd.Namespace, Name: fwd.Name})
		if err != nil {
			return diag.Locate(err, loc)
		}
		if err := claim(native, "forwarder "+fwd.FullName(), loc); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) scanType(from TypeID, t *metadata.TypeDef) error {
	if t.BaseType != nil {
		if err := b.addSig(from, t.BaseType, EdgeBase, ""); err != nil {
			return err
		}
	}
	for _, iface := range t.Interfaces {
		if err := b.addSig(from, iface, EdgeInterface, ""); err != nil {
			return err
		}
	}
	for _, f := range t.Fields {
		// literal fields are folded into constants and never stored
		if f.IsLiteral() {
			continue
		}
		if err := b.addSig(from, f.Type, EdgeEmbedded, f.Name); err != nil {
			return err
		}
	}
	return nil
}

// addSig walks sig down to its element type. kind is the edge kind the
// element would produce if it is a value type; Base/Interface contexts
// force an edge for reference types too.
func (b *builder) addSig(from TypeID, sig *metadata.TypeSig, kind EdgeKind, member string) error {
	sig = sig.RemoveModifiers()
	if sig == nil {
		return nil
	}
	forced := kind == EdgeBase || kind == EdgeInterface
	switch sig.Elem {
	case metadata.ElemPtr, metadata.ElemByRef:
		return b.addSig(from, sig.Next, EdgeIndirect, member)
	case metadata.ElemSZArray:
		if !forced {
			return nil
		}
		ref := &metadata.TypeRef{Scope: b.corlib, Namespace: "System", Name: "SZArray`1"}
		return b.addRef(from, ref, kind, member)
	case metadata.ElemArray:
		return diag.Errorf(diag.TrMultiDimArray, b.loc(from, member), "array of rank %d (%s)", sig.Rank, sig)
	case metadata.ElemFnPtr, metadata.ElemVar, metadata.ElemMVar, metadata.ElemVoid:
		return nil
	case metadata.ElemGenericInst:
		if !forced && !sig.IsValueType() {
			return nil
		}
		if err := b.addSig(from, sig.Generic, kind, member); err != nil {
			return err
		}
		argKind := kind
		if argKind == EdgeBase || argKind == EdgeInterface {
			argKind = EdgeEmbedded
		}
		for _, a := range sig.Args {
			if !a.IsValueType() {
				continue
			}
			if err := b.addSig(from, a, argKind, member); err != nil {
				return err
			}
		}
		return nil
	case metadata.ElemClass:
		if !forced {
			return nil
		}
		return b.addRef(from, sig.Type, kind, member)
	case metadata.ElemValueType:
		return b.addRef(from, sig.Type, kind, member)
	}
	if !sig.Elem.IsCorLibPrimitive() {
		return diag.Errorf(diag.TrUnsupportedElement, b.loc(from, member), "element type %s", sig.Elem)
	}
	if !forced && !sig.Elem.IsPrimitiveValue() {
		return nil
	}
	// without a loaded corlib the primitives are treated as built-ins
	if _, ok := b.cl.Module(b.corlib); !ok && sig.Type == nil {
		return nil
	}
	return b.addRef(from, sig.Ref(b.corlib), kind, member)
}

func (b *builder) addRef(from TypeID, ref *metadata.TypeRef, kind EdgeKind, member string) error {
	mod := b.g.Module
	if ref == nil {
		return diag.Errorf(diag.TrUnsupportedElement, b.loc(from, member), "signature without a type reference")
	}
	def, owner, ok := b.cl.Resolve(ref, mod.Name)
	if !ok {
		return diag.Errorf(diag.TrMissingDependency, b.loc(from, member),
			"%s %s is not declared in the module closure", kind, ref).
			WithNote(diag.Location{}, fmt.Sprintf("required by %s", mod.Types[int(from)].FullName()))
	}
	if owner != mod {
		b.g.Externals = append(b.g.Externals, ExternalUse{From: from, Module: owner.Name, Type: def.FullName(), Kind: kind})
		return nil
	}
	to, ok := b.g.Index.NameToID[def.FullName()]
	if !ok || to == from {
		return nil
	}
	b.addEdge(from, to, kind)
	return nil
}

// addEdge records from -> to, keeping the strongest kind for duplicates.
func (b *builder) addEdge(from, to TypeID, kind EdgeKind) {
	uses := b.g.Uses[int(from)]
	for i := range uses {
		if uses[i].To == to {
			if kind > uses[i].Kind {
				uses[i].Kind = kind
			}
			return
		}
	}
	b.g.Uses[int(from)] = append(uses, Edge{To: to, Kind: kind})
	b.g.UsedBy[int(to)] = append(b.g.UsedBy[int(to)], from)
}

func (b *builder) loc(from TypeID, member string) diag.Location {
	return diag.InType(b.g.Module.Name, b.g.Module.Types[int(from)].FullName(), member)
}
