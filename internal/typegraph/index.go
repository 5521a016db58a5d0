// Package typegraph builds the per-module type dependency graph and orders
// types so that everything embedded by value or inherited is declared first.
package typegraph

import (
	"fmt"

	"fortio.org/safecast"

	"natsu/internal/mangle"
	"natsu/internal/metadata"
)

type TypeID uint32

// Descriptor is the translator's record for one declared type.
type Descriptor struct {
	ID            TypeID
	Def           *metadata.TypeDef
	ShortName     string // List_1
	FullName      string // ::System_Private_CorLib::System::Collections::Generic::List_1
	IsValueType   bool
	IsEnum        bool
	IsPrimitive   bool
	IsArray       bool
	IsObject      bool
	GenericParams []string
}

// IsGeneric reports whether the declaration becomes a class template.
func (d *Descriptor) IsGeneric() bool { return len(d.GenericParams) > 0 }

var primitiveTypes = map[string]struct{}{
	"System.Boolean": {}, "System.Char": {}, "System.SByte": {}, "System.Byte": {},
	"System.Int16": {}, "System.UInt16": {}, "System.Int32": {}, "System.UInt32": {},
	"System.Int64": {}, "System.UInt64": {}, "System.Single": {}, "System.Double": {},
	"System.IntPtr": {}, "System.UIntPtr": {},
}

const (
	objectTypeName  = "System.Object"
	szArrayTypeName = "System.SZArray`1"
)

// Index maps metadata full names to dense IDs in declaration order.
type Index struct {
	NameToID map[string]TypeID
	IDToName []string
}

func buildIndex(types []*metadata.TypeDef) (Index, error) {
	idx := Index{
		NameToID: make(map[string]TypeID, len(types)),
		IDToName: make([]string, 0, len(types)),
	}
	for i, t := range types {
		id, err := safecast.Conv[TypeID](i)
		if err != nil {
			return Index{}, fmt.Errorf("type id overflow: %w", err)
		}
		name := t.FullName()
		if _, dup := idx.NameToID[name]; dup {
			return Index{}, fmt.Errorf("duplicate type %q", name)
		}
		idx.NameToID[name] = id
		idx.IDToName = append(idx.IDToName, name)
	}
	return idx, nil
}

func describe(id TypeID, mod *metadata.Module, corlib bool, t *metadata.TypeDef, ctx mangle.Context) (Descriptor, error) {
	short, err := mangle.TypeShortName(t.Name)
	if err != nil {
		return Descriptor{}, err
	}
	full, err := ctx.QualifiedRef(t.Ref(mod.Name))
	if err != nil {
		return Descriptor{}, err
	}
	d := Descriptor{
		ID:          id,
		Def:         t,
		ShortName:   short,
		FullName:    full,
		IsValueType: t.IsValueType,
		IsEnum:      t.IsEnum,
	}
	if corlib {
		_, d.IsPrimitive = primitiveTypes[t.FullName()]
		d.IsArray = t.FullName() == szArrayTypeName
		d.IsObject = t.FullName() == objectTypeName
	}
	for _, gp := range t.GenericParams {
		name, err := mangle.Identifier(gp.Name)
		if err != nil {
			return Descriptor{}, err
		}
		d.GenericParams = append(d.GenericParams, name)
	}
	return d, nil
}
