package buildpipeline

import (
	"context"
	"fmt"
	"io"
	"sort"

	"natsu/internal/driver"
	"natsu/internal/typegraph"
)

// GraphReport is the declaration order of one module, for inspection.
type GraphReport struct {
	Module string
	// Batches are waves of types that only depend on earlier waves.
	Batches [][]string
	// Externals maps referenced modules to the types used from them.
	Externals map[string][]string
}

// Graph loads image (and references) and computes its type order without
// emitting anything.
func Graph(ctx context.Context, image string, references []string, jobs int) (*GraphReport, error) {
	imgs, err := driver.LoadImages(ctx, append([]string{image}, references...), jobs)
	if err != nil {
		return nil, err
	}
	cl, err := driver.Closure(imgs)
	if err != nil {
		return nil, err
	}
	mod := imgs[0].Module
	g, err := typegraph.Build(mod, cl)
	if err != nil {
		return nil, err
	}
	order, err := typegraph.Sort(g)
	if err != nil {
		return nil, err
	}
	rep := &GraphReport{Module: mod.Name, Externals: make(map[string][]string)}
	for _, batch := range typegraph.Batches(g, order) {
		names := make([]string, len(batch))
		for i, id := range batch {
			names[i] = g.Index.IDToName[int(id)]
		}
		rep.Batches = append(rep.Batches, names)
	}
	seen := make(map[string]bool)
	for _, ext := range g.Externals {
		k := ext.Module + "|" + ext.Type
		if seen[k] {
			continue
		}
		seen[k] = true
		rep.Externals[ext.Module] = append(rep.Externals[ext.Module], ext.Type)
	}
	for _, types := range rep.Externals {
		sort.Strings(types)
	}
	return rep, nil
}

// Print writes the report as indented text.
func (r *GraphReport) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "module %s\n", r.Module); err != nil {
		return err
	}
	for i, batch := range r.Batches {
		if _, err := fmt.Fprintf(w, "  batch %d\n", i); err != nil {
			return err
		}
		for _, name := range batch {
			if _, err := fmt.Fprintf(w, "    %s\n", name); err != nil {
				return err
			}
		}
	}
	mods := make([]string, 0, len(r.Externals))
	for m := range r.Externals {
		mods = append(mods, m)
	}
	sort.Strings(mods)
	for _, m := range mods {
		if _, err := fmt.Fprintf(w, "  uses %s\n", m); err != nil {
			return err
		}
		for _, t := range r.Externals[m] {
			if _, err := fmt.Fprintf(w, "    %s\n", t); err != nil {
				return err
			}
		}
	}
	return nil
}
