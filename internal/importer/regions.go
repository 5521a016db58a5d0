package importer

import (
	"fmt"
	"slices"
	"strings"

	"natsu/internal/diag"
	"natsu/internal/metadata"
	"natsu/internal/rtabi"
)

// region is one protected range with its handlers. Handlers that share a
// try range form a single region.
type region struct {
	tryStart, tryEnd uint32
	end              uint32 // end of the last handler
	finally          *metadata.ExceptionHandler
	catches          []*metadata.ExceptionHandler
	open             bool
}

func (r *region) inTry(off uint32) bool { return off >= r.tryStart && off < r.tryEnd }

func (r *region) inHandler(off uint32) (*metadata.ExceptionHandler, bool) {
	if r.finally != nil && off >= r.finally.HandlerStart && off < r.finally.HandlerEnd {
		return r.finally, true
	}
	for _, h := range r.catches {
		if off >= h.HandlerStart && off < h.HandlerEnd {
			return h, true
		}
	}
	return nil, false
}

func (im *importer) buildRegions() error {
	type key struct{ start, end uint32 }
	byRange := map[key]*region{}
	for i := range im.handlers {
		h := &im.handlers[i]
		switch h.Kind {
		case metadata.HandlerFilter, metadata.HandlerFault:
			return diag.Errorf(diag.TrUnsupportedRegion, im.at(h.TryStart), "%s handlers are not supported", h.Kind)
		}
		if h.TryEnd <= h.TryStart || h.HandlerEnd <= h.HandlerStart || h.HandlerStart < h.TryEnd {
			return diag.Errorf(diag.TrUnsupportedRegion, im.at(h.TryStart), "malformed %s clause", h.Kind)
		}
		k := key{h.TryStart, h.TryEnd}
		r := byRange[k]
		if r == nil {
			r = &region{tryStart: h.TryStart, tryEnd: h.TryEnd, end: h.TryEnd}
			byRange[k] = r
			im.regions = append(im.regions, r)
		}
		if h.Kind == metadata.HandlerFinally {
			if r.finally != nil || len(r.catches) > 0 {
				return diag.Errorf(diag.TrUnsupportedRegion, im.at(h.TryStart), "try block mixes a finally with other handlers")
			}
			r.finally = h
		} else {
			if r.finally != nil {
				return diag.Errorf(diag.TrUnsupportedRegion, im.at(h.TryStart), "try block mixes a finally with other handlers")
			}
			r.catches = append(r.catches, h)
		}
		r.end = max(r.end, h.HandlerEnd)
	}
	// outermost first among regions starting at the same offset
	slices.SortStableFunc(im.regions, func(a, b *region) int {
		if a.tryStart != b.tryStart {
			return int(a.tryStart) - int(b.tryStart)
		}
		return int(b.end) - int(a.end)
	})
	for _, r := range im.regions {
		for off := r.tryEnd; off < r.end; off++ {
			if _, ok := im.byOffset[off]; !ok {
				continue
			}
			if _, ok := r.inHandler(off); !ok {
				return diag.Errorf(diag.TrUnsupportedRegion, im.at(off), "code between try block IL_%04x and its handlers", r.tryStart)
			}
		}
	}
	return nil
}

// label names the jump target for a branch at im.offset. Branches into a
// try block may only enter at its first instruction; when several regions
// start there, the label is placed inside the innermost region that
// already contains the branch.
func (im *importer) label(target uint32) string {
	level := 0
	for _, r := range im.regions {
		if r.tryStart == target && r.inTry(im.offset) {
			level++
		}
	}
	name := fmt.Sprintf("IL_%04x", target)
	if level > 0 {
		name = fmt.Sprintf("%s_%d", name, level)
	}
	im.labels[name] = true
	return name
}

// checkBranch rejects transfers into the middle of a protected range or a
// handler.
func (im *importer) checkBranch(from, target uint32) error {
	for _, r := range im.regions {
		if r.inTry(target) && !r.inTry(from) && target != r.tryStart {
			return diag.Errorf(diag.TrBadBranchTarget, im.at(from), "branch into try block at IL_%04x", target)
		}
		th, tin := r.inHandler(target)
		fh, fin := r.inHandler(from)
		if tin && (!fin || fh != th) {
			return diag.Errorf(diag.TrBadBranchTarget, im.at(from), "branch into handler at IL_%04x", target)
		}
	}
	return nil
}

type renderer struct {
	im    *importer
	lines []string
	depth int
}

func (r *renderer) line(format string, args ...any) {
	r.lines = append(r.lines, strings.Repeat("    ", max(r.depth, 0))+fmt.Sprintf(format, args...))
}

func (r *renderer) open(format string, args ...any) {
	if format != "" {
		r.line(format, args...)
	}
	r.line("{")
	r.depth++
}

func (r *renderer) close(suffix string) {
	r.depth--
	r.line("%s", "}"+suffix)
}

func (r *renderer) label(name string) {
	if r.im.labels[name] {
		r.depth--
		r.line("%s:", name)
		r.depth++
	}
}

// render produces the function body: local and spill declarations followed
// by the blocks in offset order with exception regions as C++ scopes.
func (im *importer) render() ([]string, error) {
	for _, b := range im.blocks {
		if !b.visited {
			continue
		}
		for i := b.first; i < b.end; i++ {
			ins := &im.instrs[i]
			for _, t := range branchTargets(ins) {
				if err := im.checkBranch(ins.Offset, t); err != nil {
					return nil, err
				}
			}
		}
	}
	r := &renderer{im: im, depth: 0}
	for _, l := range im.locals {
		if im.body.InitLocals {
			r.line("%s %s{};", l.cpp, l.name)
		} else {
			r.line("%s %s;", l.cpp, l.name)
		}
	}
	for _, name := range im.spillOrder {
		r.line("%s %s;", im.spills[name], name)
	}
	if len(im.locals)+len(im.spillOrder) > 0 {
		r.lines = append(r.lines, "")
	}
	if err := im.renderRange(r, im.instrs[0].Offset, ^uint32(0)); err != nil {
		return nil, err
	}
	return r.lines, nil
}

func (im *importer) blockIndex(off uint32) int {
	i, _ := slices.BinarySearchFunc(im.blocks, off, func(b *block, off uint32) int {
		return int(b.start) - int(off)
	})
	return i
}

// renderRange renders the blocks starting in [lo, hi).
func (im *importer) renderRange(r *renderer, lo, hi uint32) error {
	for i := im.blockIndex(lo); i < len(im.blocks) && im.blocks[i].start < hi; {
		b := im.blocks[i]
		reg, err := im.regionAt(b.start, hi)
		if err != nil {
			return err
		}
		if reg != nil {
			if err := im.renderRegion(r, reg); err != nil {
				return err
			}
			i = im.blockIndex(reg.end)
			continue
		}
		im.renderBlock(r, b)
		i++
	}
	return nil
}

// regionAt returns the outermost unopened region starting at off.
func (im *importer) regionAt(off, hi uint32) (*region, error) {
	for _, reg := range im.regions {
		if reg.tryStart != off || reg.open {
			continue
		}
		if reg.end > hi {
			return nil, diag.Errorf(diag.TrUnsupportedRegion, im.at(off), "exception regions overlap without nesting")
		}
		return reg, nil
	}
	return nil, nil
}

func (im *importer) levelOf(reg *region) int {
	level := 0
	for _, o := range im.regions {
		if o.tryStart == reg.tryStart {
			level++
		}
		if o == reg {
			break
		}
	}
	return level
}

func (im *importer) renderRegion(r *renderer, reg *region) error {
	reg.open = true
	level := im.levelOf(reg)
	start := fmt.Sprintf("IL_%04x", reg.tryStart)
	if level == 1 {
		r.label(start)
	}
	inner := fmt.Sprintf("%s_%d", start, level)
	if reg.finally != nil {
		id := im.finallies
		im.finallies++
		r.open("")
		r.line("auto _f%d = %s([&]()", id, rtabi.MakeFinally)
		r.line("{")
		r.depth++
		if err := im.renderRange(r, reg.finally.HandlerStart, reg.finally.HandlerEnd); err != nil {
			return err
		}
		r.close(");")
		r.label(inner)
		if err := im.renderRange(r, reg.tryStart, reg.tryEnd); err != nil {
			return err
		}
		r.close("")
		return nil
	}
	id := im.exceptions
	im.exceptions++
	ex := fmt.Sprintf("_ex%d", id)
	r.open("try")
	r.label(inner)
	if err := im.renderRange(r, reg.tryStart, reg.tryEnd); err != nil {
		return err
	}
	r.close("")
	r.open("catch (%s &%s)", rtabi.ClrException, ex)
	spill := im.spillName(0, StackType{Code: StackO})
	for _, h := range reg.catches {
		t, err := im.ctx.TypeName(h.CatchType)
		if err != nil {
			return diag.Locate(err, im.at(h.HandlerStart))
		}
		r.open("if (%s)", rtabi.Call(rtabi.Inst(rtabi.Op("catches"), t), ex))
		r.line("%s = %s;", spill, stackFrom(ex+".exception"))
		hl := fmt.Sprintf("IL_%04x", h.HandlerStart)
		im.labels[hl] = true
		r.line("goto %s;", hl)
		r.close("")
	}
	r.line("throw;")
	for _, h := range reg.catches {
		if err := im.renderRange(r, h.HandlerStart, h.HandlerEnd); err != nil {
			return err
		}
	}
	r.close("")
	return nil
}

func (im *importer) renderBlock(r *renderer, b *block) {
	if !b.visited {
		return
	}
	name := fmt.Sprintf("IL_%04x", b.start)
	inner := false
	for _, reg := range im.regions {
		if reg.tryStart == b.start {
			inner = true
		}
	}
	if !inner {
		r.label(name)
	}
	r.open("")
	for _, l := range b.lines {
		r.line("%s", l)
	}
	r.close("")
}
