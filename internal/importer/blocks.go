package importer

import (
	"slices"

	"natsu/internal/diag"
	"natsu/internal/metadata"
)

type block struct {
	start      uint32
	first, end int // instruction index range
	entry      []StackType
	visited    bool
	lines      []string
}

// branchTargets returns the explicit targets of a control transfer.
func branchTargets(ins *metadata.Instruction) []uint32 {
	switch {
	case ins.Op == metadata.OpSwitch:
		return ins.Targets
	case ins.Op == metadata.OpLeave,
		ins.Op >= metadata.OpBr && ins.Op <= metadata.OpBltUn:
		return []uint32{ins.Target}
	}
	return nil
}

// endsFlow reports instructions after which control never falls through.
func endsFlow(op metadata.OpCode) bool {
	switch op {
	case metadata.OpBr, metadata.OpLeave, metadata.OpRet, metadata.OpThrow,
		metadata.OpRethrow, metadata.OpEndfinally, metadata.OpEndfilter, metadata.OpJmp:
		return true
	}
	return false
}

// endsBlock reports instructions after which a new block starts.
func endsBlock(op metadata.OpCode) bool {
	return endsFlow(op) || op == metadata.OpSwitch || (op >= metadata.OpBrfalse && op <= metadata.OpBltUn)
}

// findBlocks splits the body at branch targets, after control transfers and
// at exception region boundaries.
func (im *importer) findBlocks() error {
	leaders := map[uint32]struct{}{}
	if len(im.instrs) == 0 {
		return diag.Errorf(diag.TrBadBranchTarget, im.loc, "method body has no instructions")
	}
	leaders[im.instrs[0].Offset] = struct{}{}
	for i := range im.instrs {
		ins := &im.instrs[i]
		for _, t := range branchTargets(ins) {
			if _, ok := im.byOffset[t]; !ok {
				return diag.Errorf(diag.TrBadBranchTarget, im.at(ins.Offset), "%s targets IL_%04x which is not an instruction boundary", ins.Op, t)
			}
			leaders[t] = struct{}{}
		}
		if endsBlock(ins.Op) && i+1 < len(im.instrs) {
			leaders[im.instrs[i+1].Offset] = struct{}{}
		}
	}
	for _, h := range im.handlers {
		for _, off := range []uint32{h.TryStart, h.TryEnd, h.HandlerStart, h.HandlerEnd} {
			if _, ok := im.byOffset[off]; ok {
				leaders[off] = struct{}{}
			}
		}
	}
	starts := make([]uint32, 0, len(leaders))
	for off := range leaders {
		starts = append(starts, off)
	}
	slices.Sort(starts)
	im.blockAt = make(map[uint32]*block, len(starts))
	for i, off := range starts {
		b := &block{start: off, first: im.byOffset[off], end: len(im.instrs)}
		if i+1 < len(starts) {
			b.end = im.byOffset[starts[i+1]]
		}
		im.blocks = append(im.blocks, b)
		im.blockAt[off] = b
	}
	return nil
}

// next returns the block that follows b in offset order.
func (im *importer) next(b *block) *block {
	if b.end >= len(im.instrs) {
		return nil
	}
	return im.blockAt[im.instrs[b.end].Offset]
}
