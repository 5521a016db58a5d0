// Package importer lowers one method's CIL body into C++ statements. It
// splits the body into basic blocks, propagates evaluation stack types in
// reachability order and renders each block with explicit spill variables
// for values that cross block boundaries.
package importer

import (
	"fmt"
	"strings"

	"natsu/internal/diag"
	"natsu/internal/literal"
	"natsu/internal/mangle"
	"natsu/internal/metadata"
	"natsu/internal/rtabi"
	"natsu/internal/vtable"
)

// Env is shared by all method imports of one module translation.
type Env struct {
	Closure *metadata.Closure
	Module  string
	Pool    *literal.Pool
	VTables *vtable.Builder
}

// BlockInfo describes one basic block after import.
type BlockInfo struct {
	Start     uint32
	Entry     []StackType
	Reachable bool
}

// Result is an imported method body.
type Result struct {
	// Lines are the body statements, indented relative to the function body.
	Lines   []string
	Blocks  []BlockInfo
	Shapes  map[uint32]Shape
	Returns int
}

// Text joins the body lines with the given leading indentation.
func (r *Result) Text(indent string) string {
	var sb strings.Builder
	for _, l := range r.Lines {
		if l == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(indent)
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return sb.String()
}

type value struct {
	expr string
	typ  StackType
	// stable values do not change when locals, fields or spills are written.
	stable bool
}

type argSlot struct {
	name string
	sig  *metadata.TypeSig
	// cpp is the declared C++ type of the slot.
	cpp string
}

type importer struct {
	env  *Env
	typ  *metadata.TypeDef
	m    *metadata.MethodDef
	ctx  mangle.Context
	loc  diag.Location
	body *metadata.MethodBody

	instrs   []metadata.Instruction
	byOffset map[uint32]int
	handlers []metadata.ExceptionHandler
	blocks   []*block
	blockAt  map[uint32]*block
	regions  []*region

	args   []argSlot
	locals []argSlot

	stack       []value
	cur         *block
	offset      uint32
	constrained *metadata.TypeSig
	tmp         int
	exceptions  int
	finallies   int

	spills     map[string]string
	spillOrder []string
	valueIDs   map[string]int
	labels     map[string]bool
	shapes     map[uint32]Shape
	returns    int
}

// Import lowers the body of m, declared by t.
func Import(env *Env, t *metadata.TypeDef, m *metadata.MethodDef) (*Result, error) {
	loc := diag.InType(env.Module, t.FullName(), m.Name)
	if m.Body == nil && m.IsRuntime && t.IsDelegate {
		return importDelegate(env, t, m, loc)
	}
	if m.Body == nil {
		return nil, diag.Errorf(diag.TrBodilessMethod, loc, "method %s has no body", m)
	}
	im := &importer{
		env:      env,
		typ:      t,
		m:        m,
		ctx:      mangle.Context{Module: env.Module, CorLib: env.Closure.CorLib()}.WithType(t).WithMethod(m),
		loc:      loc,
		body:     m.Body,
		byOffset: make(map[uint32]int, len(m.Body.Instructions)),
		handlers: m.Body.Handlers,
		spills:   make(map[string]string),
		valueIDs: make(map[string]int),
		labels:   make(map[string]bool),
		shapes:   make(map[uint32]Shape, len(m.Body.Instructions)),
	}
	im.instrs = make([]metadata.Instruction, len(m.Body.Instructions))
	for i, ins := range m.Body.Instructions {
		im.instrs[i] = metadata.Normalize(ins)
		im.byOffset[ins.Offset] = i
	}
	if err := im.declareSlots(); err != nil {
		return nil, err
	}
	if err := im.findBlocks(); err != nil {
		return nil, err
	}
	if err := im.buildRegions(); err != nil {
		return nil, err
	}
	if err := im.propagate(); err != nil {
		return nil, err
	}
	lines, err := im.render()
	if err != nil {
		return nil, err
	}
	res := &Result{Lines: lines, Shapes: im.shapes, Returns: im.returns}
	for _, b := range im.blocks {
		res.Blocks = append(res.Blocks, BlockInfo{Start: b.start, Entry: b.entry, Reachable: b.visited})
	}
	return res, nil
}

func (im *importer) at(offset uint32) diag.Location {
	return diag.At(im.loc.Module, im.loc.Type, im.loc.Member, offset)
}

func (im *importer) errorf(code diag.Code, format string, args ...any) error {
	return diag.Errorf(code, im.at(im.offset), format, args...)
}

// wrap attaches the current instruction to errors from other packages.
func (im *importer) wrap(err error) error {
	if err == nil {
		return nil
	}
	return diag.Locate(err, im.at(im.offset))
}

func (im *importer) declareSlots() error {
	if !im.m.IsStatic {
		self := im.typ.Sig(im.env.Module)
		cpp, err := im.ctx.ThisTypeName(im.typ)
		if err != nil {
			return diag.Locate(err, im.loc)
		}
		sig := self
		if im.typ.IsValueType {
			sig = metadata.ByRefSig(self)
		}
		im.args = append(im.args, argSlot{name: "_this", sig: sig, cpp: cpp})
	}
	for i, p := range im.m.Params {
		name, err := mangle.ParamName(im.m, i)
		if err != nil {
			return diag.Locate(err, im.loc)
		}
		cpp, err := im.ctx.VariableTypeName(p.Type)
		if err != nil {
			return diag.Locate(err, im.loc)
		}
		im.args = append(im.args, argSlot{name: name, sig: p.Type, cpp: cpp})
	}
	for i, l := range im.body.Locals {
		cpp, err := im.ctx.VariableTypeName(l)
		if err != nil {
			return diag.Locate(err, im.loc)
		}
		im.locals = append(im.locals, argSlot{name: fmt.Sprintf("_l%d", i), sig: l, cpp: cpp})
	}
	return nil
}

// propagate walks blocks in reachability order, lowering each block once
// with the stack shape it is first reached with.
func (im *importer) propagate() error {
	entry := im.blockAt[im.instrs[0].Offset]
	entry.visited = true
	queue := []*block{entry}
	for _, h := range im.handlers {
		hb, ok := im.blockAt[h.HandlerStart]
		if !ok {
			return diag.Errorf(diag.TrBadBranchTarget, im.loc, "handler start IL_%04x is not an instruction boundary", h.HandlerStart)
		}
		if hb.visited {
			continue
		}
		hb.visited = true
		if h.Kind == metadata.HandlerCatch {
			hb.entry = []StackType{{Code: StackO, Sig: h.CatchType}}
		}
		queue = append(queue, hb)
	}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		succs, err := im.lowerBlock(b)
		if err != nil {
			return err
		}
		for _, s := range succs {
			sb := im.blockAt[s.target]
			if !sb.visited {
				sb.visited = true
				sb.entry = s.stack
				queue = append(queue, sb)
				continue
			}
			if !sameShape(sb.entry, s.stack) {
				return diag.Errorf(diag.TrStackMismatch, im.at(s.from),
					"stack shape %s does not match %s already established at IL_%04x",
					shapeString(s.stack), shapeString(sb.entry), s.target)
			}
		}
	}
	return nil
}

type successor struct {
	from   uint32
	target uint32
	stack  []StackType
}

func (im *importer) stackTypes() []StackType {
	out := make([]StackType, len(im.stack))
	for i, v := range im.stack {
		out[i] = v.typ
	}
	return out
}

func (im *importer) lowerBlock(b *block) ([]successor, error) {
	im.cur = b
	im.constrained = nil
	im.stack = im.stack[:0]
	for i, t := range b.entry {
		im.stack = append(im.stack, value{expr: im.spillName(i, t), typ: t})
	}
	for i := b.first; i < b.end; i++ {
		ins := &im.instrs[i]
		im.offset = ins.Offset
		before := im.stackTypes()
		succs, done, err := im.lower(ins)
		if err != nil {
			return nil, err
		}
		im.shapes[ins.Offset] = Shape{Before: before, After: im.stackTypes()}
		if done {
			return succs, nil
		}
	}
	nb := im.next(b)
	if nb == nil {
		return nil, im.errorf(diag.TrBadBranchTarget, "control falls off the end of the method body")
	}
	im.settle()
	return []successor{{from: im.offset, target: nb.start, stack: im.stackTypes()}}, nil
}

func (im *importer) emit(format string, args ...any) {
	im.cur.lines = append(im.cur.lines, fmt.Sprintf(format, args...))
}

func (im *importer) push(expr string, t StackType, stable bool) {
	im.stack = append(im.stack, value{expr: expr, typ: t, stable: stable})
}

func (im *importer) pop() (value, error) {
	if len(im.stack) == 0 {
		return value{}, im.errorf(diag.TrStackUnderflow, "evaluation stack underflow")
	}
	v := im.stack[len(im.stack)-1]
	im.stack = im.stack[:len(im.stack)-1]
	return v, nil
}

// popN pops n values and returns them in push order.
func (im *importer) popN(n int) ([]value, error) {
	if len(im.stack) < n {
		return nil, im.errorf(diag.TrStackUnderflow, "evaluation stack underflow: need %d values, have %d", n, len(im.stack))
	}
	out := make([]value, n)
	copy(out, im.stack[len(im.stack)-n:])
	im.stack = im.stack[:len(im.stack)-n]
	return out, nil
}

func (im *importer) newTemp() string {
	name := fmt.Sprintf("_t%d", im.tmp)
	im.tmp++
	return name
}

// materialize evaluates v into a fresh temporary.
func (im *importer) materialize(v value) value {
	if v.stable {
		return v
	}
	name := im.newTemp()
	im.emit("auto %s = %s;", name, v.expr)
	return value{expr: name, typ: v.typ, stable: true}
}

// flush evaluates every pending stack expression before a side effect.
func (im *importer) flush() {
	for i, v := range im.stack {
		im.stack[i] = im.materialize(v)
	}
}

// settle assigns the spill variables of the remaining stack before control
// leaves the block. Operands consumed by the terminator are evaluated
// before any spill variable is overwritten.
func (im *importer) settle(operands ...value) []value {
	names := make([]string, len(im.stack))
	for i, v := range im.stack {
		names[i] = im.spillName(i, v.typ)
		if v.expr != names[i] {
			im.stack[i] = im.materialize(v)
		}
	}
	for i, op := range operands {
		operands[i] = im.materialize(op)
	}
	for i, v := range im.stack {
		if v.expr != names[i] {
			im.emit("%s = %s;", names[i], v.expr)
		}
	}
	return operands
}

func stackFrom(expr string) string {
	return rtabi.Call(rtabi.StackFrom, expr)
}

func stackTo(cpp, expr string) string {
	return rtabi.Call(rtabi.Inst(rtabi.StackTo, cpp), expr)
}
