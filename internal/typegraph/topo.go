package typegraph

import (
	"strings"

	"natsu/internal/diag"
)

type visitState uint8

const (
	unvisited visitState = iota
	onStack
	done
)

// Sort returns the declaration order: a depth-first, memoized post-order over
// forcing edges, rooted at every type in declaration order. Indirect edges are
// satisfied by forward declarations and do not participate.
func Sort(g *Graph) ([]TypeID, error) {
	s := sorter{
		g:     g,
		state: make([]visitState, len(g.Types)),
		order: make([]TypeID, 0, len(g.Types)),
	}
	for i := range g.Types {
		if err := s.visit(TypeID(i)); err != nil {
			return nil, err
		}
	}
	return s.order, nil
}

type frame struct {
	id   TypeID
	kind EdgeKind // edge used to enter this node
}

type sorter struct {
	g     *Graph
	state []visitState
	stack []frame
	order []TypeID
}

func (s *sorter) visit(id TypeID) error {
	switch s.state[int(id)] {
	case done:
		return nil
	case onStack:
		return nil
	}
	s.state[int(id)] = onStack
	for _, e := range s.g.Uses[int(id)] {
		if !e.Kind.Forcing() {
			continue
		}
		if s.state[int(e.To)] == onStack {
			return s.cycle(id, e)
		}
		s.stack = append(s.stack, frame{id: id, kind: e.Kind})
		err := s.visit(e.To)
		s.stack = s.stack[:len(s.stack)-1]
		if err != nil {
			return err
		}
	}
	s.state[int(id)] = done
	s.order = append(s.order, id)
	return nil
}

// cycle reports the loop closed by the back edge from -> e.To.
func (s *sorter) cycle(from TypeID, back Edge) error {
	start := len(s.stack)
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i].id == back.To {
			start = i
			break
		}
	}
	allEmbedded := back.Kind == EdgeEmbedded
	names := make([]string, 0, len(s.stack)-start+2)
	for _, f := range s.stack[start:] {
		names = append(names, s.g.Index.IDToName[int(f.id)])
		if f.kind != EdgeEmbedded {
			allEmbedded = false
		}
	}
	names = append(names, s.g.Index.IDToName[int(from)], s.g.Index.IDToName[int(back.To)])
	code, what := diag.TrInheritanceCycle, "cyclic base/interface dependency"
	if allEmbedded {
		code, what = diag.TrValueCycle, "value type embeds itself"
	}
	loc := diag.InType(s.g.Module.Name, s.g.Index.IDToName[int(from)], "")
	return diag.Errorf(code, loc, "%s: %s", what, strings.Join(names, " -> "))
}

// Batches groups an order into waves whose members do not depend on each
// other; the graph command prints them.
func Batches(g *Graph, order []TypeID) [][]TypeID {
	level := make([]int, len(g.Types))
	var out [][]TypeID
	for _, id := range order {
		lv := 0
		for _, e := range g.Uses[int(id)] {
			if e.Kind.Forcing() && level[int(e.To)]+1 > lv {
				lv = level[int(e.To)] + 1
			}
		}
		level[int(id)] = lv
		for len(out) <= lv {
			out = append(out, nil)
		}
		out[lv] = append(out[lv], id)
	}
	return out
}
