package mangle

import (
	"natsu/internal/diag"
)

type claim struct {
	what    string
	isField bool
}

// Scope detects two members of one C++ scope that mangle to the same
// identifier. Methods may share an identifier when their native parameter
// lists differ (C++ overloading); fields may not share one with anything.
type Scope struct {
	loc     diag.Location
	members map[string][]claim
	sigs    map[string]string
}

func NewScope(loc diag.Location) *Scope {
	return &Scope{
		loc:     loc,
		members: make(map[string][]claim),
		sigs:    make(map[string]string),
	}
}

// Field claims ident for a field.
func (s *Scope) Field(ident, what string) error {
	if prev, ok := s.members[ident]; ok {
		return s.collision(ident, what, prev[0].what)
	}
	s.members[ident] = []claim{{what: what, isField: true}}
	return nil
}

// Method claims ident with the given native parameter list.
func (s *Scope) Method(ident, nativeParams, what string) error {
	for _, c := range s.members[ident] {
		if c.isField {
			return s.collision(ident, what, c.what)
		}
	}
	key := ident + "(" + nativeParams + ")"
	if prev, ok := s.sigs[key]; ok {
		return s.collision(ident, what, prev)
	}
	s.sigs[key] = what
	s.members[ident] = append(s.members[ident], claim{what: what})
	return nil
}

func (s *Scope) collision(ident, what, prev string) error {
	return diag.Errorf(diag.TrMangleCollision, s.loc, "%s and %s both mangle to %q", prev, what, ident)
}
