// Package literal formats compile-time constants as exact C++ literals and
// keeps the per-module string pool.
package literal

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Pool assigns indices to distinct strings in first-encounter order. One
// pool lives for exactly one module translation.
type Pool struct {
	index  map[string]int
	values []string
}

func NewPool() *Pool {
	return &Pool{index: make(map[string]int)}
}

// Intern returns the index of s, adding it on first sight.
func (p *Pool) Intern(s string) int {
	if i, ok := p.index[s]; ok {
		return i
	}
	i := len(p.values)
	p.index[s] = i
	p.values = append(p.values, s)
	return i
}

// Lookup reports the index of an already interned string.
func (p *Pool) Lookup(s string) (int, bool) {
	i, ok := p.index[s]
	return i, ok
}

func (p *Pool) Len() int { return len(p.values) }

// Values returns the pooled strings in index order.
func (p *Pool) Values() []string {
	out := make([]string, len(p.values))
	copy(out, p.values)
	return out
}

// Name is the C++ identifier of pool entry i.
func Name(i int) string {
	return fmt.Sprintf("user_string_%d", i)
}

// UTF16Len is the length of s in UTF-16 code units, which is what the
// runtime string_literal<N> expects.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// RawString renders s as a char16_t raw string literal. The delimiter is
// NS unless s itself contains the closing sequence.
func RawString(s string) string {
	delim := "NS"
	for i := 0; strings.Contains(s, ")"+delim+"\""); i++ {
		delim = fmt.Sprintf("NS%d", i)
	}
	return "uR\"" + delim + "(" + s + ")" + delim + "\""
}
