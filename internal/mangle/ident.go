// Package mangle maps metadata names to C++ identifiers. Every function is
// pure; the only state is the optional collision Scope.
package mangle

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"natsu/internal/diag"
)

var cppKeywords = map[string]struct{}{
	"alignas": {}, "alignof": {}, "and": {}, "and_eq": {}, "asm": {}, "auto": {},
	"bitand": {}, "bitor": {}, "bool": {}, "break": {}, "case": {}, "catch": {},
	"char": {}, "char8_t": {}, "char16_t": {}, "char32_t": {}, "class": {},
	"compl": {}, "concept": {}, "const": {}, "consteval": {}, "constexpr": {},
	"constinit": {}, "const_cast": {}, "continue": {}, "co_await": {},
	"co_return": {}, "co_yield": {}, "decltype": {}, "default": {}, "delete": {},
	"do": {}, "double": {}, "dynamic_cast": {}, "else": {}, "enum": {},
	"explicit": {}, "export": {}, "extern": {}, "false": {}, "float": {}, "for": {},
	"friend": {}, "goto": {}, "if": {}, "inline": {}, "int": {}, "long": {},
	"mutable": {}, "namespace": {}, "new": {}, "noexcept": {}, "not": {},
	"not_eq": {}, "nullptr": {}, "operator": {}, "or": {}, "or_eq": {},
	"private": {}, "protected": {}, "public": {}, "register": {},
	"reinterpret_cast": {}, "requires": {}, "return": {}, "short": {},
	"signed": {}, "sizeof": {}, "static": {}, "static_assert": {},
	"static_cast": {}, "struct": {}, "switch": {}, "template": {}, "this": {},
	"thread_local": {}, "throw": {}, "true": {}, "try": {}, "typedef": {},
	"typeid": {}, "typename": {}, "union": {}, "unsigned": {}, "using": {},
	"virtual": {}, "void": {}, "volatile": {}, "wchar_t": {}, "while": {},
	"xor": {}, "xor_eq": {},
	// runtime macros that would break the generated code
	"NULL": {}, "TRUE": {}, "FALSE": {},
}

// Identifier escapes one metadata name: characters other than letters, digits
// and '_' become '_', a leading digit gets a '_' prefix and C++ keywords are
// prefixed with '_'.
func Identifier(name string) (string, error) {
	if name == "" {
		return "", diag.Errorf(diag.TrEmptyIdentifier, diag.Location{}, "cannot mangle an empty name")
	}
	name = norm.NFC.String(name)
	var sb strings.Builder
	sb.Grow(len(name) + 1)
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			sb.WriteByte('_')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if _, kw := cppKeywords[out]; kw {
		out = "_" + out
	}
	return out, nil
}

// ModuleName turns "System.Private.CorLib" into "System_Private_CorLib".
func ModuleName(name string) (string, error) {
	return Identifier(strings.ReplaceAll(name, ".", "_"))
}

// Namespace splits a dotted namespace into escaped segments.
func Namespace(ns string) ([]string, error) {
	if ns == "" {
		return nil, nil
	}
	parts := strings.Split(ns, ".")
	out := make([]string, len(parts))
	for i, p := range parts {
		id, err := Identifier(p)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// TypeShortName escapes the metadata name of a type: "List`1" becomes
// "List_1", nested "Outer/Inner" becomes "Outer_Inner".
func TypeShortName(name string) (string, error) {
	return Identifier(name)
}

