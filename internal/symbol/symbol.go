// Package symbol holds the string conventions every engine shares: Unicode
// normalization, length in characters, and the candidate order used by
// longest-match simulation.
package symbol

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the NFC form of s. Labels, symbols and simulation inputs
// pass through here so composed and decomposed spellings compare equal.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Len returns the length of s in characters (code points).
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Chars splits s into one-character strings.
func Chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// CompareLongestFirst orders match candidates: more characters first, then
// byte-wise ascending. Simulators try candidates in this order and take the
// first that applies.
func CompareLongestFirst(a, b string) int {
	if c := cmp.Compare(Len(b), Len(a)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortLongestFirst sorts candidates in place with CompareLongestFirst.
func SortLongestFirst(candidates []string) {
	slices.SortFunc(candidates, CompareLongestFirst)
}

// Set is an unordered set of strings.
type Set map[string]struct{}

// NewSet returns a set holding items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s Set) Add(v string) {
	s[v] = struct{}{}
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order. Never nil.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}
