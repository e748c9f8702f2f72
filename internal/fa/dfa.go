package fa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// characters splits every alphabet symbol into single characters and returns
// them sorted. Characters that cannot stand as a symbol on their own are left out.
func (a *Automaton) characters() []string {
	chars := symbol.NewSet()
	for sym := range a.alphabet {
		for _, c := range symbol.Chars(sym) {
			if c == a.epsilon || a.checkSymbol("to_dfa", c) != nil {
				continue
			}
			chars.Add(c)
		}
	}
	return chars.Sorted()
}

// ToDFA builds an equivalent deterministic automaton by subset construction.
//
// Multi-character symbols are first split into their characters, so a
// transition on "ab" contributes moves on "a" and on "b" independently. The
// result therefore only matches the source language when every symbol is a
// single character.
//
// Subsets are discovered breadth-first from the closure of the start state
// and named q0, q1, ... in discovery order, trying characters in ascending
// order. Empty subsets are never created.
func (a *Automaton) ToDFA() (*Automaton, error) {
	start := a.states.Start()
	if start == arena.NoState {
		return nil, ir.Precondition("to_dfa", "", ir.ErrNoStartState)
	}

	alphabet := a.characters()
	dfa := a.derive()
	index := make(map[string]int)

	register := func(set indexSet) int {
		name := "q" + strconv.Itoa(len(index))
		i, _ := dfa.states.Add(name)
		dfa.states.At(i).Final = a.anyFinal(set)
		index[subsetKey(set)] = i
		return i
	}

	first := a.closure(indexSet{start: {}})
	dfa.states.SetStart(register(first))
	queue := []indexSet{first}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		from := index[subsetKey(t)]

		for _, c := range alphabet {
			u := a.closure(a.move(t, c))
			if len(u) == 0 {
				continue
			}
			to, ok := index[subsetKey(u)]
			if !ok {
				to = register(u)
				queue = append(queue, u)
			}
			dfa.link(from, c, to)
		}
	}
	return dfa, nil
}

func subsetKey(set indexSet) string {
	idx := sortedIndices(set)
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// quotientName labels a block of equivalent states.
func quotientName(members []string) string {
	if len(members) == 1 {
		return members[0]
	}
	return fmt.Sprintf("{%s}", strings.Join(members, ","))
}
